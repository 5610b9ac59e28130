// Package auth はアカウント登録、ログイン、Bearerトークンの発行と検証を提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/volunteerhub/internal/clock"
	"github.com/hitoshi/volunteerhub/internal/model"
)

// ErrInvalidToken はトークンが不正、署名不一致、期限切れの場合に返される。
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims はBearerトークンのクレーム。subにアカウントID、kindにアカウント種別を持つ。
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenProvider はHS256署名のJWTを発行・検証する。
// 秘密鍵は構築時に注入され、以降変更されない。
type TokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenProvider はTokenProviderを生成する。
func NewTokenProvider(secret []byte, issuer string, ttl time.Duration, clk clock.Clock) *TokenProvider {
	return &TokenProvider{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		clock:  clk,
	}
}

// Issue はPrincipalに対するトークンと有効期限を返す。
func (p *TokenProvider) Issue(principal model.Principal) (string, time.Time, error) {
	if principal.Kind == model.AccountKindUnknown {
		return "", time.Time{}, fmt.Errorf("アカウント種別が未設定です")
	}

	now := p.clock.Now()
	expiresAt := now.Add(p.ttl)
	claims := Claims{
		Kind: principal.Kind.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.AccountID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("トークンの署名に失敗しました: %w", err)
	}
	return token, expiresAt, nil
}

// Verify はトークンを検証し、Principalを返す。
// 検証に失敗した場合はErrInvalidTokenをラップしたエラーを返す。
func (p *TokenProvider) Verify(tokenString string) (model.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.clock.Now),
	)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return model.Principal{}, fmt.Errorf("%w: subject is empty", ErrInvalidToken)
	}
	kind, err := model.ParseAccountKind(claims.Kind)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return model.Principal{AccountID: claims.Subject, Kind: kind}, nil
}
