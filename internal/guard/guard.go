// Package guard は呼び出し元の認証・認可を判定する。
//
// Guardは状態を持たない。リクエストごとにBearerトークンを検証し、
// アカウント種別とイベントの所有関係を確認する。
package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/volunteerhub/internal/model"
	"github.com/hitoshi/volunteerhub/internal/repository"
)

// TokenVerifier はBearerトークンを検証してPrincipalを返す。
type TokenVerifier interface {
	Verify(token string) (model.Principal, error)
}

// EventOwnerLookup はイベントの主催団体IDを取得する。
type EventOwnerLookup interface {
	FindOrganizerID(ctx context.Context, eventID string) (string, error)
}

// Guard は認証・認可の判定を行う。
type Guard struct {
	tokens TokenVerifier
	events EventOwnerLookup
}

// New はGuardを生成する。
func New(tokens TokenVerifier, events EventOwnerLookup) *Guard {
	return &Guard{tokens: tokens, events: events}
}

// Resolve はAuthorizationヘッダーの値から呼び出し元を解決する。
// 認証情報が提示されていない場合はAUTHENTICATION_REQUIRED、
// 提示されたが不正または期限切れの場合はINVALID_CREDENTIALを返す。
func (g *Guard) Resolve(authorization string) (model.Principal, error) {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return model.Principal{}, model.NewAuthenticationRequiredError()
	}

	scheme, token, _ := strings.Cut(authorization, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return model.Principal{}, model.NewInvalidCredentialError(fmt.Errorf("unsupported authorization scheme %q", scheme))
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Principal{}, model.NewAuthenticationRequiredError()
	}

	principal, err := g.tokens.Verify(token)
	if err != nil {
		return model.Principal{}, model.NewInvalidCredentialError(err)
	}
	return principal, nil
}

// RequireKind は呼び出し元が指定種別のアカウントであることを確認する。
func (g *Guard) RequireKind(p model.Principal, kind model.AccountKind) error {
	switch kind {
	case model.AccountKindOrganization, model.AccountKindVolunteer:
		if p.Kind != kind {
			return model.NewForbiddenAccountKindError(kind)
		}
		return nil
	default:
		return fmt.Errorf("未対応のアカウント種別です: %s", kind)
	}
}

// CheckOwner は呼び出し元がorganizerIDの団体本人であることを確認する。
func (g *Guard) CheckOwner(p model.Principal, organizerID string) error {
	if err := g.RequireKind(p, model.AccountKindOrganization); err != nil {
		return err
	}
	if p.AccountID == "" || p.AccountID != organizerID {
		return model.NewNotEventOwnerError()
	}
	return nil
}

// AuthorizeEventOwner はイベントの主催団体が呼び出し元であることを確認する。
// イベントが存在しない場合はEVENT_NOT_FOUNDを返す。
func (g *Guard) AuthorizeEventOwner(ctx context.Context, p model.Principal, eventID string) error {
	if err := g.RequireKind(p, model.AccountKindOrganization); err != nil {
		return err
	}

	organizerID, err := g.events.FindOrganizerID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewEventNotFoundError(eventID)
	}
	if err != nil {
		return model.NewPersistenceError(err)
	}
	return g.CheckOwner(p, organizerID)
}
