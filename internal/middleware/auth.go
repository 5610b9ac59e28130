// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/volunteerhub/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証済みの呼び出し元を格納するためのキー。
var principalContextKey = contextKey("principal")

// PrincipalResolver はAuthorizationヘッダーから呼び出し元を解決する。
// guard.Guardが実装する。
type PrincipalResolver interface {
	Resolve(authorization string) (model.Principal, error)
}

// KindChecker は呼び出し元のアカウント種別を確認する。
type KindChecker interface {
	RequireKind(p model.Principal, kind model.AccountKind) error
}

// NewAuthMiddleware はBearerトークンを検証し、呼び出し元をリクエストコンテキストに注入するミドルウェアを返す。
// 認証情報がない場合は401、不正な場合は403を返す。
func NewAuthMiddleware(resolver PrincipalResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.Resolve(r.Header.Get("Authorization"))
			if err != nil {
				WriteServiceError(w, r, err)
				return
			}

			annotateAccountID(r.Context(), principal.AccountID)
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRequireKindMiddleware は呼び出し元が指定種別のアカウントであることを要求するミドルウェアを返す。
// NewAuthMiddlewareの後に配置する。
func NewRequireKindMiddleware(checker KindChecker, kind model.AccountKind) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := PrincipalFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationRequiredError())
				return
			}
			if err := checker.RequireKind(principal, kind); err != nil {
				WriteServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから呼び出し元を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (model.Principal, error) {
	p, ok := ctx.Value(principalContextKey).(model.Principal)
	if !ok || p.AccountID == "" {
		return model.Principal{}, fmt.Errorf("principal not found in context")
	}
	return p, nil
}

// ContextWithPrincipal はコンテキストに呼び出し元を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}
