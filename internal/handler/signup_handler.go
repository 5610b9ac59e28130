package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/volunteerhub/internal/model"
)

// SignupServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type SignupServiceInterface interface {
	Signup(ctx context.Context, volunteerID, roleID string) (*model.Assignment, error)
}

// SignupHandler はロールへの応募のHTTPハンドラー。
type SignupHandler struct {
	service SignupServiceInterface
}

// NewSignupHandler はSignupHandlerを生成する。
func NewSignupHandler(service SignupServiceInterface) *SignupHandler {
	return &SignupHandler{service: service}
}

// Signup は呼び出し元のボランティアをロールに応募させる。
// POST /roles/{roleID}/signup（ボランティアのみ）
func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}

	assignment, err := h.service.Signup(r.Context(), principal.AccountID, chi.URLParam(r, "roleID"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssignmentResponse(assignment))
}
