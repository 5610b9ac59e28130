package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/volunteerhub/internal/model"
	"github.com/hitoshi/volunteerhub/internal/validation"
)

// AttendanceServiceInterface は出席・プロフィールハンドラーが必要とするサービスインターフェース。
type AttendanceServiceInterface interface {
	VolunteerProfile(ctx context.Context, volunteerID string) (*model.VolunteerProfile, error)
	SetAttendance(ctx context.Context, recordID string, attended bool, caller model.Principal) error
}

// AttendanceHandler は出席記録とボランティアプロフィールのHTTPハンドラー。
type AttendanceHandler struct {
	service AttendanceServiceInterface
}

// NewAttendanceHandler はAttendanceHandlerを生成する。
func NewAttendanceHandler(service AttendanceServiceInterface) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// updateAttendanceRequest は出席更新リクエストのボディ。
type updateAttendanceRequest struct {
	Attended *bool `json:"attended" validate:"required"`
}

// Profile は呼び出し元ボランティアの参加予定、参加履歴、活動統計を返す。
// GET /volunteer/profile（ボランティアのみ）
func (h *AttendanceHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}

	profile, err := h.service.VolunteerProfile(r.Context(), principal.AccountID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// UpdateAttendance は応募の出席フラグを更新する。
// PATCH /attendance/{recordID}（主催団体のみ）
func (h *AttendanceHandler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}

	var req updateAttendanceRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	recordID := chi.URLParam(r, "recordID")
	if err := h.service.SetAttendance(r.Context(), recordID, *req.Attended, principal); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       recordID,
		"attended": *req.Attended,
	})
}
