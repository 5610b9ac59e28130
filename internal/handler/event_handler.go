package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/volunteerhub/internal/event"
	"github.com/hitoshi/volunteerhub/internal/model"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, organizerID string, in event.CreateEventInput) (*model.EventWithRoles, error)
	ListUpcomingEvents(ctx context.Context) ([]model.EventSummary, error)
	GetEvent(ctx context.Context, eventID string) (*model.EventDetail, error)
	ListOrganizerEvents(ctx context.Context, organizerID string) ([]model.EventSummary, error)
}

// RosterReaderInterface は参加者名簿の取得に必要なサービスインターフェース。
type RosterReaderInterface interface {
	ListAssignmentsForEvent(ctx context.Context, caller model.Principal, eventID string) ([]model.RosterEntry, error)
}

// EventHandler はイベント関連のHTTPハンドラー。
type EventHandler struct {
	events EventServiceInterface
	roster RosterReaderInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(events EventServiceInterface, roster RosterReaderInterface) *EventHandler {
	return &EventHandler{events: events, roster: roster}
}

// CreateEvent はイベントとロールを作成する。
// POST /events（団体のみ）
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}

	var in event.CreateEventInput
	if err := decodeJSONBody(w, r, &in); err != nil {
		handleServiceError(w, r, err)
		return
	}

	created, err := h.events.CreateEvent(r.Context(), principal.AccountID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(created))
}

// ListEvents は開催予定のイベント一覧を返す。
// GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.events.ListUpcomingEvents(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventSummaryResponses(summaries))
}

// GetEvent はイベント詳細を返す。
// GET /events/{eventID}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	detail, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventDetailResponse(detail))
}

// ListVolunteers はイベントの参加者名簿を返す。
// GET /events/{eventID}/volunteers（主催団体のみ）
func (h *EventHandler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}

	entries, err := h.roster.ListAssignmentsForEvent(r.Context(), principal, chi.URLParam(r, "eventID"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRosterResponses(entries))
}

// ListOrganizerEvents は呼び出し元の団体が主催するイベント一覧を返す。
// GET /organization/events（団体のみ）
func (h *EventHandler) ListOrganizerEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}

	summaries, err := h.events.ListOrganizerEvents(r.Context(), principal.AccountID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventSummaryResponses(summaries))
}
