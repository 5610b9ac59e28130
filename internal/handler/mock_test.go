package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/volunteerhub/internal/auth"
	"github.com/hitoshi/volunteerhub/internal/event"
	"github.com/hitoshi/volunteerhub/internal/middleware"
	"github.com/hitoshi/volunteerhub/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn func(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
	loginFn    func(ctx context.Context, in auth.LoginInput) (*auth.Session, error)
}

func (m *mockAuthService) Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Login(ctx context.Context, in auth.LoginInput) (*auth.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

type mockEventService struct {
	createEventFn         func(ctx context.Context, organizerID string, in event.CreateEventInput) (*model.EventWithRoles, error)
	listUpcomingEventsFn  func(ctx context.Context) ([]model.EventSummary, error)
	getEventFn            func(ctx context.Context, eventID string) (*model.EventDetail, error)
	listOrganizerEventsFn func(ctx context.Context, organizerID string) ([]model.EventSummary, error)
}

func (m *mockEventService) CreateEvent(ctx context.Context, organizerID string, in event.CreateEventInput) (*model.EventWithRoles, error) {
	if m.createEventFn != nil {
		return m.createEventFn(ctx, organizerID, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockEventService) ListUpcomingEvents(ctx context.Context) ([]model.EventSummary, error) {
	if m.listUpcomingEventsFn != nil {
		return m.listUpcomingEventsFn(ctx)
	}
	return []model.EventSummary{}, nil
}

func (m *mockEventService) GetEvent(ctx context.Context, eventID string) (*model.EventDetail, error) {
	if m.getEventFn != nil {
		return m.getEventFn(ctx, eventID)
	}
	return nil, model.NewEventNotFoundError(eventID)
}

func (m *mockEventService) ListOrganizerEvents(ctx context.Context, organizerID string) ([]model.EventSummary, error) {
	if m.listOrganizerEventsFn != nil {
		return m.listOrganizerEventsFn(ctx, organizerID)
	}
	return []model.EventSummary{}, nil
}

type mockRosterReader struct {
	listAssignmentsForEventFn func(ctx context.Context, caller model.Principal, eventID string) ([]model.RosterEntry, error)
}

func (m *mockRosterReader) ListAssignmentsForEvent(ctx context.Context, caller model.Principal, eventID string) ([]model.RosterEntry, error) {
	if m.listAssignmentsForEventFn != nil {
		return m.listAssignmentsForEventFn(ctx, caller, eventID)
	}
	return []model.RosterEntry{}, nil
}

type mockSignupService struct {
	signupFn func(ctx context.Context, volunteerID, roleID string) (*model.Assignment, error)
}

func (m *mockSignupService) Signup(ctx context.Context, volunteerID, roleID string) (*model.Assignment, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, volunteerID, roleID)
	}
	return nil, errors.New("not implemented")
}

type mockAttendanceService struct {
	volunteerProfileFn func(ctx context.Context, volunteerID string) (*model.VolunteerProfile, error)
	setAttendanceFn    func(ctx context.Context, recordID string, attended bool, caller model.Principal) error
}

func (m *mockAttendanceService) VolunteerProfile(ctx context.Context, volunteerID string) (*model.VolunteerProfile, error) {
	if m.volunteerProfileFn != nil {
		return m.volunteerProfileFn(ctx, volunteerID)
	}
	return &model.VolunteerProfile{Upcoming: []model.ProfileEntry{}, Past: []model.ProfileEntry{}}, nil
}

func (m *mockAttendanceService) SetAttendance(ctx context.Context, recordID string, attended bool, caller model.Principal) error {
	if m.setAttendanceFn != nil {
		return m.setAttendanceFn(ctx, recordID, attended, caller)
	}
	return nil
}

// stubAuthorizer は "Bearer <kind>:<id>" 形式のヘッダーをPrincipalとして解決する。
type stubAuthorizer struct{}

func (stubAuthorizer) Resolve(authorization string) (model.Principal, error) {
	if authorization == "" {
		return model.Principal{}, model.NewAuthenticationRequiredError()
	}
	token, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok {
		return model.Principal{}, model.NewInvalidCredentialError(errors.New("bad scheme"))
	}
	kindStr, id, ok := strings.Cut(token, ":")
	if !ok {
		return model.Principal{}, model.NewInvalidCredentialError(errors.New("bad token"))
	}
	kind, err := model.ParseAccountKind(kindStr)
	if err != nil {
		return model.Principal{}, model.NewInvalidCredentialError(err)
	}
	return model.Principal{AccountID: id, Kind: kind}, nil
}

func (stubAuthorizer) RequireKind(p model.Principal, kind model.AccountKind) error {
	if p.Kind != kind {
		return model.NewForbiddenAccountKindError(kind)
	}
	return nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// --- テストヘルパー ---

// withPrincipal はテスト用にリクエストコンテキストに呼び出し元を注入するヘルパー。
func withPrincipal(r *http.Request, id string, kind model.AccountKind) *http.Request {
	ctx := middleware.ContextWithPrincipal(r.Context(), model.Principal{AccountID: id, Kind: kind})
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}
