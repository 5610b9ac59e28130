package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/volunteerhub/internal/metrics"
	"github.com/hitoshi/volunteerhub/internal/middleware"
	"github.com/hitoshi/volunteerhub/internal/model"
)

// newTestRouter はモックサービスを組み込んだルーターを返す。
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	reg := prometheus.NewRegistry()

	return NewRouter(&RouterDeps{
		Logger:            slogDiscard(),
		Authorizer:        stubAuthorizer{},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		Metrics:           metrics.NewCollector(reg),
		MetricsHandler:    metrics.Handler(reg),
		HealthChecker:     &mockHealthChecker{},

		AuthService: &mockAuthService{},
		EventService: &mockEventService{},
		RosterService: &mockRosterReader{},
		SignupService: &mockSignupService{
			signupFn: func(ctx context.Context, volunteerID, roleID string) (*model.Assignment, error) {
				return &model.Assignment{ID: "as-1", VolunteerID: volunteerID, RoleID: roleID}, nil
			},
		},
		AttendanceService: &mockAttendanceService{},
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		body       string
		wantStatus int
	}{
		{"list events is public", http.MethodGet, "/events", "", "", http.StatusOK},
		{"event detail is public", http.MethodGet, "/events/ev-1", "", "", http.StatusNotFound},
		{"create event needs credential", http.MethodPost, "/events", "", `{}`, http.StatusUnauthorized},
		{"create event rejects volunteer", http.MethodPost, "/events", "Bearer volunteer:vol-1", `{}`, http.StatusForbidden},
		{"create event rejects bad credential", http.MethodPost, "/events", "Bearer garbage", `{}`, http.StatusForbidden},
		{"organization events", http.MethodGet, "/organization/events", "Bearer organization:org-1", "", http.StatusOK},
		{"signup as volunteer", http.MethodPost, "/roles/role-1/signup", "Bearer volunteer:vol-1", "", http.StatusCreated},
		{"signup rejects organization", http.MethodPost, "/roles/role-1/signup", "Bearer organization:org-1", "", http.StatusForbidden},
		{"profile needs credential", http.MethodGet, "/volunteer/profile", "", "", http.StatusUnauthorized},
		{"profile as volunteer", http.MethodGet, "/volunteer/profile", "Bearer volunteer:vol-1", "", http.StatusOK},
		{"roster for organization", http.MethodGet, "/events/ev-1/volunteers", "Bearer organization:org-1", "", http.StatusOK},
		{"attendance needs credential", http.MethodPatch, "/attendance/as-1", "", `{"attended":true}`, http.StatusUnauthorized},
		{"attendance as organization", http.MethodPatch, "/attendance/as-1", "Bearer organization:org-1", `{"attended":true}`, http.StatusOK},
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d, body = %s", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRouter_SetsCommonHeaders(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouter_MetricsEndpointExposesCounters(t *testing.T) {
	router := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "volunteerhub_http_status_total") {
		t.Errorf("metrics output missing http status counter:\n%s", w.Body.String())
	}
}

func TestRouter_SignupRateLimitPerVolunteer(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate: 100, GeneralBurst: 100,
		SignupRate: 0.001, SignupBurst: 1,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rl.Stop)

	router := NewRouter(&RouterDeps{
		Logger:      slogDiscard(),
		Authorizer:  stubAuthorizer{},
		RateLimiter: rl,
		SignupService: &mockSignupService{
			signupFn: func(ctx context.Context, volunteerID, roleID string) (*model.Assignment, error) {
				return &model.Assignment{ID: "as-1", VolunteerID: volunteerID, RoleID: roleID}, nil
			},
		},
	})

	send := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/roles/role-1/signup", nil)
		req.Header.Set("Authorization", token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	if got := send("Bearer volunteer:vol-1"); got != http.StatusCreated {
		t.Fatalf("first signup: status = %d", got)
	}
	if got := send("Bearer volunteer:vol-1"); got != http.StatusTooManyRequests {
		t.Errorf("second signup: status = %d, want %d", got, http.StatusTooManyRequests)
	}
	if got := send("Bearer volunteer:vol-2"); got != http.StatusCreated {
		t.Errorf("other volunteer: status = %d, want %d", got, http.StatusCreated)
	}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
