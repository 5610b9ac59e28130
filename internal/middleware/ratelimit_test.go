package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hitoshi/volunteerhub/internal/model"
)

func newTestRateLimiter(t *testing.T, cfg RateLimiterConfig) *RateLimiter {
	t.Helper()
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	return rl
}

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.RemoteAddr = ip + ":54321"
	return req
}

func signupRequest(accountID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/roles/r-1/signup", nil)
	return req.WithContext(ContextWithPrincipal(req.Context(), model.Principal{
		AccountID: accountID,
		Kind:      model.AccountKindVolunteer,
	}))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// --- GeneralMiddleware のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{GeneralRate: 2, GeneralBurst: 5, SignupRate: 1, SignupBurst: 10})
	handler := rl.GeneralMiddleware()(okHandler)

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1"))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestRateLimitMiddleware_Returns429WithRetryAfterHeader(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{GeneralRate: 0.5, GeneralBurst: 2, SignupRate: 1, SignupBurst: 10})
	handler := rl.GeneralMiddleware()(okHandler)

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.2"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.2"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After is not an integer: %q", w.Header().Get("Retry-After"))
	}
	if retryAfter != 2 {
		t.Errorf("Retry-After = %d, want 2", retryAfter)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode 429 body: %v", err)
	}
	if body.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("code = %q, want %q", body.Code, "RATE_LIMIT_EXCEEDED")
	}
}

func TestRateLimitMiddleware_IsolatesClients(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{GeneralRate: 1, GeneralBurst: 1, SignupRate: 1, SignupBurst: 1})
	handler := rl.GeneralMiddleware()(okHandler)

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.10"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.10"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("client A second request: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.11"))
	if w.Code != http.StatusOK {
		t.Errorf("client B first request: status = %d, want %d", w.Code, http.StatusOK)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
}

// --- SignupMiddleware のテスト ---

func TestSignupRateLimit_Returns429WhenLimitExceeded(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{GeneralRate: 100, GeneralBurst: 100, SignupRate: 1, SignupBurst: 3})
	handler := rl.SignupMiddleware()(okHandler)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, signupRequest("vol-1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, signupRequest("vol-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// 他のボランティアには影響しない
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, signupRequest("vol-2"))
	if w.Code != http.StatusOK {
		t.Errorf("other volunteer: status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestSignupRateLimit_IndependentFromGeneralLimit(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{GeneralRate: 1, GeneralBurst: 1, SignupRate: 1, SignupBurst: 5})
	general := rl.GeneralMiddleware()(okHandler)
	signup := rl.SignupMiddleware()(okHandler)

	general.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.20"))

	w := httptest.NewRecorder()
	signup.ServeHTTP(w, signupRequest("vol-3"))
	if w.Code != http.StatusOK {
		t.Errorf("signup after general exhaustion: status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := rl.SignupLimiterCount(); got != 1 {
		t.Errorf("SignupLimiterCount() = %d, want 1", got)
	}
}

func TestSignupRateLimit_NoPrincipal_Returns401(t *testing.T) {
	rl := newTestRateLimiter(t, DefaultRateLimiterConfig())
	handler := rl.SignupMiddleware()(okHandler)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/roles/r-1/signup", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRateLimiter_CleanupEvictsIdleEntries(t *testing.T) {
	rl := newTestRateLimiter(t, RateLimiterConfig{
		GeneralRate: 1, GeneralBurst: 1, SignupRate: 1, SignupBurst: 1,
		CleanupInterval: time.Minute,
	})

	rl.GeneralMiddleware()(okHandler).ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.30"))
	rl.SignupMiddleware()(okHandler).ServeHTTP(httptest.NewRecorder(), signupRequest("vol-4"))

	rl.cleanup(time.Now())
	if rl.GeneralLimiterCount() != 1 || rl.SignupLimiterCount() != 1 {
		t.Fatal("fresh entries should survive cleanup")
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if rl.GeneralLimiterCount() != 0 || rl.SignupLimiterCount() != 0 {
		t.Errorf("idle entries remain: general=%d signup=%d", rl.GeneralLimiterCount(), rl.SignupLimiterCount())
	}
}
