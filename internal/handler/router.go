package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/volunteerhub/internal/metrics"
	"github.com/hitoshi/volunteerhub/internal/middleware"
	"github.com/hitoshi/volunteerhub/internal/model"
)

// Authorizer は認証ミドルウェアと種別確認ミドルウェアが必要とするインターフェース。
// guard.Guardが実装する。
type Authorizer interface {
	middleware.PrincipalResolver
	middleware.KindChecker
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Authorizer        Authorizer
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler
	HealthChecker     HealthChecker

	// サービス
	AuthService       AuthServiceInterface
	EventService      EventServiceInterface
	RosterService     RosterReaderInterface
	SignupService     SignupServiceInterface
	AttendanceService AttendanceServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Recovery → Logging → Metrics → SecurityHeaders → CORS → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authHandler := NewAuthHandler(deps.AuthService)
	eventHandler := NewEventHandler(deps.EventService, deps.RosterService)
	signupHandler := NewSignupHandler(deps.SignupService)
	attendanceHandler := NewAttendanceHandler(deps.AttendanceService)

	authenticate := middleware.NewAuthMiddleware(deps.Authorizer)
	organizationOnly := middleware.NewRequireKindMiddleware(deps.Authorizer, model.AccountKindOrganization)
	volunteerOnly := middleware.NewRequireKindMiddleware(deps.Authorizer, model.AccountKindVolunteer)

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// --- 認証不要のルート ---
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/events", eventHandler.ListEvents)
		r.Get("/events/{eventID}", eventHandler.GetEvent)

		// --- 団体のみ ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizationOnly)

			r.Post("/events", eventHandler.CreateEvent)
			r.Get("/organization/events", eventHandler.ListOrganizerEvents)
		})

		// --- 主催団体のみ（種別と所有者の確認はサービス層で行う） ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/events/{eventID}/volunteers", eventHandler.ListVolunteers)
			r.Patch("/attendance/{recordID}", attendanceHandler.UpdateAttendance)
		})

		// --- ボランティアのみ ---
		r.Group(func(r chi.Router) {
			r.Use(authenticate, volunteerOnly)

			r.With(deps.RateLimiter.SignupMiddleware()).Post("/roles/{roleID}/signup", signupHandler.Signup)
			r.Get("/volunteer/profile", attendanceHandler.Profile)
		})
	})

	return r
}
