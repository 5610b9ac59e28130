// Package app はアプリケーションの初期化、依存関係のワイヤリング、起動モードの実行を提供する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hitoshi/volunteerhub/internal/attendance"
	"github.com/hitoshi/volunteerhub/internal/auth"
	"github.com/hitoshi/volunteerhub/internal/clock"
	"github.com/hitoshi/volunteerhub/internal/config"
	"github.com/hitoshi/volunteerhub/internal/database"
	"github.com/hitoshi/volunteerhub/internal/event"
	"github.com/hitoshi/volunteerhub/internal/guard"
	"github.com/hitoshi/volunteerhub/internal/handler"
	"github.com/hitoshi/volunteerhub/internal/logger"
	"github.com/hitoshi/volunteerhub/internal/metrics"
	"github.com/hitoshi/volunteerhub/internal/middleware"
	"github.com/hitoshi/volunteerhub/internal/repository"
	"github.com/hitoshi/volunteerhub/internal/roster"
	"github.com/hitoshi/volunteerhub/internal/security"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. ログレベルの反映
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// rateLimiterConfig は設定値（req/min）からレート制限設定を組み立てる。
func rateLimiterConfig(cfg *config.Config) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	rl.GeneralRate = perMinute(cfg.RateLimitGeneral)
	rl.GeneralBurst = cfg.RateLimitGeneral
	rl.SignupRate = perMinute(cfg.RateLimitSignup)
	rl.SignupBurst = cfg.RateLimitSignup
	return rl
}

// buildRouter は全依存関係をワイヤリングしたHTTPハンドラーを返す。
func buildRouter(cfg *config.Config, db *sql.DB, rl *middleware.RateLimiter) http.Handler {
	clk := clock.NewSystem()

	// 1. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 2. リポジトリの初期化
	accountRepo := repository.NewPostgresAccountRepo(db)
	eventRepo := repository.NewPostgresEventRepo(db)
	assignmentRepo := repository.NewPostgresAssignmentRepo(db)

	// 3. ドメインサービスの初期化
	sanitizer := security.NewTextSanitizer()
	tokens := auth.NewTokenProvider([]byte(cfg.TokenSecret), cfg.TokenIssuer, cfg.TokenTTL, clk)
	g := guard.New(tokens, eventRepo)

	authService := auth.NewService(accountRepo, tokens, sanitizer, clk, auth.ServiceConfig{BcryptCost: cfg.BcryptCost})
	eventService := event.NewService(eventRepo, sanitizer, clk, collector)
	rosterService := roster.NewService(assignmentRepo, g, clk, collector, roster.ServiceConfig{
		EnforceCapacity: cfg.EnforceRoleCapacity,
	})
	attendanceService := attendance.NewService(assignmentRepo, g, clk, collector)

	// 4. ルーターの構築
	return handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Authorizer:        g,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(reg),
		HealthChecker:     db,

		AuthService:       authService,
		EventService:      eventService,
		RosterService:     rosterService,
		SignupService:     rosterService,
		AttendanceService: attendanceService,
	})
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(ctx, db, 5*time.Second); err != nil {
		return err
	}

	slog.Info("database connection established")

	// 2. ルーターの構築
	rl := middleware.NewRateLimiter(rateLimiterConfig(cfg))
	defer rl.Stop()

	router := buildRouter(cfg, db, rl)

	// 3. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.Bool("enforce_role_capacity", cfg.EnforceRoleCapacity),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

// perMinute はreq/minをrate.Limit（req/sec）に変換する。
func perMinute(n int) rate.Limit {
	return rate.Limit(float64(n) / 60.0)
}
