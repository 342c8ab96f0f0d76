package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"workspace-identity/internal/audit"
	"workspace-identity/internal/auth"
	"workspace-identity/internal/config"
	"workspace-identity/internal/httpapi"
	"workspace-identity/internal/oauth"
	"workspace-identity/internal/ratelimit"
	"workspace-identity/internal/revocation"
	"workspace-identity/internal/session"
	"workspace-identity/internal/store/postgres"
	"workspace-identity/internal/users"
	"workspace-identity/internal/workspace"
	"workspace-identity/pkg/logger"
	"workspace-identity/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("env file load failed", "err", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(logger.With(rootCtx, log), db); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	st := postgres.New(db, utils.RetryPolicy{})
	auditSvc := audit.NewService(postgres.NewAuditRepo(db))
	userSvc := users.NewService(st)

	h := httpapi.Handlers{
		Sessions:      session.NewOrchestrator(tokens, revocation.NewRedisLedger(rdb), userSvc, auditSvc),
		Workspaces:    workspace.NewEngine(st, auditSvc),
		Users:         userSvc,
		FrontendURL:   cfg.App.FrontendURL,
		SecureCookies: cfg.IsProduction(),
	}
	if cfg.OAuth.GoogleEnabled() {
		if h.Google, err = oauth.NewGoogle(cfg.OAuth); err != nil {
			log.Error("oauth init failed", "err", err)
			os.Exit(1)
		}
	} else {
		log.Warn("google oauth not configured; oauth routes disabled")
	}

	r := newRouter(log, h, ratelimit.New(rdb, cfg.RateLimit), cfg.AllowsDevLogin())
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
