package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/kundan1729/promptly-server/config"
	"github.com/kundan1729/promptly-server/internal/email"
	"github.com/kundan1729/promptly-server/internal/enhance"
	"github.com/kundan1729/promptly-server/internal/health"
	"github.com/kundan1729/promptly-server/internal/infrastructure/postgres"
	"github.com/kundan1729/promptly-server/internal/janitor"
	ctxlog "github.com/kundan1729/promptly-server/internal/log"
	"github.com/kundan1729/promptly-server/internal/metrics"
	"github.com/kundan1729/promptly-server/internal/oauth"
	"github.com/kundan1729/promptly-server/internal/token"
	httptransport "github.com/kundan1729/promptly-server/internal/transport/http"
	"github.com/kundan1729/promptly-server/internal/transport/http/handler"
	"github.com/kundan1729/promptly-server/internal/transport/http/middleware"
	"github.com/kundan1729/promptly-server/internal/usecase"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	// Auth
	userRepo := postgres.NewUserRepository(pool)
	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	tokenIssuer := token.NewIssuer([]byte(cfg.JWTSecret))
	authUsecase := usecase.NewAuthUsecase(userRepo, emailSender, tokenIssuer, cfg.FrontendURL)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Federated sessions
	session := scs.New()
	session.Lifetime = 24 * time.Hour
	session.Cookie.HttpOnly = true
	session.Cookie.Secure = cfg.Env == "production"
	session.Cookie.SameSite = http.SameSiteLaxMode

	providers := []*oauth.Provider{
		oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.ServerBaseURL+"/api/auth/google/callback"),
		oauth.NewGithub(cfg.GithubClientID, cfg.GithubClientSecret, cfg.ServerBaseURL+"/api/auth/github/callback"),
	}
	oauthHandler := handler.NewOAuthHandler(
		providers, session, authUsecase,
		cfg.FrontendURL+"/playground", cfg.FrontendURL, logger,
	)

	// Playground
	historyRepo := postgres.NewHistoryRepository(pool)
	collectionRepo := postgres.NewCollectionRepository(pool)
	playgroundUsecase := usecase.NewPlaygroundUsecase(historyRepo, collectionRepo)
	playgroundHandler := handler.NewPlaygroundHandler(playgroundUsecase, logger)

	groqClient := enhance.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey)
	enhanceHandler := handler.NewEnhanceHandler(groqClient, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	router := httptransport.NewRouter(
		logger, cfg.Env, cfg.FrontendURL,
		authHandler, oauthHandler, enhanceHandler, playgroundHandler,
		middleware.RequireAuth(authUsecase, logger),
	)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: session.LoadAndSave(router),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	cleaner := janitor.New(userRepo, logger)
	if err := cleaner.Start(); err != nil {
		stop()
		log.Fatalf("janitor: %v", err)
	}

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	cleaner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
