package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iac-studio/dashboard/internal/api"
	"github.com/iac-studio/dashboard/internal/api/handlers"
	"github.com/iac-studio/dashboard/internal/cache"
	"github.com/iac-studio/dashboard/internal/remote"
	"github.com/iac-studio/dashboard/internal/repository"
	"github.com/iac-studio/dashboard/internal/services"
	"github.com/iac-studio/dashboard/pkg/config"
	"github.com/iac-studio/dashboard/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting IaC Studio dashboard",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("backend", cfg.BackendURL),
		zap.String("cache", cfg.CacheBackend),
	)

	// Backend client; callers' bearer tokens are forwarded per request.
	client, err := remote.NewClient(remote.Options{
		BaseURL: cfg.BackendURL,
		Token:   cfg.BackendToken,
		Timeout: cfg.BackendTimeout,
		RPS:     cfg.BackendRPS,
	})
	if err != nil {
		log.Fatal("invalid backend configuration", zap.Error(err))
	}

	store, err := cache.New(cache.Options{
		Backend:       cfg.CacheBackend,
		Size:          cfg.CacheSize,
		TTL:           cfg.CacheTTL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal("failed to build snapshot cache", zap.Error(err))
	}
	defer store.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Fatal("snapshot cache unreachable", zap.Error(err))
	}
	pingCancel()
	log.Info("Snapshot cache ready")

	projects := services.NewProjectService(client, repository.NewProjectRepository(client, store))
	sessions := services.NewSessionManager(client, projects, cfg.MaxSessions, cfg.SessionTTL)

	validate := handlers.NewValidator()
	router := api.NewRouter(api.Dependencies{
		ProjectsHandler: handlers.NewProjectsHandler(projects, validate),
		SessionsHandler: handlers.NewSessionsHandler(sessions, validate),
		HealthHandler:   handlers.NewHealthHandler(map[string]handlers.Pinger{"cache": store}),
		RateLimitRPS:    cfg.HTTPRateLimit,
		RateLimitBurst:  cfg.HTTPRateBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.BackendTimeout + 30*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}

	// Drop delayed refreshes still pending in open sessions.
	log.Info("closing sessions", zap.Int("open", sessions.Len()))
	sessions.CloseAll()
}
