// Package main is the entry point for the Atlas Tasks API server.
// Atlas Tasks is a multi-tenant task management backend with role-based
// access control.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/cache/memory"
	rediscache "github.com/prn-tf/atlas-tasks/internal/cache/redis"
	"github.com/prn-tf/atlas-tasks/internal/config"
	"github.com/prn-tf/atlas-tasks/internal/handler"
	"github.com/prn-tf/atlas-tasks/internal/metrics"
	"github.com/prn-tf/atlas-tasks/internal/repository"
	"github.com/prn-tf/atlas-tasks/internal/service"
	"github.com/prn-tf/atlas-tasks/internal/store"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Atlas Tasks server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database and repositories
	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Cache: Redis when enabled, in-memory otherwise.
	var userCache repository.Cache
	if cfg.Redis.Enabled {
		rc, err := rediscache.NewCache(ctx, cfg.Redis, logger.With().Str("component", "redis").Logger())
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rc.Close()
		userCache = rc
	} else {
		mc := memory.NewCache()
		defer mc.Stop()
		userCache = mc
	}

	userRepo := repository.NewCachedUserRepository(st.Repos.Users, userCache, logger)
	taskRepo := st.Repos.Tasks

	// Token issuing and verification
	issuer := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	verifier := auth.NewTokenVerifier([]byte(cfg.Auth.JWTSecret))

	// Services
	accountService := service.NewAccountService(userRepo, taskRepo, cfg.Auth.BcryptCost, logger)
	taskService := service.NewTaskService(taskRepo, userRepo, logger)
	sessionService := service.NewSessionService(userRepo, issuer, logger)

	// HTTP layer
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	router := handler.NewRouter(handler.RouterConfig{
		SessionHandler: handler.NewSessionHandler(sessionService, m, logger),
		AccountHandler: handler.NewAccountHandler(accountService, logger),
		TaskHandler:    handler.NewTaskHandler(taskService, logger),
		AuthMiddleware: auth.Middleware(verifier, logger),
		Metrics:        m,
		MetricsPath:    cfg.Metrics.Path,
		Database:       st.Database,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newLogger builds the process logger from configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(out)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
