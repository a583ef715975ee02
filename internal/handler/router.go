package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/metrics"
)

// DatabaseChecker reports database health for the health endpoint.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// Router assembles the HTTP API.
type Router struct {
	sessionHandler *SessionHandler
	accountHandler *AccountHandler
	taskHandler    *TaskHandler
	authMiddleware func(http.Handler) http.Handler
	metrics        *metrics.Metrics
	metricsPath    string
	database       DatabaseChecker
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	SessionHandler *SessionHandler
	AccountHandler *AccountHandler
	TaskHandler    *TaskHandler
	AuthMiddleware func(http.Handler) http.Handler
	Metrics        *metrics.Metrics
	MetricsPath    string
	Database       DatabaseChecker
	Logger         zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		sessionHandler: config.SessionHandler,
		accountHandler: config.AccountHandler,
		taskHandler:    config.TaskHandler,
		authMiddleware: config.AuthMiddleware,
		metrics:        config.Metrics,
		metricsPath:    config.MetricsPath,
		database:       config.Database,
		logger:         config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(rt.requestLogger)
	r.Use(middleware.Recoverer)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
	}

	// Public endpoints
	r.Get("/health", rt.handleHealth)
	if rt.metrics != nil && rt.metricsPath != "" {
		r.Method(http.MethodGet, rt.metricsPath, rt.metrics.Handler())
	}
	rt.sessionHandler.RegisterRoutes(r)

	// Every other endpoint requires a verified identity.
	r.Group(func(r chi.Router) {
		r.Use(rt.authMiddleware)
		rt.accountHandler.RegisterRoutes(r)
		rt.taskHandler.RegisterRoutes(r)
	})

	return r
}

// handleHealth handles health check requests.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := rt.database.Ping(ctx); err != nil {
			rt.logger.Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// requestLogger logs one line per request with latency and status.
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rt.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request handled")
	})
}
