package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nomvote/nomvote/internal/metrics"
	"github.com/nomvote/nomvote/internal/middleware"
	"github.com/nomvote/nomvote/internal/service"
)

// RouterConfig wires the services and cross-cutting settings into the router.
type RouterConfig struct {
	Logger   *slog.Logger
	Users    *service.UserService
	Tokens   *service.TokenService
	Nominees *service.NomineeService

	// Health lists the dependencies checked by /readyz.
	Health map[string]HealthChecker
	// Metrics backs /metrics; nil answers 503.
	Metrics metrics.Snapshotter

	IsDevelopment      bool
	AllowedOrigins     []string
	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := New()
	healthHandler := NewHealthHandler(cfg.Health)
	metricsHandler := NewMetricsHandler(cfg.Metrics)
	userHandler := NewUserHandler(cfg.Users, logger)
	nomineeHandler := NewNomineeHandler(cfg.Nominees, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins

	maxBody := cfg.MaxRequestBodySize
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(maxBody))

	// Operational endpoints (no auth required)
	r.Get("/", h.Hello)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:        logger,
		Authenticator: cfg.Tokens,
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.Signup)
		r.Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", userHandler.Me)
			r.Delete("/me/token", userHandler.Logout)
		})
	})

	r.Route("/nominees", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", nomineeHandler.Create)
		r.Get("/", nomineeHandler.List)
		r.Get("/{id}", nomineeHandler.Get)
		r.Patch("/{id}", nomineeHandler.Update)
		r.Delete("/{id}", nomineeHandler.Delete)
		r.Put("/{id}/{vote}", nomineeHandler.Vote)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
