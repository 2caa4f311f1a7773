package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/handler"
	"github.com/pubdocs/pubdocs/internal/middleware"
	"github.com/pubdocs/pubdocs/internal/service"
)

// RouterConfig holds everything the HTTP surface is assembled from.
type RouterConfig struct {
	Logger        *slog.Logger
	Authenticator *auth.Authenticator
	Users         *service.UserService
	Documents     *service.DocumentService

	// Health lists the backends checked by /readyz.
	Health []handler.Dependency
	// Metrics serves /metrics when set.
	Metrics http.Handler

	Cookie handler.SessionCookie

	LoginLimiter          middleware.LoginLimiter
	RateLimitLoginEnabled bool
	RateLimitLoginRPM     int
	RateLimitLoginBurst   int

	IsDevelopment      bool
	CORSAllowedOrigins []string
	CORSMaxAge         time.Duration
	MaxRequestBodySize int64
}

// NewRouter builds the chi router with all routes and middleware.
//
// The session scope wraps the access log and the recoverer so both can
// report the authenticated user; it is torn down after them.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = handler.DefaultSessionCookieName
	}

	h := handler.New(handler.ServiceInfo{
		AccessPolicy:  string(cfg.Documents.Policy()),
		SessionCookie: cfg.Cookie.Name,
	})
	healthHandler := handler.NewHealthHandler(logger, cfg.Health...)
	authHandler := handler.NewAuthHandler(cfg.Authenticator, cfg.Cookie, logger)
	userHandler := handler.NewUserHandler(cfg.Users, logger)
	documentHandler := handler.NewDocumentHandler(cfg.Documents, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Session(middleware.SessionConfig{
		Logger:        logger,
		Authenticator: cfg.Authenticator,
		CookieName:    cfg.Cookie.Name,
	}))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			MaxAge:         cfg.CORSMaxAge,
		}))
	}
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}

	// Operational endpoints
	r.Get("/", h.Index)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimitLogin(middleware.RateLimitConfig{
			Logger:            logger,
			Limiter:           cfg.LoginLimiter,
			Enabled:           cfg.RateLimitLoginEnabled,
			RequestsPerMinute: cfg.RateLimitLoginRPM,
			Burst:             cfg.RateLimitLoginBurst,
		})).Post("/login", authHandler.Login)
		r.With(middleware.RequireSession).Post("/logout", authHandler.Logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.Register)
		r.With(middleware.RequireSession).Get("/me", userHandler.Me)
		r.With(middleware.RequireSession).Put("/me", userHandler.UpdateMe)
	})

	// Identity is checked before path or body validation; the document
	// service checks it again before touching the store.
	r.Route("/documents", func(r chi.Router) {
		r.Use(middleware.RequireSession)

		r.Get("/", documentHandler.List)
		r.Post("/", documentHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ValidDocumentID("id"))
			r.Get("/{id}", documentHandler.Get)
			r.Put("/{id}", documentHandler.Update)
			r.Delete("/{id}", documentHandler.Delete)
		})

		// Export answers 410 for any id once the caller is authenticated.
		r.Get("/{id}/pdf", documentHandler.ExportPDF)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
