// Package main is the entrypoint for the pubdocs API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/cache"
	"github.com/pubdocs/pubdocs/internal/config"
	"github.com/pubdocs/pubdocs/internal/handler"
	"github.com/pubdocs/pubdocs/internal/metrics"
	"github.com/pubdocs/pubdocs/internal/middleware"
	"github.com/pubdocs/pubdocs/internal/repository"
	"github.com/pubdocs/pubdocs/internal/server"
	"github.com/pubdocs/pubdocs/internal/service"
)

// store is what both storage drivers provide.
type store interface {
	service.UserStore
	service.DocumentStore
	Ping(ctx context.Context) error
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	policy, err := service.ParseAccessPolicy(cfg.DocumentAccessPolicy)
	if err != nil {
		logger.Error("invalid document access policy", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var closers []namedCloser
	fail := func(msg string, attrs ...any) {
		logger.Error(msg, attrs...)
		closeAll(ctx, logger, closers)
		os.Exit(1)
	}

	// Storage
	var (
		st       store
		postgres handler.HealthChecker
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		st = repository.NewMemory()
		logger.Warn("using in-memory storage; data is lost on restart")
	default:
		repo, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			fail("failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
		}
		closers = append(closers, namedCloser{"postgres", func(context.Context) error { repo.Close(); return nil }})
		st, postgres = repo, repo
		logger.Info("connected to database")
	}

	// Sessions
	var (
		sessions auth.SessionStore
		limiter  middleware.LoginLimiter
		redis    handler.HealthChecker
	)
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		sessions = auth.NewMemorySessionStore()
		logger.Warn("using in-memory session store; login rate limiting is disabled")
	default:
		cacheClient, err := cache.Open(ctx, cache.Options{
			URL:       cfg.RedisURL,
			Namespace: cfg.RedisNamespace,
			PoolSize:  cfg.RedisPoolSize,
		})
		if err != nil {
			fail("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
		}
		closers = append(closers, namedCloser{"redis", func(context.Context) error { return cacheClient.Close() }})
		sessions, limiter, redis = cacheClient, cacheClient, cacheClient
		logger.Info("connected to Redis")
	}

	// Metrics
	var (
		recorder       metrics.Recorder = metrics.NewNoop()
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheus(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	// Authentication
	hasher := auth.NewHasher(auth.Params{
		MemoryKiB:   cfg.PasswordMemoryKiB,
		Iterations:  cfg.PasswordIterations,
		Parallelism: cfg.PasswordParallelism,
	})
	tokens, err := auth.NewTokenIssuer([]byte(cfg.SessionSecret), "pubdocs")
	if err != nil {
		fail("invalid session secret", slog.String("error", err.Error()))
	}
	authenticator := auth.NewAuthenticator(auth.Config{
		Users:       st,
		Sessions:    sessions,
		Hasher:      hasher,
		Tokens:      tokens,
		Logger:      logger,
		Metrics:     recorder,
		SessionTTL:  cfg.SessionTTL,
		MinDuration: cfg.AuthMinDuration,
	})

	// Services
	userService := service.NewUserService(st, hasher, authenticator, logger, recorder)
	documentService := service.NewDocumentService(st, policy, logger, recorder)

	routerCfg := server.RouterConfig{
		Logger:        logger,
		Authenticator: authenticator,
		Users:         userService,
		Documents:     documentService,
		Health: []handler.Dependency{
			{Name: "postgres", Checker: postgres},
			{Name: "redis", Checker: redis},
		},
		Cookie: handler.SessionCookie{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
		},
		LoginLimiter:          limiter,
		RateLimitLoginEnabled: cfg.RateLimitLoginEnabled,
		RateLimitLoginRPM:     cfg.RateLimitLoginRPM,
		RateLimitLoginBurst:   cfg.RateLimitLoginBurst,
		IsDevelopment:         cfg.IsDevelopment(),
		CORSAllowedOrigins:    cfg.GetCORSAllowedOrigins(),
		CORSMaxAge:            cfg.CORSMaxAge,
		MaxRequestBodySize:    cfg.MaxRequestBodySize,
		Metrics:               metricsHandler,
	}

	srv := server.New(server.NewRouter(routerCfg), server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	for _, c := range closers {
		srv.OnShutdown(c.name, c.close)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"storage", cfg.StorageDriver,
		"sessions", cfg.SessionStore,
		"document_access_policy", string(policy),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

type namedCloser struct {
	name  string
	close server.ShutdownFunc
}

// closeAll releases already opened backends when startup fails.
func closeAll(ctx context.Context, logger *slog.Logger, closers []namedCloser) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(ctx); err != nil {
			logger.Error("close failed", "name", closers[i].name, "error", err)
		}
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL strips the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	if q := parsed.Query(); q.Has("password") {
		q.Set("password", "redacted")
		parsed.RawQuery = q.Encode()
	}

	return parsed.String()
}

// sanitizeError removes connection secrets from an error message.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
