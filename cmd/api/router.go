package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/partygames/waitlist/internal/handler"
	"github.com/partygames/waitlist/internal/metrics"
	"github.com/partygames/waitlist/internal/middleware"
	"github.com/partygames/waitlist/internal/ratelimit"
	"github.com/partygames/waitlist/internal/report"
	"github.com/partygames/waitlist/internal/service"
)

// routerDeps collects what setupRouter needs. Redis, Limiter and Static may
// be nil.
type routerDeps struct {
	Logger        *slog.Logger
	Reporter      *report.Reporter
	Subscriptions *service.SubscriptionService
	Store         handler.HealthChecker
	Redis         handler.HealthChecker
	Metrics       *metrics.InMemoryRecorder
	Limiter       ratelimit.Limiter
	Static        http.Handler

	RateLimitEnabled bool
	AdminToken       string
	CORSOrigins      []string
	MaxBodySize      int64
	IsDevelopment    bool
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	h := handler.New()
	healthHandler := handler.NewHealthHandler(d.Store, d.Redis)
	metricsHandler := handler.NewMetricsHandler(d.Metrics)
	subscriberHandler := handler.NewSubscriberHandler(d.Subscriptions, d.Logger, d.Reporter)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.CORSOrigins

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger, d.Reporter))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: d.IsDevelopment,
		APIPrefix:     "/api/",
	}))
	r.Use(middleware.CORS(corsCfg))

	// Probes and metrics
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  d.Logger,
		Limiter: d.Limiter,
		Metrics: d.Metrics,
		Enabled: d.RateLimitEnabled,
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(d.MaxBodySize))

		r.Get("/", h.Info)
		r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/subscribe", subscriberHandler.Subscribe)
		r.With(middleware.RequireBearerToken(d.AdminToken, d.Logger)).Get("/subscribers", subscriberHandler.List)

		r.NotFound(h.NotFound)
		r.MethodNotAllowed(h.MethodNotAllowed)
	})

	// Landing page
	if d.Static != nil {
		r.Method(http.MethodGet, "/*", d.Static)
		r.Method(http.MethodHead, "/*", d.Static)
	} else {
		r.Get("/", h.Info)
	}

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
