// Package main is the entrypoint for the waitlist API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/partygames/waitlist/internal/analytics"
	"github.com/partygames/waitlist/internal/cache"
	"github.com/partygames/waitlist/internal/config"
	"github.com/partygames/waitlist/internal/handler"
	mailpkg "github.com/partygames/waitlist/internal/mailer"
	"github.com/partygames/waitlist/internal/metrics"
	"github.com/partygames/waitlist/internal/ratelimit"
	"github.com/partygames/waitlist/internal/report"
	"github.com/partygames/waitlist/internal/repository"
	"github.com/partygames/waitlist/internal/server"
	"github.com/partygames/waitlist/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := initLogger(cfg)

	reporter, err := report.New(cfg.SentryDSN, cfg.AppEnv)
	if err != nil {
		return err
	}

	recorder := metrics.NewInMemory()

	// Subscriber store
	var (
		store      repository.SubscriberStore
		storeClose func()
	)
	if cfg.UsesPostgres() {
		pg, err := repository.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return errors.New("database unavailable")
		}
		if cfg.DatabaseAutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info("database migrations applied")
		}
		store, storeClose = pg, pg.Close
		logger.Info("connected to database")
	} else {
		store, storeClose = repository.NewMemory(), func() {}
		logger.Warn("DATABASE_URL not set, subscribers are kept in memory")
	}

	// Redis: event stream and shared rate limiter
	var (
		redisCheck handler.HealthChecker
		events     analytics.Sink = analytics.NoopSink{}
		cacheClose                = func() error { return nil }
		limiter    ratelimit.Limiter
	)
	if cfg.UsesRedis() {
		cacheClient, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			storeClose()
			return errors.New("redis unavailable")
		}
		redisCheck = cacheClient
		events = analytics.NewPublisher(cacheClient.Client(), logger, recorder)
		cacheClose = cacheClient.Close
		if cfg.RateLimitSubscribeEnabled {
			limiter = cacheClient.SubscribeLimiter(cfg.RateLimitSubscribePerMinute, cfg.RateLimitSubscribeBurst)
		}
		logger.Info("connected to Redis")
	} else if cfg.RateLimitSubscribeEnabled {
		limiter = ratelimit.NewMemory(cfg.RateLimitSubscribePerMinute)
	}

	// Welcome mail
	var mailer service.WelcomeSender
	if cfg.MailEnabled() {
		sender, err := mailpkg.New(mailpkg.Config{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			From:      cfg.SMTPFrom,
			TLSPolicy: cfg.SMTPTLSPolicy,
		})
		if err != nil {
			storeClose()
			_ = cacheClose()
			return fmt.Errorf("failed to configure mailer: %w", err)
		}
		mailer = sender
	}

	subscriptions := service.NewSubscriptionService(store,
		service.WithEvents(events),
		service.WithWelcomeMail(mailer, service.DefaultMailTimeout),
		service.WithMetrics(recorder),
		service.WithLogger(logger),
	)

	var static http.Handler
	if cfg.StaticDir != "" {
		static, err = handler.NewStaticHandler(cfg.StaticDir)
		if err != nil {
			storeClose()
			_ = cacheClose()
			return err
		}
	}

	r := setupRouter(routerDeps{
		Logger:           logger,
		Reporter:         reporter,
		Subscriptions:    subscriptions,
		Store:            store,
		Redis:            redisCheck,
		Metrics:          recorder,
		Limiter:          limiter,
		Static:           static,
		RateLimitEnabled: cfg.RateLimitSubscribeEnabled,
		AdminToken:       cfg.AdminToken,
		CORSOrigins:      cfg.GetCORSAllowedOrigins(),
		MaxBodySize:      cfg.MaxRequestBodySize,
		IsDevelopment:    cfg.IsDevelopment(),
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	srv.OnShutdown("store", func(context.Context) error {
		storeClose()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClose()
	})
	srv.OnShutdown("reporter", func(context.Context) error {
		reporter.Close()
		return nil
	})
	srv.OnShutdown("welcome_mail", subscriptions.Wait)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", storeKind(cfg),
		"redis", cfg.UsesRedis(),
		"mail", cfg.MailEnabled(),
		"rate_limit", cfg.RateLimitSubscribeEnabled,
		"static_dir", cfg.StaticDir,
	)

	return srv.Run()
}

func storeKind(cfg *config.Config) string {
	if cfg.UsesPostgres() {
		return "postgres"
	}
	return "memory"
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
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
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

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

	return parsed.String()
}

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
