// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/deliverable/cityinsights/internal/api"
	"github.com/deliverable/cityinsights/internal/cache"
	"github.com/deliverable/cityinsights/internal/config"
	"github.com/deliverable/cityinsights/internal/connections"
	"github.com/deliverable/cityinsights/internal/dashboard"
	"github.com/deliverable/cityinsights/internal/logger"
	"github.com/deliverable/cityinsights/internal/repository"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func slogPanicRecoverMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					reqLogger := logger.With("request_id", c.Get("requestID"))
					reqLogger.ErrorContext(c.Request().Context(), "PANIC recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
					)
					c.Error(err)
				}
			}()
			return next(c)
		}
	}
}

func requestLoggerMiddleware(appLogger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := uuid.New().String()
			c.Set("requestID", reqID)
			c.Response().Header().Set(echo.HeaderXRequestID, reqID)

			start := time.Now()

			if hub := sentryecho.GetHubFromContext(c); hub != nil {
				hub.Scope().SetTag("request_id", reqID)
			}

			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			appLogger.InfoContext(c.Request().Context(), "HTTP Request",
				"request_id", reqID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"query", c.QueryString(),
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
				"user_agent", c.Request().UserAgent(),
				"ip", c.RealIP(),
			)
			return err
		}
	}
}

func main() {
	// 1. Load application configuration FIRST.
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Sentry. An empty DSN leaves the client disabled.
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		TracesSampleRate: 1.0,
	}); err != nil {
		fmt.Printf("Sentry initialization failed: %v\n", err)
	}
	defer sentry.Flush(2 * time.Second)

	// 3. Initialize the Logger.
	logger.InitLogger(cfg.AppEnv)
	appLogger := logger.L()

	appLogger.Info("Application starting up...",
		"environment", cfg.AppEnv,
		"cities", cfg.Cities,
		"window_from", cfg.WindowFrom.String(),
		"window_to", cfg.WindowTo.String(),
		"cache_ttl", cfg.CacheTTL.String(),
	)

	// 4. Connect to the Database.
	dbClient, err := connections.ConnectDB(cfg.DatabaseURL, appLogger.With("component", "database_connector"))
	if err != nil {
		appLogger.Error("Failed to connect to database at startup", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbClient.Close()

	// 5. Initialize Core Application Components.
	queries := repository.New(dbClient.Pool)
	memo := cache.New(cfg.CacheTTL, appLogger)
	window := dashboard.DateRange{Start: cfg.WindowFrom, End: cfg.WindowTo}

	source := dashboard.NewSource(queries, memo, cfg.Cities, window, appLogger)
	registry := dashboard.NewRegistry()
	source.Register(registry)

	datasetConfigs, err := dashboard.NewConfigLoader(cfg.DatasetConfigDir)
	if err != nil {
		appLogger.Error("Failed to load dataset configs", slog.Any("error", err))
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(datasetConfigs, registry, memo, window, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize dashboard service", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("Dashboard service initialized.", "datasets", len(datasetConfigs.Datasets()))

	apiLogger := appLogger.With("service", "api_handlers")
	dashboardHandler := api.NewDashboardHandler(dashboardService, apiLogger)

	renderer, err := api.NewTemplateRenderer()
	if err != nil {
		appLogger.Error("Failed to initialize templates", slog.Any("error", err))
		os.Exit(1)
	}

	// 6. Initialize Echo.
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	// Echo's own logger is silenced; slog handles all output.
	e.Logger.SetOutput(io.Discard)

	// 7. Register Middleware.
	e.Use(slogPanicRecoverMiddleware(appLogger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))
	e.Use(sentryecho.New(sentryecho.Options{
		Repanic: true,
	}))
	e.Use(requestLoggerMiddleware(appLogger))

	// 8. Register Routes.
	e.GET("/health", func(c echo.Context) error {
		ctx := c.Request().Context()
		reqLogger := appLogger.With("request_id", c.Get("requestID"))

		if err := dbClient.Ping(ctx); err != nil {
			reqLogger.ErrorContext(ctx, "Database ping failed during health check", slog.Any("error", err))
			sentry.CaptureException(err)
			return c.String(http.StatusInternalServerError, "DB Not Ready")
		}
		return c.String(http.StatusOK, "OK")
	})

	dashboardHandler.RegisterRoutes(e, e.Group("/api"))

	// 9. Start the HTTP server and shut down on SIGINT/SIGTERM.
	address := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	go func() {
		appLogger.Info("HTTP Server starting", "address", address)
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP Server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP Server shutdown failed", slog.Any("error", err))
	}
	appLogger.Info("HTTP Server stopped gracefully.")
}
