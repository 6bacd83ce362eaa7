package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"deliverydash/internal/config"
	apierrors "deliverydash/internal/errors"
	"deliverydash/internal/files"
	"deliverydash/internal/infrastructure"
	customMiddleware "deliverydash/internal/middleware"
	"deliverydash/internal/services"
	handlers "deliverydash/internal/transport/http"
	ws "deliverydash/internal/websocket"
	"deliverydash/pkg/contracts/events"
)

// BuildTime is set at compile time with -ldflags "-X deliverydash/internal/app.BuildTime=..."
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Services      *ServiceContainer
	WebSocketHub  *ws.Hub
	// Watcher is nil when live reload is disabled or the dataset
	// directory could not be watched
	Watcher *files.DatasetWatcher

	errorHandler *apierrors.ErrorHandler
	validator    *customMiddleware.QueryParamValidator

	watchCancel context.CancelFunc
	watchDone   chan struct{}
	stopOnce    sync.Once
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Export    *services.ExportService
	Health    *services.HealthService
}

// NewApplication loads the configuration, sets up logging and telemetry
// and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	if cfg.Logging.FilePath != "" && !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = filepath.Join(paths.BaseDir, cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return Build(cfg, logger, otelProviders)
}

// Build wires the services, handlers and router for cfg. Nothing is
// started until Start is called.
func Build(cfg *config.Config, logger *slog.Logger, otelProviders *infrastructure.OTelProviders) (*Application, error) {
	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	metrics, err := infrastructure.NewMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	errorHandler := apierrors.NewErrorHandler(logger, cfg.Logging.Development)
	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  errorHandler,
		validator:     customMiddleware.NewQueryParamValidator(logger, errorHandler),
	}

	a.initializeServices()
	a.initializeWatcher()

	if err := a.setupRouter(); err != nil {
		return nil, err
	}
	a.createServer()

	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)

	dashboard := services.NewDashboardService(services.DashboardOptions{
		DataFile: a.Paths.DataFile,
		TopN:     a.Config.Dashboard.TopN,
		Tracer:   a.OTelProviders.Tracer,
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	})

	a.Services = &ServiceContainer{
		Dashboard: dashboard,
		Export:    services.NewExportService(dashboard, a.Logger),
		Health:    services.NewHealthService(config.AppVersion, BuildTime, a.Paths.DataFile, a.WebSocketHub, a.Logger),
	}
}

// initializeWatcher sets up live reload. A directory that cannot be
// watched only disables live reload.
func (a *Application) initializeWatcher() {
	if !a.Config.Watch.Enabled {
		return
	}

	watcher, err := files.NewDatasetWatcher(a.Paths.DataFile, a.Config.Watch.Debounce, a.onDatasetChange, a.Metrics, a.Logger)
	if err != nil {
		a.Logger.Warn("Live reload disabled",
			slog.String("dataset", a.Paths.DataFile),
			slog.String("error", err.Error()))
		return
	}
	a.Watcher = watcher
}

// onDatasetChange tells every open page to reload
func (a *Application) onDatasetChange(ctx context.Context, change files.Change) {
	a.WebSocketHub.BroadcastDatasetChanged(ctx, events.DatasetChanged{
		Path:      change.Path,
		Operation: change.Operation,
	})
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// Only middleware that leaves the ResponseWriter alone runs in front of
	// the WebSocket upgrade
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Handle(config.WebSocketEndpoint, ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))
	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.errorHandler))

	pages, err := handlers.NewPageHandler(a.Services.Dashboard, a.validator, handlers.PageOptions{
		Dashboard:  a.Config.Dashboard,
		LogoFile:   a.Paths.LogoFile,
		LiveReload: a.Watcher != nil,
	}, a.Logger, a.errorHandler)
	if err != nil {
		return err
	}

	// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger, customMiddleware.SkipPrefixes(config.WebSocketEndpoint)))
		r.Use(customMiddleware.Compress(5))

		a.setupAPIRoutes(r)
		r.Mount("/", pages.Routes())
	})

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	health := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Mount("/health", health.Routes())
		r.Get("/version", health.Version)

		r.Mount("/export", handlers.NewExportHandler(a.Services.Export, a.validator, a.Config.Dashboard, a.Logger, a.errorHandler).Routes())
		r.Post("/client-log", handlers.NewClientLogHandler(a.Logger, a.errorHandler).Handle)

		r.Mount("/", handlers.NewDashboardHandler(a.Services.Dashboard, a.validator, a.Config.Dashboard, a.Logger, a.errorHandler).Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub, the dataset watcher and the HTTP server. cancel is
// called if the server fails after startup.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("dataset", a.Paths.DataFile),
		slog.Bool("live_reload", a.Watcher != nil))

	if !config.FileExists(a.Paths.DataFile) {
		a.Logger.WarnContext(ctx, "Dataset not found, views will answer 503 until it appears",
			slog.String("dataset", a.Paths.DataFile))
	}

	a.WebSocketHub.Start()

	if a.Watcher != nil {
		watchCtx, watchCancel := context.WithCancel(context.WithoutCancel(ctx))
		a.watchCancel = watchCancel
		a.watchDone = make(chan struct{})
		go func() {
			defer close(a.watchDone)
			if err := a.Watcher.Run(watchCtx); err != nil {
				a.Logger.ErrorContext(watchCtx, "Dataset watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application. It is safe to call more than once.
func (a *Application) Stop(ctx context.Context) error {
	var stopErr error
	a.stopOnce.Do(func() {
		stopErr = a.stop(ctx)
	})
	return stopErr
}

func (a *Application) stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Close sockets first; Shutdown does not wait for hijacked connections
	a.WebSocketHub.Stop()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.Watcher != nil {
		if a.watchCancel != nil {
			a.watchCancel()
			select {
			case <-a.watchDone:
			case <-shutdownCtx.Done():
			}
		}
		if err := a.Watcher.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing dataset watcher", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
