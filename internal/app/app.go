package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"scorecard/internal/config"
	apperrors "scorecard/internal/errors"
	"scorecard/internal/infrastructure"
	customMiddleware "scorecard/internal/middleware"
	"scorecard/internal/services"
	handlers "scorecard/internal/transport/http"
	"scorecard/internal/watcher"
	ws "scorecard/internal/websocket"
)

// AppName is shown in startup logs.
const AppName = "Scorecard Dashboard"

// Build metadata, set with -ldflags "-X scorecard/internal/app.Version=...".
var (
	Version   = "dev"
	BuildTime = ""
	BuildID   = ""
)

// compressionLevel is the gzip level for HTML, JSON and CSV responses.
const compressionLevel = 5

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Paths            *config.Paths
	Logger           *slog.Logger
	Router           *chi.Mux
	Server           *http.Server
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.ScorecardMetrics
	WebSocketHub     *ws.Hub
	Watcher          *watcher.FileWatcher
	ScorecardService *services.ScorecardService
	HealthService    *services.HealthService
	Assets           *handlers.Assets

	errorHandler *apperrors.ErrorHandler
}

// BuildInfo returns the link-time build metadata.
func BuildInfo() services.BuildInfo {
	return services.BuildInfo{Version: Version, BuildTime: BuildTime, BuildID: BuildID}
}

// New wires every component from cfg. Nothing is started; see Run.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(logger); err != nil {
		return nil, apperrors.NewStorageError("failed to ensure directories", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("input", paths.InputFile),
		slog.String("assets_dir", paths.AssetsDir))

	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = Version
	}
	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateScorecardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := a.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.WebSocketHub = ws.NewHub(a.Logger)

	a.ScorecardService = services.NewScorecardService(
		a.Paths.InputFile,
		services.NewLoader(a.Config.Input, a.Logger),
		a.Logger,
		services.WithCache(services.NewCache(a.Config.Cache)),
		services.WithMetrics(a.Metrics),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithNotifier(a.WebSocketHub),
	)

	a.HealthService = services.NewHealthService(BuildInfo(), a.Paths.InputFile, a.WebSocketHub, a.Logger)
	a.Assets = handlers.LoadAssets(a.Paths, a.Config.DisplayLogo(), a.Logger)

	if a.Config.Watch.Enabled {
		fw, err := watcher.New(a.Paths.InputFile, a.Config.Watch.Debounce, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		a.Watcher = fw
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that leaves the ResponseWriter untouched runs ahead of
	// /ws; the upgrade needs the raw connection.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	if a.OTelProviders.MetricsHandler != nil {
		r.Handle("/metrics", a.OTelProviders.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger).Handler)
		}

		r.Use(customMiddleware.Compress(compressionLevel))

		a.setupHTMLRoutes(r)
		a.setupAPIRoutes(r)
	})

	a.Router = r
}

func (a *Application) setupHTMLRoutes(r chi.Router) {
	assetHandler := handlers.NewAssetHandler(a.Assets, a.errorHandler)

	r.Method(http.MethodGet, "/", handlers.NewDashboardHandler(a.ScorecardService, a.Assets, true, a.Logger))
	r.Get(handlers.LogoRoute, assetHandler.Logo)
	r.Get(handlers.StylesheetRoute, assetHandler.Stylesheet)
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Mount("/scorecard", handlers.NewScorecardHandler(a.ScorecardService, a.Logger, a.errorHandler).Routes())

		r.Post("/logs", handlers.NewClientLogHandler(a.Logger, a.errorHandler).Handle)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or the server fails, then shuts down.
// A clean shutdown returns nil.
func (a *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			// live refresh is optional; the dashboard still serves
			a.Logger.WarnContext(ctx, "file watcher disabled", slog.String("error", err.Error()))
		} else {
			g.Go(func() error {
				a.ScorecardService.Watch(ctx, a.Watcher.Events())
				return nil
			})
		}
	}

	a.WebSocketHub.Start()

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "server listening",
			slog.String("address", a.Server.Addr),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	if a.Watcher != nil {
		if err := a.Watcher.Stop(); err != nil {
			a.Logger.WarnContext(ctx, "file watcher stop failed", slog.String("error", err.Error()))
		}
	}

	a.WebSocketHub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}
