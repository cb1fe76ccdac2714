package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"ledgerlens/internal/config"
	"ledgerlens/internal/dataprocessing"
	apperrors "ledgerlens/internal/errors"
	"ledgerlens/internal/exporter"
	"ledgerlens/internal/infrastructure"
	customMiddleware "ledgerlens/internal/middleware"
	"ledgerlens/internal/services"
	handlers "ledgerlens/internal/transport/http"
	"ledgerlens/internal/validation"
)

// jsonBodyFactor bounds JSON request bodies relative to the upload limit;
// the records of a workbook are larger as JSON than as xlsx.
const jsonBodyFactor = 8

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Services      *ServiceContainer
	UIFS          fs.FS // embedded upload page; nil disables GET /

	errorHandler *apperrors.ErrorHandler
	metrics      *infrastructure.BusinessMetrics
	validator    *customMiddleware.Validator
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Reports  *services.ReportService
	Charts   *services.ChartService
	Receipts *services.ReceiptService
	Health   *services.HealthService
}

// NewApplication wires every component from cfg. uiFS holds index.html and
// may be nil.
func NewApplication(cfg *config.Config, logger *slog.Logger, uiFS fs.FS) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		UIFS:          uiFS,
		errorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Development),
		validator:     customMiddleware.NewValidator(),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.Server = &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return app, nil
}

func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.metrics = metrics

	reports := services.NewReportService(
		dataprocessing.NewNormalizer(a.Logger),
		validation.NewFileValidator(a.Config.Upload, a.Logger),
		metrics,
		a.Logger,
	)
	charts := services.NewChartService(a.Config.Chart, metrics, a.Logger)
	receipts := services.NewReceiptService(
		exporter.NewReceiptWriter(a.Config.Receipt, a.Logger),
		exporter.NewCSVWriter(a.Logger),
		metrics,
		a.Logger,
	)
	health := services.NewHealthService(config.AppVersion, a.Logger)
	health.AddCheck("chart_renderer", func(ctx context.Context) services.ServiceHealth {
		if _, err := charts.Render(ctx, services.ChartInput{Values: []float64{1}}); err != nil {
			return services.NotReady(err.Error())
		}
		return services.Ready("")
	})
	health.AddCheck("telemetry", func(ctx context.Context) services.ServiceHealth {
		if a.Config.Telemetry.MetricExporter == "prometheus" && a.OTelProviders.PrometheusHTTP == nil {
			return services.NotReady("prometheus exporter not initialized")
		}
		return services.Ready(a.Config.Telemetry.MetricExporter)
	})

	a.Services = &ServiceContainer{
		Reports:  reports,
		Charts:   charts,
		Receipts: receipts,
		Health:   health,
	}

	a.Logger.Info("Services initialized",
		slog.Int64("max_upload_bytes", a.Config.Upload.MaxFileSize),
		slog.String("default_chart", a.Config.Chart.DefaultType),
		slog.Int("chart_width", a.Config.Chart.Width),
		slog.Int("chart_height", a.Config.Chart.Height))
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler))
	r.Use(customMiddleware.DefaultSecureHeaders().Handler)
	r.Use(customMiddleware.Compress(5, "text/html", "text/csv", "application/json", "application/problem+json"))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
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

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	if a.UIFS != nil {
		ui, err := handlers.NewUIHandler(a.UIFS, handlers.PageData{
			AppName:     config.AppName,
			Version:     config.AppVersion,
			FormField:   a.Config.Upload.FormField,
			MaxUploadMB: a.Config.Upload.MaxFileSize >> 20,
		}, a.Logger)
		if err != nil {
			return err
		}
		r.Get("/", ui.ServeIndex)
	}

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	uploadHandler := handlers.NewUploadHandler(a.Services.Reports, a.Config.Upload, a.Logger, a.errorHandler)
	exportHandler := handlers.NewExportHandler(a.Services.Charts, a.Services.Receipts, a.validator, a.Logger, a.errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			r.Post("/upload", uploadHandler.Upload)

			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.ContentTypeValidator("application/json"))
				r.Use(chimw.RequestSize(a.Config.Upload.MaxFileSize * jsonBodyFactor))
				r.Post("/chart", exportHandler.Chart)
				r.Post("/receipt", exportHandler.Receipt)
				r.Post("/export/csv", exportHandler.CSV)
			})
		})
	})
}

// Handler returns the root HTTP handler
func (a *Application) Handler() http.Handler {
	return a.Router
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down")
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown stops the HTTP server and flushes telemetry within the
// configured shutdown timeout.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("Shutdown completed with errors", slog.String("error", err.Error()))
		return err
	}
	a.Logger.Info("Shutdown complete")
	return nil
}
