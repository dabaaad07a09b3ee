package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Black-And-White-Club/stage-console/app/eventbus"
	"github.com/Black-And-White-Club/stage-console/app/modules/audit"
	"github.com/Black-And-White-Club/stage-console/app/modules/event"
	"github.com/Black-And-White-Club/stage-console/app/modules/round"
	"github.com/Black-And-White-Club/stage-console/app/modules/scoring"
	"github.com/Black-And-White-Club/stage-console/app/modules/undo"
	"github.com/Black-And-White-Club/stage-console/config"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Modules holds all application modules.
type Modules struct {
	ScoringModule *scoring.Module
	UndoModule    *undo.Module
	RoundModule   *round.Module
	EventModule   *event.Module
	AuditModule   *audit.Module
}

// App is the running console: database, bus, modules and HTTP server.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *bun.DB
	EventBus *eventbus.EventBus
	Router   *message.Router
	Registry *prometheus.Registry
	Modules  Modules
	Server   *http.Server
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
}

// OpenDB opens the Postgres handle the modules share.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	app.DB = OpenDB(cfg.Postgres.DSN)
	if err := app.DB.PingContext(ctx); err != nil {
		_ = app.DB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	bus, err := eventbus.New(cfg.NATS.URL, logger)
	if err != nil {
		_ = app.DB.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: shutdownTimeout}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	app.Router = router

	var consoleMetrics metrics.ConsoleMetrics = metrics.NewNoop()
	var registerer prometheus.Registerer
	if cfg.Observability.MetricsEnabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		consoleMetrics = metrics.NewPrometheus(app.Registry, "console")
		registerer = app.Registry
	}

	if err := app.initializeModules(ctx, consoleMetrics, registerer); err != nil {
		app.closeInfra()
		return nil, err
	}

	app.Server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app, nil
}

func (app *App) initializeModules(ctx context.Context, m metrics.ConsoleMetrics, registerer prometheus.Registerer) error {
	tracer := otel.Tracer(app.Config.Observability.ServiceName)
	publisher := eventbus.NewActionPublisher(app.EventBus.Publisher, app.Logger)

	app.Modules.ScoringModule = scoring.NewScoringModule(ctx, app.Logger, tracer, app.DB)
	backend := app.Modules.ScoringModule.ScoringService

	app.Modules.UndoModule = undo.NewUndoModule(ctx, app.Logger, tracer, m, backend, app.EventBus.Publisher, app.Config.HTTP.AllowedOrigins)
	undoService := app.Modules.UndoModule.UndoService

	app.Modules.RoundModule = round.NewRoundModule(ctx, app.Logger, tracer, m, backend, undoService, publisher)
	app.Modules.EventModule = event.NewEventModule(ctx, app.Logger, tracer, m, backend, undoService, publisher)

	auditModule, err := audit.NewAuditModule(ctx, app.Logger, tracer, m, app.DB, app.Router, app.EventBus.Subscriber, registerer)
	if err != nil {
		return fmt.Errorf("failed to initialize audit module: %w", err)
	}
	app.Modules.AuditModule = auditModule
	return nil
}

// Run serves HTTP, consumes the bus and publishes undo changes until ctx is done or one
// of them fails.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Router.Run(ctx)
	})
	g.Go(func() error {
		return app.Modules.UndoModule.Run(ctx)
	})
	g.Go(func() error {
		app.Logger.InfoContext(ctx, "HTTP server listening", attr.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases modules, the bus and the database.
func (app *App) Close() error {
	app.Logger.Info("Shutting down application")

	var errs []error
	if app.Modules.UndoModule != nil {
		errs = append(errs, app.Modules.UndoModule.Close())
	}
	if app.Modules.AuditModule != nil {
		errs = append(errs, app.Modules.AuditModule.Close())
	}
	errs = append(errs, app.closeInfra())
	return errors.Join(errs...)
}

func (app *App) closeInfra() error {
	var errs []error
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}
	return errors.Join(errs...)
}
