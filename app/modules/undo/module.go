package undo

import (
	"context"
	"log/slog"

	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	undoevents "github.com/Black-And-White-Club/stage-console/app/modules/undo/infrastructure/events"
	undohandlers "github.com/Black-And-White-Club/stage-console/app/modules/undo/infrastructure/handlers"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the undo module.
type Module struct {
	UndoService *undoservice.UndoService
	Handlers    undohandlers.Handlers

	bridge      *undoevents.Bridge
	unsubscribe func()
	cancelFunc  context.CancelFunc
	logger      *slog.Logger
}

// NewUndoModule wires the register, executor and gate. Register changes are mirrored to
// the bus through the bridge once Run starts.
func NewUndoModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.ConsoleMetrics,
	backend undoservice.Backend,
	publisher message.Publisher,
	allowedOrigins []string,
) *Module {
	logger.InfoContext(ctx, "undo.NewUndoModule initializing")

	register := undoservice.NewRegister()
	executor := undoservice.NewExecutor(backend, logger, m, tracer)
	service := undoservice.NewUndoService(
		register,
		executor,
		undoservice.NewGate(logger),
		undoservice.NewSetters(),
		logger,
		m,
		tracer,
	)

	bridge := undoevents.NewBridge(publisher, logger, 0)

	return &Module{
		UndoService: service,
		Handlers:    undohandlers.NewUndoHandlers(service, logger, tracer, allowedOrigins),
		bridge:      bridge,
		unsubscribe: service.Subscribe(undoservice.AnyScope, bridge.Listen),
		logger:      logger,
	}
}

// Run publishes register changes until ctx is done.
func (m *Module) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting undo module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	err := m.bridge.Run(ctx)
	m.logger.InfoContext(ctx, "Undo module goroutine stopped")
	return err
}

// Close detaches the bridge and stops Run.
func (m *Module) Close() error {
	m.logger.Info("Stopping undo module")

	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	m.logger.Info("Undo module stopped")
	return nil
}
