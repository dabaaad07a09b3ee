package event

import (
	"context"
	"log/slog"

	eventservice "github.com/Black-And-White-Club/stage-console/app/modules/event/application"
	eventhandlers "github.com/Black-And-White-Club/stage-console/app/modules/event/infrastructure/handlers"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the event module.
type Module struct {
	EventService eventservice.Service
	Handlers     eventhandlers.Handlers
}

func NewEventModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.ConsoleMetrics,
	backend eventservice.Backend,
	undo eventservice.UndoSink,
	publisher eventservice.ActionPublisher,
) *Module {
	logger.InfoContext(ctx, "event.NewEventModule initializing")

	service := eventservice.NewEventService(backend, undo, publisher, logger, m, tracer)

	return &Module{
		EventService: service,
		Handlers:     eventhandlers.NewEventHandlers(service, logger, tracer),
	}
}
