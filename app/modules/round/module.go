package round

import (
	"context"
	"log/slog"

	roundservice "github.com/Black-And-White-Club/stage-console/app/modules/round/application"
	roundhandlers "github.com/Black-And-White-Club/stage-console/app/modules/round/infrastructure/handlers"
	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the round module.
type Module struct {
	RoundService roundservice.Service
	Handlers     roundhandlers.Handlers
}

// NewRoundModule creates the lifecycle controller. Its draft setter is installed on the
// undo service's setter registry.
func NewRoundModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.ConsoleMetrics,
	backend roundservice.Backend,
	undo *undoservice.UndoService,
	publisher roundservice.ActionPublisher,
) *Module {
	logger.InfoContext(ctx, "round.NewRoundModule initializing")

	service := roundservice.NewLifecycleService(backend, undo, undo.Setters(), publisher, logger, m, tracer)

	return &Module{
		RoundService: service,
		Handlers:     roundhandlers.NewRoundHandlers(service, undo.Gate(), logger, tracer),
	}
}
