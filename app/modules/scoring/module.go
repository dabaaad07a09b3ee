package scoring

import (
	"context"
	"log/slog"

	scoringservice "github.com/Black-And-White-Club/stage-console/app/modules/scoring/application"
	scoringdb "github.com/Black-And-White-Club/stage-console/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the scoring backend. It has no routes of its own; the round, event
// and undo modules call into it.
type Module struct {
	ScoringService *scoringservice.ScoringService
}

// NewScoringModule creates the backend over db.
func NewScoringModule(ctx context.Context, logger *slog.Logger, tracer trace.Tracer, db *bun.DB) *Module {
	logger.InfoContext(ctx, "scoring.NewScoringModule initializing")

	repo := scoringdb.NewRepository(db)
	service := scoringservice.NewScoringService(repo, db, logger, tracer)

	return &Module{ScoringService: service}
}
