package scoringservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	eventservice "github.com/Black-And-White-Club/stage-console/app/modules/event/application"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	scoringdb "github.com/Black-And-White-Club/stage-console/app/modules/scoring/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ScoringService is the scoring and elimination backend behind the console. It serves the
// round and event modules and the undo executor.
type ScoringService struct {
	repo   scoringdb.Repository
	db     *bun.DB
	logger *slog.Logger
	tracer trace.Tracer
}

// NewScoringService creates the backend. A nil db runs every call on the repository's own
// connection without a transaction.
func NewScoringService(repo scoringdb.Repository, db *bun.DB, logger *slog.Logger, tracer trace.Tracer) *ScoringService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringService{
		repo:   repo,
		db:     db,
		logger: logger,
		tracer: tracer,
	}
}

func (s *ScoringService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// traced runs fn inside a span named after the backend call.
func (s *ScoringService) traced(ctx context.Context, name string, scope sharedtypes.Scope, fn func(ctx context.Context) error) error {
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "ScoringService."+name, trace.WithAttributes(
			attribute.String("scope", scope.String()),
		))
		defer span.End()
		err := fn(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
	return fn(ctx)
}

func roundErr(err error, id sharedtypes.RoundID) error {
	if errors.Is(err, scoringdb.ErrNotFound) {
		return fmt.Errorf("%w: %d", rounddomain.ErrRoundNotFound, id)
	}
	return err
}

func participantErr(err error, id sharedtypes.ParticipantID) error {
	if errors.Is(err, scoringdb.ErrNotFound) {
		return fmt.Errorf("%w: %d", eventservice.ErrParticipantNotFound, id)
	}
	return err
}

func (s *ScoringService) logApplied(ctx context.Context, msg string, scope sharedtypes.Scope, roundID sharedtypes.RoundID) {
	s.logger.DebugContext(ctx, msg,
		attr.ExtractCorrelationID(ctx),
		attr.Scope(scope.String()),
		attr.RoundID(int64(roundID)),
	)
}
