package roundservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	"github.com/Black-And-White-Club/stage-console/app/shared/operation"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "RoundService"

// LifecycleService implements Service.
type LifecycleService struct {
	backend   Backend
	undo      UndoSink
	publisher ActionPublisher
	drafts    *DraftStore
	logger    *slog.Logger
	metrics   metrics.ConsoleMetrics
	tracer    trace.Tracer
	now       func() time.Time
}

// NewLifecycleService creates the service and installs its draft setter in setters.
func NewLifecycleService(
	backend Backend,
	undo UndoSink,
	setters SetterRegistry,
	publisher ActionPublisher,
	logger *slog.Logger,
	m metrics.ConsoleMetrics,
	tracer trace.Tracer,
) *LifecycleService {
	s := &LifecycleService{
		backend:   backend,
		undo:      undo,
		publisher: publisher,
		drafts:    NewDraftStore(),
		logger:    logger,
		metrics:   m,
		tracer:    tracer,
		now:       time.Now,
	}
	if setters != nil {
		setters.Register(DraftSetter, s.drafts.restore)
	}
	return s
}

func withTelemetry[S any](
	s *LifecycleService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operation.Func[S, error],
) (results.OperationResult[S, error], error) {
	return operation.Run(ctx, operation.Telemetry{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}, operationName, identifier, op)
}

func roundKey(scope sharedtypes.Scope, roundID sharedtypes.RoundID) string {
	return fmt.Sprintf("%s/%d", scope, roundID)
}

// loadFailed turns a GetRound error into a result: a missing round is a domain failure,
// anything else an infrastructure error.
func loadFailed[S any](roundID sharedtypes.RoundID, err error) (results.OperationResult[S, error], error) {
	if errors.Is(err, rounddomain.ErrRoundNotFound) {
		return results.FailureResult[S, error](fmt.Errorf("%w: %d", rounddomain.ErrRoundNotFound, roundID)), nil
	}
	return results.OperationResult[S, error]{}, fmt.Errorf("failed to load round %d: %w", roundID, err)
}

// pushUndo records cmd. The backend change already happened, so a failure here is logged
// and the action still succeeds without an undo entry.
func (s *LifecycleService) pushUndo(ctx context.Context, scope sharedtypes.Scope, label string, cmd undodomain.Command) bool {
	if _, err := s.undo.PushSaved(ctx, scope, label, cmd); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record undo entry",
			attr.ExtractCorrelationID(ctx),
			attr.Scope(scope.String()),
			attr.String("label", label),
			attr.Error(err),
		)
		return false
	}
	return true
}

func (s *LifecycleService) recordAction(ctx context.Context, scope sharedtypes.Scope, action string, roundID sharedtypes.RoundID, label string, undoable bool, actionErr error) {
	if s.publisher == nil {
		return
	}
	payload := sharedevents.ActionRecordedPayloadV1{
		Scope:      scope,
		Action:     action,
		Label:      label,
		Outcome:    metrics.OutcomeSuccess,
		Undoable:   undoable,
		OccurredAt: s.now().UTC(),
	}
	if roundID > 0 {
		id := roundID
		payload.RoundID = &id
	}
	if actionErr != nil {
		payload.Outcome = metrics.OutcomeFailure
		payload.Error = actionErr.Error()
		payload.Undoable = false
	}
	_ = s.publisher.PublishAction(ctx, payload)
}

func roundLabel(verb string, r rounddomain.Round) string {
	return fmt.Sprintf("%s round %d %q", verb, r.Ordinal, r.Name)
}
