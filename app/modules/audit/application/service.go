package auditservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	auditdomain "github.com/Black-And-White-Club/stage-console/app/modules/audit/domain"
	auditdb "github.com/Black-And-White-Club/stage-console/app/modules/audit/infrastructure/repositories"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	"github.com/Black-And-White-Club/stage-console/app/shared/operation"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "AuditService"

	// MaxLimit bounds a single log page.
	MaxLimit = 500
)

// AuditService implements Service.
type AuditService struct {
	repo    auditdb.Repository
	logger  *slog.Logger
	metrics metrics.ConsoleMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewAuditService(repo auditdb.Repository, logger *slog.Logger, m metrics.ConsoleMetrics, tracer trace.Tracer) *AuditService {
	return &AuditService{
		repo:    repo,
		logger:  logger,
		metrics: m,
		tracer:  tracer,
		now:     time.Now,
	}
}

func withTelemetry[S any](s *AuditService, ctx context.Context, operationName string, scope sharedtypes.Scope, op operation.Func[S, error]) (results.OperationResult[S, error], error) {
	return operation.Run(ctx, operation.Telemetry{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}, operationName, scope.String(), op)
}

func (s *AuditService) RecordAction(ctx context.Context, payload sharedevents.ActionRecordedPayloadV1, correlationID string) (EntryResult, error) {
	return withTelemetry(s, ctx, "RecordAction", payload.Scope, func(ctx context.Context) (EntryResult, error) {
		if payload.Action == "" {
			return results.FailureResult[auditdomain.Entry, error](fmt.Errorf("%w: action is required", ErrInvalidEntry)), nil
		}
		return s.store(ctx, auditdomain.Entry{
			Scope:         payload.Scope,
			Source:        auditdomain.SourceAction,
			Action:        payload.Action,
			RoundID:       payload.RoundID,
			Label:         payload.Label,
			Outcome:       payload.Outcome,
			Error:         payload.Error,
			Undoable:      payload.Undoable,
			CorrelationID: correlationID,
			OccurredAt:    payload.OccurredAt,
		})
	})
}

// RecordUndoChange logs a register change as action "undo.<reason>".
func (s *AuditService) RecordUndoChange(ctx context.Context, payload sharedevents.UndoSlotChangedPayloadV1, correlationID string) (EntryResult, error) {
	return withTelemetry(s, ctx, "RecordUndoChange", payload.Scope, func(ctx context.Context) (EntryResult, error) {
		if payload.Reason == "" {
			return results.FailureResult[auditdomain.Entry, error](fmt.Errorf("%w: reason is required", ErrInvalidEntry)), nil
		}
		return s.store(ctx, auditdomain.Entry{
			Scope:         payload.Scope,
			Source:        auditdomain.SourceUndo,
			Action:        "undo." + payload.Reason,
			Label:         payload.Label,
			CorrelationID: correlationID,
			OccurredAt:    payload.OccurredAt,
		})
	})
}

func (s *AuditService) store(ctx context.Context, e auditdomain.Entry) (EntryResult, error) {
	if !e.Scope.Valid() {
		return results.FailureResult[auditdomain.Entry, error](fmt.Errorf("%w: scope is required", ErrInvalidEntry)), nil
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	e.OccurredAt = e.OccurredAt.UTC()

	row := auditdb.FromDomain(e)
	if err := s.repo.InsertEntry(ctx, nil, row); err != nil {
		return EntryResult{}, err
	}
	e.ID = row.ID
	return results.SuccessResult[auditdomain.Entry, error](e), nil
}

// ListRecent returns the newest entries first. limit is clamped to [1, MaxLimit].
func (s *AuditService) ListRecent(ctx context.Context, scope sharedtypes.Scope, limit int) (EntriesResult, error) {
	return withTelemetry(s, ctx, "ListRecent", scope, func(ctx context.Context) (EntriesResult, error) {
		if !scope.Valid() {
			return results.FailureResult[[]auditdomain.Entry, error](fmt.Errorf("%w: scope is required", ErrInvalidEntry)), nil
		}
		if limit <= 0 {
			limit = 1
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		rows, err := s.repo.ListRecent(ctx, nil, scope, limit)
		if err != nil {
			return EntriesResult{}, err
		}
		out := make([]auditdomain.Entry, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].ToDomain())
		}
		return results.SuccessResult[[]auditdomain.Entry, error](out), nil
	})
}
