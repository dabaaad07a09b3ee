package eventservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	"github.com/Black-And-White-Club/stage-console/app/shared/operation"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "EventService"

// EventService implements Service.
type EventService struct {
	backend   Backend
	undo      UndoSink
	publisher ActionPublisher
	logger    *slog.Logger
	metrics   metrics.ConsoleMetrics
	tracer    trace.Tracer
	now       func() time.Time
}

func NewEventService(backend Backend, undo UndoSink, publisher ActionPublisher, logger *slog.Logger, m metrics.ConsoleMetrics, tracer trace.Tracer) *EventService {
	return &EventService{
		backend:   backend,
		undo:      undo,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		tracer:    tracer,
		now:       time.Now,
	}
}

func withTelemetry[S any](s *EventService, ctx context.Context, operationName string, scope sharedtypes.Scope, op operation.Func[S, error]) (results.OperationResult[S, error], error) {
	return operation.Run(ctx, operation.Telemetry{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}, operationName, scope.String(), op)
}

func (s *EventService) pushUndo(ctx context.Context, scope sharedtypes.Scope, label string, cmd undodomain.Command) bool {
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

func (s *EventService) recordAction(ctx context.Context, scope sharedtypes.Scope, action, label string, undoable bool, actionErr error) {
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
	if actionErr != nil {
		payload.Outcome = metrics.OutcomeFailure
		payload.Error = actionErr.Error()
		payload.Undoable = false
	}
	_ = s.publisher.PublishAction(ctx, payload)
}

func (s *EventService) GetFlags(ctx context.Context, scope sharedtypes.Scope) (FlagsResult, error) {
	return withTelemetry(s, ctx, "GetFlags", scope, func(ctx context.Context) (FlagsResult, error) {
		flags, err := s.backend.GetEventFlags(ctx, scope)
		if err != nil {
			return FlagsResult{}, fmt.Errorf("failed to read event flags: %w", err)
		}
		if flags == nil {
			flags = eventdomain.Flags{}
		}
		return results.SuccessResult[eventdomain.Flags, error](flags), nil
	})
}

// SetFlags overwrites the named flags, leaving the others as they are. The undo entry
// carries the complete prior map.
func (s *EventService) SetFlags(ctx context.Context, scope sharedtypes.Scope, flags eventdomain.Flags) (FlagsResult, error) {
	return withTelemetry(s, ctx, "SetFlags", scope, func(ctx context.Context) (FlagsResult, error) {
		if len(flags) == 0 {
			return results.FailureResult[eventdomain.Flags, error](fmt.Errorf("%w: no flags", ErrInvalidInput)), nil
		}
		names := make([]string, 0, len(flags))
		for name := range flags {
			if strings.TrimSpace(name) == "" {
				return results.FailureResult[eventdomain.Flags, error](fmt.Errorf("%w: blank flag name", ErrInvalidInput)), nil
			}
			names = append(names, name)
		}
		sort.Strings(names)

		prior, err := s.backend.GetEventFlags(ctx, scope)
		if err != nil {
			return FlagsResult{}, fmt.Errorf("failed to read event flags: %w", err)
		}
		if prior == nil {
			prior = eventdomain.Flags{}
		}
		next := prior.Clone()
		for name, v := range flags {
			next[name] = v
		}

		label := fmt.Sprintf("Change %s", strings.Join(names, ", "))
		if err := s.backend.SetEventFlags(ctx, scope, next); err != nil {
			s.recordAction(ctx, scope, "event.flags", label, false, err)
			return FlagsResult{}, fmt.Errorf("failed to set event flags: %w", err)
		}
		undoable := s.pushUndo(ctx, scope, label, undodomain.EventFlagsRestore{Flags: prior})
		s.recordAction(ctx, scope, "event.flags", label, undoable, nil)

		after, err := s.backend.GetEventFlags(ctx, scope)
		if err != nil {
			return FlagsResult{}, fmt.Errorf("failed to refetch event flags: %w", err)
		}
		return results.SuccessResult[eventdomain.Flags, error](after), nil
	})
}

func (s *EventService) ListParticipants(ctx context.Context, scope sharedtypes.Scope) (ParticipantsResult, error) {
	return withTelemetry(s, ctx, "ListParticipants", scope, func(ctx context.Context) (ParticipantsResult, error) {
		ps, err := s.backend.ListParticipants(ctx, scope)
		if err != nil {
			return ParticipantsResult{}, fmt.Errorf("failed to list participants: %w", err)
		}
		if ps == nil {
			ps = []eventdomain.Participant{}
		}
		sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
		return results.SuccessResult[[]eventdomain.Participant, error](ps), nil
	})
}

// AddParticipant enrols a new active participant. It has no compensating command and
// registers no undo entry.
func (s *EventService) AddParticipant(ctx context.Context, scope sharedtypes.Scope, name string) (ParticipantResult, error) {
	return withTelemetry(s, ctx, "AddParticipant", scope, func(ctx context.Context) (ParticipantResult, error) {
		name = strings.TrimSpace(name)
		if name == "" {
			return results.FailureResult[eventdomain.Participant, error](fmt.Errorf("%w: name must not be blank", ErrInvalidInput)), nil
		}
		label := fmt.Sprintf("Add participant %q", name)
		p, err := s.backend.AddParticipant(ctx, scope, name)
		if err != nil {
			s.recordAction(ctx, scope, "event.participant_add", label, false, err)
			return ParticipantResult{}, fmt.Errorf("failed to add participant: %w", err)
		}
		s.recordAction(ctx, scope, "event.participant_add", label, false, nil)
		return results.SuccessResult[eventdomain.Participant, error](p), nil
	})
}

// SetParticipantStatuses applies a bulk status change. Changes are written in order; the
// undo entry restores whatever was written, even when a later write failed.
func (s *EventService) SetParticipantStatuses(ctx context.Context, scope sharedtypes.Scope, changes []eventdomain.StatusChange) (ParticipantsResult, error) {
	return withTelemetry(s, ctx, "SetParticipantStatuses", scope, func(ctx context.Context) (ParticipantsResult, error) {
		if len(changes) == 0 {
			return results.FailureResult[[]eventdomain.Participant, error](fmt.Errorf("%w: no changes", ErrInvalidInput)), nil
		}
		seen := make(map[sharedtypes.ParticipantID]bool, len(changes))
		for _, c := range changes {
			if c.ParticipantID <= 0 || !c.Status.Valid() {
				return results.FailureResult[[]eventdomain.Participant, error](fmt.Errorf("%w: participant %d status %q", ErrInvalidInput, c.ParticipantID, c.Status)), nil
			}
			if seen[c.ParticipantID] {
				return results.FailureResult[[]eventdomain.Participant, error](fmt.Errorf("%w: %d", ErrDuplicateParticipant, c.ParticipantID)), nil
			}
			seen[c.ParticipantID] = true
		}

		current, err := s.backend.ListParticipants(ctx, scope)
		if err != nil {
			return ParticipantsResult{}, fmt.Errorf("failed to list participants: %w", err)
		}
		byID := make(map[sharedtypes.ParticipantID]eventdomain.Participant, len(current))
		for _, p := range current {
			byID[p.ID] = p
		}
		for _, c := range changes {
			if _, ok := byID[c.ParticipantID]; !ok {
				return results.FailureResult[[]eventdomain.Participant, error](fmt.Errorf("%w: %d", ErrParticipantNotFound, c.ParticipantID)), nil
			}
		}

		label := fmt.Sprintf("Change status of %d participant(s)", len(changes))
		prior := make([]eventdomain.StatusChange, 0, len(changes))
		var writeErr error
		for _, c := range changes {
			was := byID[c.ParticipantID]
			before := eventdomain.StatusChange{ParticipantID: was.ID, Status: was.Status, EliminatedInRound: was.EliminatedInRound}
			if err := s.backend.SetParticipantStatus(ctx, scope, c); err != nil {
				writeErr = err
				break
			}
			prior = append(prior, before)
		}

		undoable := len(prior) > 0 && s.pushUndo(ctx, scope, label, undodomain.ParticipantStatusBulkRestore{Items: prior})
		s.recordAction(ctx, scope, "event.participant_status", label, undoable, writeErr)
		if writeErr != nil {
			return ParticipantsResult{}, fmt.Errorf("wrote %d of %d status changes: %w", len(prior), len(changes), writeErr)
		}

		after, err := s.backend.ListParticipants(ctx, scope)
		if err != nil {
			return ParticipantsResult{}, fmt.Errorf("failed to refetch participants: %w", err)
		}
		sort.Slice(after, func(i, j int) bool { return after[i].ID < after[j].ID })
		return results.SuccessResult[[]eventdomain.Participant, error](after), nil
	})
}
