package undoservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	"github.com/Black-And-White-Club/stage-console/app/shared/operation"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
	"go.opentelemetry.io/otel/trace"
)

// UndoService ties the register, the gate and both rollback paths together.
type UndoService struct {
	register *Register
	executor CommandExecutor
	gate     *Gate
	setters  *Setters
	logger   *slog.Logger
	metrics  metrics.ConsoleMetrics
	tracer   trace.Tracer

	busyMu sync.Mutex
	busy   map[sharedtypes.Scope]bool
}

// NewUndoService wires a service around an existing register.
func NewUndoService(
	register *Register,
	executor CommandExecutor,
	gate *Gate,
	setters *Setters,
	logger *slog.Logger,
	m metrics.ConsoleMetrics,
	tracer trace.Tracer,
) *UndoService {
	return &UndoService{
		register: register,
		executor: executor,
		gate:     gate,
		setters:  setters,
		logger:   logger,
		metrics:  m,
		tracer:   tracer,
		busy:     make(map[sharedtypes.Scope]bool),
	}
}

func (s *UndoService) Gate() *Gate { return s.gate }

func (s *UndoService) Setters() *Setters { return s.setters }

// PushLocal records an in-memory rollback. prior is stored as JSON for the named setter.
func (s *UndoService) PushLocal(ctx context.Context, scope sharedtypes.Scope, label, setter string, prior any) (undodomain.Entry, error) {
	raw, err := json.Marshal(prior)
	if err != nil {
		return undodomain.Entry{}, fmt.Errorf("failed to encode prior value for %s: %w", setter, err)
	}
	return s.push(ctx, scope, undodomain.NewLocal(label, setter, raw))
}

// PushSaved records a compensating backend command.
func (s *UndoService) PushSaved(ctx context.Context, scope sharedtypes.Scope, label string, cmd undodomain.Command) (undodomain.Entry, error) {
	return s.push(ctx, scope, undodomain.NewSaved(label, cmd))
}

func (s *UndoService) push(ctx context.Context, scope sharedtypes.Scope, e undodomain.Entry) (undodomain.Entry, error) {
	if !scope.Valid() {
		return undodomain.Entry{}, ErrInvalidScope
	}
	if err := e.Validate(); err != nil {
		return undodomain.Entry{}, err
	}
	stored := s.register.Push(scope, e)
	s.metrics.RecordUndoPushed(ctx, string(stored.Kind))
	s.logger.DebugContext(ctx, "Undo entry recorded",
		attr.ExtractCorrelationID(ctx),
		attr.Scope(scope.String()),
		attr.String("entry_id", stored.ID.String()),
		attr.String("kind", string(stored.Kind)),
		attr.String("label", stored.Label),
	)
	return stored, nil
}

func (s *UndoService) Peek(scope sharedtypes.Scope) *undodomain.Entry {
	return s.register.Peek(scope)
}

func (s *UndoService) Clear(ctx context.Context, scope sharedtypes.Scope) {
	s.register.Clear(scope)
	s.logger.DebugContext(ctx, "Undo slot cleared", attr.Scope(scope.String()))
}

// Navigate records a screen change; see Register.Navigate.
func (s *UndoService) Navigate(ctx context.Context, scope sharedtypes.Scope, route string) bool {
	changed := s.register.Navigate(scope, route)
	if changed {
		s.logger.DebugContext(ctx, "Route changed",
			attr.Scope(scope.String()),
			attr.String("route", route),
		)
	}
	return changed
}

func (s *UndoService) Subscribe(scope sharedtypes.Scope, l Listener) func() {
	return s.register.Subscribe(scope, l)
}

// Execute undoes the scope's pending entry. Saved entries must be approved by confirmer
// first. The entry is cleared only after its rollback succeeded; on any error it stays so
// the operator can retry.
func (s *UndoService) Execute(ctx context.Context, scope sharedtypes.Scope, confirmer Confirmer) (ExecuteResult, error) {
	return s.withTelemetry(ctx, "ExecuteUndo", scope, func(ctx context.Context) (ExecuteResult, error) {
		entry := s.register.Peek(scope)
		if entry == nil {
			return results.FailureResult[undodomain.Entry, error](ErrNothingToUndo), nil
		}
		kind := string(entry.Kind)

		ok, err := s.gate.Confirm(ctx, confirmer, *entry)
		if err != nil {
			return ExecuteResult{}, err
		}
		if !ok {
			s.metrics.RecordUndoExecuted(ctx, kind, metrics.OutcomeDeclined)
			return results.FailureResult[undodomain.Entry, error](&ConfirmationRequiredError{Prompt: s.gate.PromptFor(*entry)}), nil
		}

		if !s.acquire(scope) {
			s.metrics.RecordUndoExecuted(ctx, kind, metrics.OutcomeRejected)
			return results.FailureResult[undodomain.Entry, error](ErrUndoInFlight), nil
		}
		defer s.release(scope)

		current := s.register.Peek(scope)
		if current == nil {
			s.metrics.RecordUndoExecuted(ctx, kind, metrics.OutcomeRejected)
			return results.FailureResult[undodomain.Entry, error](ErrNothingToUndo), nil
		}
		if current.ID != entry.ID {
			s.metrics.RecordUndoExecuted(ctx, kind, metrics.OutcomeRejected)
			return results.FailureResult[undodomain.Entry, error](ErrEntryReplaced), nil
		}

		if err := s.dispatch(ctx, *current); err != nil {
			s.metrics.RecordUndoExecuted(ctx, kind, metrics.OutcomeFailure)
			return ExecuteResult{}, err
		}

		s.register.Consume(scope, *current)
		s.metrics.RecordUndoExecuted(ctx, kind, metrics.OutcomeSuccess)
		return results.SuccessResult[undodomain.Entry, error](*current), nil
	})
}

func (s *UndoService) dispatch(ctx context.Context, e undodomain.Entry) error {
	switch e.Kind {
	case undodomain.KindLocal:
		if e.Local == nil {
			return errors.New("local entry has no rollback")
		}
		return s.setters.Apply(ctx, e.Scope, *e.Local)
	case undodomain.KindSaved:
		return s.executor.Execute(ctx, e.Scope, e.Command)
	}
	return fmt.Errorf("unknown entry kind %q", e.Kind)
}

func (s *UndoService) acquire(scope sharedtypes.Scope) bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	if s.busy[scope] {
		return false
	}
	s.busy[scope] = true
	return true
}

func (s *UndoService) release(scope sharedtypes.Scope) {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	delete(s.busy, scope)
}

func (s *UndoService) withTelemetry(
	ctx context.Context,
	operationName string,
	scope sharedtypes.Scope,
	op operation.Func[undodomain.Entry, error],
) (ExecuteResult, error) {
	return operation.Run(ctx, operation.Telemetry{
		Service: "UndoService",
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}, operationName, scope.String(), op)
}
