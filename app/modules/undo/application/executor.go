package undoservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Handler performs the backend work for one command type.
type Handler func(ctx context.Context, scope sharedtypes.Scope, cmd undodomain.Command) error

// CommandExecutor dispatches saved undo commands.
type CommandExecutor interface {
	Execute(ctx context.Context, scope sharedtypes.Scope, cmd undodomain.Command) error
}

// Executor maps command types to handlers.
type Executor struct {
	mu       sync.RWMutex
	handlers map[undodomain.CommandType]Handler
	backend  Backend
	logger   *slog.Logger
	metrics  metrics.ConsoleMetrics
	tracer   trace.Tracer
}

// NewExecutor creates an executor with a handler for every built-in command type.
func NewExecutor(backend Backend, logger *slog.Logger, m metrics.ConsoleMetrics, tracer trace.Tracer) *Executor {
	e := &Executor{
		handlers: make(map[undodomain.CommandType]Handler),
		backend:  backend,
		logger:   logger,
		metrics:  m,
		tracer:   tracer,
	}

	e.Register(undodomain.CmdAttendanceRestore, handle(e.restoreAttendance))
	e.Register(undodomain.CmdScoresRestore, handle(e.restoreScores))
	e.Register(undodomain.CmdPanelAssignmentsRestore, handle(e.restorePanelAssignments))
	e.Register(undodomain.CmdPanelDefinitionsRestore, handle(e.restorePanelDefinitions))
	e.Register(undodomain.CmdRoundPatchRestore, handle(e.restoreRoundPatch))
	e.Register(undodomain.CmdRoundStateRestore, handle(e.restoreRoundState))
	e.Register(undodomain.CmdRoundFreezeRestore, handle(e.restoreRoundFreeze))
	e.Register(undodomain.CmdEventFlagsRestore, handle(e.restoreEventFlags))
	e.Register(undodomain.CmdParticipantStatusBulkRestore, handle(e.restoreParticipantStatuses))
	e.Register(undodomain.CmdRoundDeleteCreated, handle(e.deleteCreatedRound))

	return e
}

// Register installs or replaces the handler for t.
func (e *Executor) Register(t undodomain.CommandType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[t] = h
}

// Handles reports whether a handler exists for t.
func (e *Executor) Handles(t undodomain.CommandType) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.handlers[t]
	return ok
}

// Execute runs cmd's handler. A structurally invalid payload is logged and treated as a
// successful no-op so that a stale entry can never block the undo slot.
func (e *Executor) Execute(ctx context.Context, scope sharedtypes.Scope, cmd undodomain.Command) error {
	if cmd == nil {
		return errors.New("nil undo command")
	}
	cmdType := cmd.Type()

	ctx, span := e.tracer.Start(ctx, "UndoExecutor.Execute", trace.WithAttributes(
		attribute.String("scope", scope.String()),
		attribute.String("command_type", string(cmdType)),
	))
	defer span.End()

	e.mu.RLock()
	h, ok := e.handlers[cmdType]
	e.mu.RUnlock()
	if !ok {
		err := &UnsupportedCommandError{Type: cmdType}
		e.logger.ErrorContext(ctx, "No handler for undo command",
			attr.ExtractCorrelationID(ctx),
			attr.Scope(scope.String()),
			attr.String("command_type", string(cmdType)),
		)
		e.metrics.RecordCommandDispatch(ctx, string(cmdType), metrics.OutcomeUnsupported)
		span.RecordError(err)
		return err
	}

	if !cmd.Valid() {
		e.logger.WarnContext(ctx, "Malformed undo payload skipped",
			attr.ExtractCorrelationID(ctx),
			attr.Scope(scope.String()),
			attr.String("command_type", string(cmdType)),
			attr.Any("payload", cmd),
		)
		e.metrics.RecordCommandDispatch(ctx, string(cmdType), metrics.OutcomeMalformed)
		return nil
	}

	if err := h(ctx, scope, cmd); err != nil {
		e.logger.ErrorContext(ctx, "Undo command failed",
			attr.ExtractCorrelationID(ctx),
			attr.Scope(scope.String()),
			attr.String("command_type", string(cmdType)),
			attr.Error(err),
		)
		e.metrics.RecordCommandDispatch(ctx, string(cmdType), metrics.OutcomeFailure)
		span.RecordError(err)
		return fmt.Errorf("%s: %w", cmdType, err)
	}

	e.metrics.RecordCommandDispatch(ctx, string(cmdType), metrics.OutcomeSuccess)
	return nil
}

// handle adapts a typed handler to Handler.
func handle[C undodomain.Command](fn func(context.Context, sharedtypes.Scope, C) error) Handler {
	return func(ctx context.Context, scope sharedtypes.Scope, cmd undodomain.Command) error {
		c, ok := cmd.(C)
		if !ok {
			return fmt.Errorf("handler received %T", cmd)
		}
		return fn(ctx, scope, c)
	}
}

// fanOut issues one call per item concurrently and returns the first error.
func fanOut[T any](ctx context.Context, items []T, call func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		g.Go(func() error { return call(gctx, item) })
	}
	return g.Wait()
}

func (e *Executor) restoreAttendance(ctx context.Context, scope sharedtypes.Scope, c undodomain.AttendanceRestore) error {
	return fanOut(ctx, c.Marks, func(ctx context.Context, m rounddomain.AttendanceMark) error {
		return e.backend.MarkAttendance(ctx, scope, c.RoundID, m)
	})
}

func (e *Executor) restoreScores(ctx context.Context, scope sharedtypes.Scope, c undodomain.ScoresRestore) error {
	return fanOut(ctx, c.Scores, func(ctx context.Context, s rounddomain.Score) error {
		return e.backend.SetScore(ctx, scope, c.RoundID, s)
	})
}

func (e *Executor) restorePanelAssignments(ctx context.Context, scope sharedtypes.Scope, c undodomain.PanelAssignmentsRestore) error {
	return fanOut(ctx, c.Assignments, func(ctx context.Context, a rounddomain.PanelAssignment) error {
		return e.backend.AssignPanel(ctx, scope, c.RoundID, a)
	})
}

func (e *Executor) restorePanelDefinitions(ctx context.Context, scope sharedtypes.Scope, c undodomain.PanelDefinitionsRestore) error {
	return e.backend.ReplacePanels(ctx, scope, c.RoundID, c.Panels)
}

func (e *Executor) restoreRoundPatch(ctx context.Context, scope sharedtypes.Scope, c undodomain.RoundPatchRestore) error {
	return e.backend.UpdateRound(ctx, scope, c.RoundID, rounddomain.Update{Patch: c.Patch})
}

func (e *Executor) restoreRoundState(ctx context.Context, scope sharedtypes.Scope, c undodomain.RoundStateRestore) error {
	return e.backend.UpdateRound(ctx, scope, c.RoundID, rounddomain.StateUpdate(c.State))
}

func (e *Executor) restoreRoundFreeze(ctx context.Context, scope sharedtypes.Scope, c undodomain.RoundFreezeRestore) error {
	return e.backend.UpdateRound(ctx, scope, c.RoundID, rounddomain.FrozenUpdate(c.Frozen))
}

func (e *Executor) restoreEventFlags(ctx context.Context, scope sharedtypes.Scope, c undodomain.EventFlagsRestore) error {
	return e.backend.SetEventFlags(ctx, scope, c.Flags)
}

func (e *Executor) restoreParticipantStatuses(ctx context.Context, scope sharedtypes.Scope, c undodomain.ParticipantStatusBulkRestore) error {
	return fanOut(ctx, c.Items, func(ctx context.Context, it eventdomain.StatusChange) error {
		return e.backend.SetParticipantStatus(ctx, scope, it)
	})
}

func (e *Executor) deleteCreatedRound(ctx context.Context, scope sharedtypes.Scope, c undodomain.RoundDeleteCreated) error {
	return e.backend.DeleteRound(ctx, scope, c.RoundID)
}
