package undoservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"go.opentelemetry.io/otel/trace/noop"
)

// ------------------------
// Fake Backend
// ------------------------

type FakeBackend struct {
	mu    sync.Mutex
	trace []string

	MarkAttendanceFunc       func(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, mark rounddomain.AttendanceMark) error
	SetScoreFunc             func(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, score rounddomain.Score) error
	AssignPanelFunc          func(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, a rounddomain.PanelAssignment) error
	ReplacePanelsFunc        func(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, panels []rounddomain.Panel) error
	UpdateRoundFunc          func(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, u rounddomain.Update) error
	DeleteRoundFunc          func(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) error
	SetEventFlagsFunc        func(ctx context.Context, scope sharedtypes.Scope, flags eventdomain.Flags) error
	SetParticipantStatusFunc func(ctx context.Context, scope sharedtypes.Scope, change eventdomain.StatusChange) error
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{trace: []string{}}
}

func (f *FakeBackend) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeBackend) MarkAttendance(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, mark rounddomain.AttendanceMark) error {
	present := "unmarked"
	if mark.Present != nil {
		present = fmt.Sprint(*mark.Present)
	}
	f.record(fmt.Sprintf("MarkAttendance:%d:%d:%s", roundID, mark.ParticipantID, present))
	if f.MarkAttendanceFunc != nil {
		return f.MarkAttendanceFunc(ctx, scope, roundID, mark)
	}
	return nil
}

func (f *FakeBackend) SetScore(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, score rounddomain.Score) error {
	f.record(fmt.Sprintf("SetScore:%d:%d:%s", roundID, score.ParticipantID, score.Criterion))
	if f.SetScoreFunc != nil {
		return f.SetScoreFunc(ctx, scope, roundID, score)
	}
	return nil
}

func (f *FakeBackend) AssignPanel(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, a rounddomain.PanelAssignment) error {
	f.record(fmt.Sprintf("AssignPanel:%d:%d", roundID, a.ParticipantID))
	if f.AssignPanelFunc != nil {
		return f.AssignPanelFunc(ctx, scope, roundID, a)
	}
	return nil
}

func (f *FakeBackend) ReplacePanels(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, panels []rounddomain.Panel) error {
	f.record(fmt.Sprintf("ReplacePanels:%d:%d", roundID, len(panels)))
	if f.ReplacePanelsFunc != nil {
		return f.ReplacePanelsFunc(ctx, scope, roundID, panels)
	}
	return nil
}

func (f *FakeBackend) UpdateRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, u rounddomain.Update) error {
	f.record(fmt.Sprintf("UpdateRound:%d", roundID))
	if f.UpdateRoundFunc != nil {
		return f.UpdateRoundFunc(ctx, scope, roundID, u)
	}
	return nil
}

func (f *FakeBackend) DeleteRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) error {
	f.record(fmt.Sprintf("DeleteRound:%d", roundID))
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, scope, roundID)
	}
	return nil
}

func (f *FakeBackend) SetEventFlags(ctx context.Context, scope sharedtypes.Scope, flags eventdomain.Flags) error {
	f.record("SetEventFlags")
	if f.SetEventFlagsFunc != nil {
		return f.SetEventFlagsFunc(ctx, scope, flags)
	}
	return nil
}

func (f *FakeBackend) SetParticipantStatus(ctx context.Context, scope sharedtypes.Scope, change eventdomain.StatusChange) error {
	f.record(fmt.Sprintf("SetParticipantStatus:%d:%s", change.ParticipantID, change.Status))
	if f.SetParticipantStatusFunc != nil {
		return f.SetParticipantStatusFunc(ctx, scope, change)
	}
	return nil
}

// Trace returns recorded calls sorted, since fan-out order is not deterministic.
func (f *FakeBackend) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	sort.Strings(out)
	return out
}

var _ Backend = (*FakeBackend)(nil)

// ------------------------
// Fake Executor
// ------------------------

type FakeExecutor struct {
	mu    sync.Mutex
	calls []undodomain.Command

	ExecuteFunc func(ctx context.Context, scope sharedtypes.Scope, cmd undodomain.Command) error
}

func (f *FakeExecutor) Execute(ctx context.Context, scope sharedtypes.Scope, cmd undodomain.Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	if f.ExecuteFunc != nil {
		return f.ExecuteFunc(ctx, scope, cmd)
	}
	return nil
}

func (f *FakeExecutor) Calls() []undodomain.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]undodomain.Command(nil), f.calls...)
}

var _ CommandExecutor = (*FakeExecutor)(nil)

// ------------------------
// Helpers
// ------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExecutor(b Backend) *Executor {
	return NewExecutor(b, testLogger(), metrics.NewNoop(), noop.NewTracerProvider().Tracer("test"))
}

func newTestService(exec CommandExecutor) (*UndoService, *Register) {
	reg := NewRegister()
	svc := NewUndoService(reg, exec, NewGate(testLogger()), NewSetters(), testLogger(), metrics.NewNoop(), noop.NewTracerProvider().Tracer("test"))
	return svc, reg
}

// recorder collects register changes.
type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) listen(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) reasons() []ChangeReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChangeReason, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.Reason)
	}
	return out
}

func (r *recorder) last() Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changes[len(r.changes)-1]
}
