package roundservice

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"go.opentelemetry.io/otel/trace/noop"
)

// ------------------------
// Fake Backend
// ------------------------

// FakeBackend is an in-memory scoring backend. The *Err fields force failures.
type FakeBackend struct {
	mu     sync.Mutex
	trace  []string
	nextID sharedtypes.RoundID

	rounds      map[sharedtypes.RoundID]rounddomain.Round
	attendance  map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]bool
	scores      map[sharedtypes.RoundID]map[string]rounddomain.Score
	panels      map[sharedtypes.RoundID][]rounddomain.Panel
	assignments map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]*sharedtypes.PanelID
	flags       eventdomain.Flags
	statuses    map[sharedtypes.ParticipantID]eventdomain.ParticipantStatus
	lastUpdate  rounddomain.Update

	UpdateErr error
	DeleteErr error
	WriteErr  error
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		trace:       []string{},
		nextID:      1,
		rounds:      make(map[sharedtypes.RoundID]rounddomain.Round),
		attendance:  make(map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]bool),
		scores:      make(map[sharedtypes.RoundID]map[string]rounddomain.Score),
		panels:      make(map[sharedtypes.RoundID][]rounddomain.Panel),
		assignments: make(map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]*sharedtypes.PanelID),
		flags:       eventdomain.Flags{},
		statuses:    make(map[sharedtypes.ParticipantID]eventdomain.ParticipantStatus),
	}
}

func (f *FakeBackend) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeBackend) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

// Seed stores r as-is, assigning an ID when it has none.
func (f *FakeBackend) Seed(r rounddomain.Round) rounddomain.Round {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == 0 {
		r.ID = f.nextID
	}
	if r.ID >= f.nextID {
		f.nextID = r.ID + 1
	}
	f.rounds[r.ID] = r
	return r
}

func (f *FakeBackend) Round(id sharedtypes.RoundID) (rounddomain.Round, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[id]
	return r, ok
}

func (f *FakeBackend) ListRounds(_ context.Context, scope sharedtypes.Scope) ([]rounddomain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListRounds")
	var out []rounddomain.Round
	for _, r := range f.rounds {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (f *FakeBackend) GetRound(_ context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID) (rounddomain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetRound")
	r, ok := f.rounds[id]
	if !ok || r.Scope != scope {
		return rounddomain.Round{}, rounddomain.ErrRoundNotFound
	}
	return r, nil
}

func (f *FakeBackend) CreateRound(_ context.Context, scope sharedtypes.Scope, in rounddomain.NewRound) (rounddomain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateRound")
	maxOrdinal := 0
	for _, r := range f.rounds {
		if r.Scope == scope && r.Ordinal > maxOrdinal {
			maxOrdinal = r.Ordinal
		}
	}
	r := rounddomain.Round{
		ID:          f.nextID,
		Scope:       scope,
		Ordinal:     maxOrdinal + 1,
		Name:        in.Name,
		Description: in.Description,
		Metadata:    in.Metadata,
		State:       rounddomain.StateDraft,
		CreatedAt:   time.Now(),
	}
	f.nextID++
	f.rounds[r.ID] = r
	return r, nil
}

func (f *FakeBackend) UpdateRound(_ context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID, u rounddomain.Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateRound")
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	r, ok := f.rounds[id]
	if !ok {
		return rounddomain.ErrRoundNotFound
	}
	f.lastUpdate = u
	if u.State != nil {
		r.State = *u.State
	}
	if u.Frozen != nil {
		r.Frozen = *u.Frozen
	}
	if u.Patch.Ordinal != nil && *u.Patch.Ordinal != r.Ordinal {
		for sid, sib := range f.rounds {
			if sib.Scope == scope && sid != id && sib.Ordinal == *u.Patch.Ordinal {
				sib.Ordinal = r.Ordinal
				f.rounds[sid] = sib
			}
		}
	}
	f.rounds[id] = u.Patch.Apply(r)
	return nil
}

func (f *FakeBackend) DeleteRound(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteRound")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.rounds, id)
	return nil
}

func (f *FakeBackend) GetAttendance(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID) ([]rounddomain.AttendanceMark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []rounddomain.AttendanceMark{}
	for pid, present := range f.attendance[id] {
		out = append(out, rounddomain.AttendanceMark{ParticipantID: pid, Present: &present})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (f *FakeBackend) MarkAttendance(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID, m rounddomain.AttendanceMark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MarkAttendance")
	if f.WriteErr != nil {
		return f.WriteErr
	}
	if m.Present == nil {
		delete(f.attendance[id], m.ParticipantID)
		return nil
	}
	if f.attendance[id] == nil {
		f.attendance[id] = make(map[sharedtypes.ParticipantID]bool)
	}
	f.attendance[id][m.ParticipantID] = *m.Present
	return nil
}

func (f *FakeBackend) GetScores(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID) ([]rounddomain.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []rounddomain.Score{}
	for _, s := range f.scores[id] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParticipantID != out[j].ParticipantID {
			return out[i].ParticipantID < out[j].ParticipantID
		}
		return out[i].Criterion < out[j].Criterion
	})
	return out, nil
}

func (f *FakeBackend) SetScore(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID, s rounddomain.Score) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetScore")
	if f.WriteErr != nil {
		return f.WriteErr
	}
	if f.scores[id] == nil {
		f.scores[id] = make(map[string]rounddomain.Score)
	}
	key := participantKey(s.ParticipantID) + "/" + s.Criterion
	if s.Value == nil {
		delete(f.scores[id], key)
		return nil
	}
	f.scores[id][key] = s
	return nil
}

func (f *FakeBackend) GetPanels(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID) ([]rounddomain.Panel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rounddomain.Panel{}, f.panels[id]...), nil
}

func (f *FakeBackend) ReplacePanels(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID, panels []rounddomain.Panel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReplacePanels")
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.panels[id] = append([]rounddomain.Panel{}, panels...)
	return nil
}

func (f *FakeBackend) GetPanelAssignments(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID) ([]rounddomain.PanelAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []rounddomain.PanelAssignment{}
	for pid, panel := range f.assignments[id] {
		if panel != nil {
			out = append(out, rounddomain.PanelAssignment{ParticipantID: pid, PanelID: panel})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (f *FakeBackend) AssignPanel(_ context.Context, _ sharedtypes.Scope, id sharedtypes.RoundID, a rounddomain.PanelAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AssignPanel")
	if f.WriteErr != nil {
		return f.WriteErr
	}
	if f.assignments[id] == nil {
		f.assignments[id] = make(map[sharedtypes.ParticipantID]*sharedtypes.PanelID)
	}
	f.assignments[id][a.ParticipantID] = a.PanelID
	return nil
}

func (f *FakeBackend) SetEventFlags(_ context.Context, _ sharedtypes.Scope, flags eventdomain.Flags) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags = flags.Clone()
	return nil
}

func (f *FakeBackend) SetParticipantStatus(_ context.Context, _ sharedtypes.Scope, c eventdomain.StatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[c.ParticipantID] = c.Status
	return nil
}

var (
	_ Backend             = (*FakeBackend)(nil)
	_ undoservice.Backend = (*FakeBackend)(nil)
)

// ------------------------
// Fake Action Publisher
// ------------------------

type FakeActionPublisher struct {
	mu      sync.Mutex
	actions []sharedevents.ActionRecordedPayloadV1
}

func (f *FakeActionPublisher) PublishAction(_ context.Context, p sharedevents.ActionRecordedPayloadV1) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, p)
	return nil
}

func (f *FakeActionPublisher) Actions() []sharedevents.ActionRecordedPayloadV1 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sharedevents.ActionRecordedPayloadV1(nil), f.actions...)
}

// ------------------------
// Harness
// ------------------------

const testScope sharedtypes.Scope = "spring-open"

type harness struct {
	backend   *FakeBackend
	undo      *undoservice.UndoService
	publisher *FakeActionPublisher
	svc       *LifecycleService
}

// newHarness wires the lifecycle service to a real undo service over the fake backend.
func newHarness() *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	m := metrics.NewNoop()

	backend := NewFakeBackend()
	setters := undoservice.NewSetters()
	undo := undoservice.NewUndoService(
		undoservice.NewRegister(),
		undoservice.NewExecutor(backend, logger, m, tracer),
		undoservice.NewGate(logger),
		setters,
		logger, m, tracer,
	)
	publisher := &FakeActionPublisher{}
	svc := NewLifecycleService(backend, undo, setters, publisher, logger, m, tracer)
	return &harness{backend: backend, undo: undo, publisher: publisher, svc: svc}
}
