package eventservice

import (
	"context"
	"io"
	"log/slog"
	"sync"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"go.opentelemetry.io/otel/trace/noop"
)

const testScope sharedtypes.Scope = "spring-open"

// FakeBackend keeps one event's flags and roster in memory. It also satisfies the undo
// executor's backend so restores land in the same state.
type FakeBackend struct {
	mu           sync.Mutex
	flags        eventdomain.Flags
	participants map[sharedtypes.ParticipantID]eventdomain.Participant
	nextID       sharedtypes.ParticipantID
	trace        []string

	// FailStatusAfter fails SetParticipantStatus once this many writes succeeded; 0 disables.
	FailStatusAfter int
	statusWrites    int
	StatusErr       error
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		flags:        eventdomain.Flags{},
		participants: make(map[sharedtypes.ParticipantID]eventdomain.Participant),
		nextID:       1,
	}
}

func (f *FakeBackend) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeBackend) GetEventFlags(context.Context, sharedtypes.Scope) (eventdomain.Flags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags.Clone(), nil
}

func (f *FakeBackend) SetEventFlags(_ context.Context, _ sharedtypes.Scope, flags eventdomain.Flags) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "SetEventFlags")
	f.flags = flags.Clone()
	return nil
}

func (f *FakeBackend) ListParticipants(context.Context, sharedtypes.Scope) ([]eventdomain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]eventdomain.Participant, 0, len(f.participants))
	for _, p := range f.participants {
		out = append(out, p)
	}
	return out, nil
}

func (f *FakeBackend) AddParticipant(_ context.Context, scope sharedtypes.Scope, name string) (eventdomain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := eventdomain.Participant{ID: f.nextID, Scope: scope, Name: name, Status: eventdomain.StatusActive}
	f.nextID++
	f.participants[p.ID] = p
	return p, nil
}

func (f *FakeBackend) SetParticipantStatus(_ context.Context, _ sharedtypes.Scope, c eventdomain.StatusChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "SetParticipantStatus")
	if f.FailStatusAfter > 0 && f.statusWrites >= f.FailStatusAfter {
		return f.StatusErr
	}
	f.statusWrites++
	p := f.participants[c.ParticipantID]
	p.Status = c.Status
	switch {
	case c.Status != eventdomain.StatusEliminated:
		p.EliminatedInRound = nil
	case c.EliminatedInRound != nil:
		p.EliminatedInRound = c.EliminatedInRound
	}
	f.participants[c.ParticipantID] = p
	return nil
}

func (f *FakeBackend) Participant(id sharedtypes.ParticipantID) eventdomain.Participant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.participants[id]
}

func (f *FakeBackend) Status(id sharedtypes.ParticipantID) eventdomain.ParticipantStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.participants[id].Status
}

// The round half of the undo backend is never reached from these tests.
func (f *FakeBackend) MarkAttendance(context.Context, sharedtypes.Scope, sharedtypes.RoundID, rounddomain.AttendanceMark) error {
	return nil
}

func (f *FakeBackend) SetScore(context.Context, sharedtypes.Scope, sharedtypes.RoundID, rounddomain.Score) error {
	return nil
}

func (f *FakeBackend) AssignPanel(context.Context, sharedtypes.Scope, sharedtypes.RoundID, rounddomain.PanelAssignment) error {
	return nil
}

func (f *FakeBackend) ReplacePanels(context.Context, sharedtypes.Scope, sharedtypes.RoundID, []rounddomain.Panel) error {
	return nil
}

func (f *FakeBackend) UpdateRound(context.Context, sharedtypes.Scope, sharedtypes.RoundID, rounddomain.Update) error {
	return nil
}

func (f *FakeBackend) DeleteRound(context.Context, sharedtypes.Scope, sharedtypes.RoundID) error {
	return nil
}

var (
	_ Backend             = (*FakeBackend)(nil)
	_ undoservice.Backend = (*FakeBackend)(nil)
)

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

type harness struct {
	backend   *FakeBackend
	undo      *undoservice.UndoService
	publisher *FakeActionPublisher
	svc       *EventService
}

func newHarness() *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	m := metrics.NewNoop()

	backend := NewFakeBackend()
	undo := undoservice.NewUndoService(
		undoservice.NewRegister(),
		undoservice.NewExecutor(backend, logger, m, tracer),
		undoservice.NewGate(logger),
		undoservice.NewSetters(),
		logger, m, tracer,
	)
	publisher := &FakeActionPublisher{}
	return &harness{
		backend:   backend,
		undo:      undo,
		publisher: publisher,
		svc:       NewEventService(backend, undo, publisher, logger, m, tracer),
	}
}
