package scoringservice

import (
	"context"
	"sort"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	scoringdb "github.com/Black-And-White-Club/stage-console/app/modules/scoring/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Scoring Repo
// ------------------------

// FakeRepo is an in-memory Repository. It ignores the db handle.
type FakeRepo struct {
	trace []string

	rounds       map[sharedtypes.RoundID]scoringdb.Round
	attendance   map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]bool
	scores       map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]map[string]float64
	panels       map[sharedtypes.RoundID][]scoringdb.Panel
	assignments  map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]sharedtypes.PanelID
	flags        map[sharedtypes.Scope]eventdomain.Flags
	participants map[sharedtypes.ParticipantID]scoringdb.Participant
	nextRound    sharedtypes.RoundID
	nextPart     sharedtypes.ParticipantID
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		trace:        []string{},
		rounds:       make(map[sharedtypes.RoundID]scoringdb.Round),
		attendance:   make(map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]bool),
		scores:       make(map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]map[string]float64),
		panels:       make(map[sharedtypes.RoundID][]scoringdb.Panel),
		assignments:  make(map[sharedtypes.RoundID]map[sharedtypes.ParticipantID]sharedtypes.PanelID),
		flags:        make(map[sharedtypes.Scope]eventdomain.Flags),
		participants: make(map[sharedtypes.ParticipantID]scoringdb.Participant),
		nextRound:    1,
		nextPart:     1,
	}
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) ListRounds(_ context.Context, _ bun.IDB, scope sharedtypes.Scope) ([]scoringdb.Round, error) {
	f.record("ListRounds")
	var out []scoringdb.Round
	for _, r := range f.rounds {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (f *FakeRepo) GetRound(_ context.Context, _ bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) (*scoringdb.Round, error) {
	f.record("GetRound")
	r, ok := f.rounds[id]
	if !ok || r.Scope != scope {
		return nil, scoringdb.ErrNotFound
	}
	return &r, nil
}

func (f *FakeRepo) GetRoundForUpdate(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) (*scoringdb.Round, error) {
	return f.GetRound(ctx, db, scope, id)
}

func (f *FakeRepo) RoundAtOrdinal(_ context.Context, _ bun.IDB, scope sharedtypes.Scope, ordinal int) (*scoringdb.Round, error) {
	for _, r := range f.rounds {
		if r.Scope == scope && r.Ordinal == ordinal {
			return &r, nil
		}
	}
	return nil, scoringdb.ErrNotFound
}

func (f *FakeRepo) MaxOrdinal(_ context.Context, _ bun.IDB, scope sharedtypes.Scope) (int, error) {
	max := 0
	for _, r := range f.rounds {
		if r.Scope == scope && r.Ordinal > max {
			max = r.Ordinal
		}
	}
	return max, nil
}

func (f *FakeRepo) InsertRound(_ context.Context, _ bun.IDB, round *scoringdb.Round) error {
	f.record("InsertRound")
	round.ID = f.nextRound
	f.nextRound++
	f.rounds[round.ID] = *round
	return nil
}

func (f *FakeRepo) UpdateRound(_ context.Context, _ bun.IDB, round *scoringdb.Round) error {
	f.record("UpdateRound")
	if _, ok := f.rounds[round.ID]; !ok {
		return scoringdb.ErrNotFound
	}
	f.rounds[round.ID] = *round
	return nil
}

func (f *FakeRepo) DeleteRound(_ context.Context, _ bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) error {
	f.record("DeleteRound")
	r, ok := f.rounds[id]
	if !ok || r.Scope != scope {
		return scoringdb.ErrNotFound
	}
	delete(f.rounds, id)
	return nil
}

func (f *FakeRepo) ListAttendance(_ context.Context, _ bun.IDB, roundID sharedtypes.RoundID) ([]scoringdb.Attendance, error) {
	var out []scoringdb.Attendance
	for pid, present := range f.attendance[roundID] {
		out = append(out, scoringdb.Attendance{RoundID: roundID, ParticipantID: pid, Present: present})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (f *FakeRepo) UpsertAttendance(_ context.Context, _ bun.IDB, row *scoringdb.Attendance) error {
	if f.attendance[row.RoundID] == nil {
		f.attendance[row.RoundID] = make(map[sharedtypes.ParticipantID]bool)
	}
	f.attendance[row.RoundID][row.ParticipantID] = row.Present
	return nil
}

func (f *FakeRepo) DeleteAttendance(_ context.Context, _ bun.IDB, roundID sharedtypes.RoundID, participantID sharedtypes.ParticipantID) error {
	f.record("DeleteAttendance")
	delete(f.attendance[roundID], participantID)
	return nil
}

func (f *FakeRepo) ListScores(_ context.Context, _ bun.IDB, roundID sharedtypes.RoundID) ([]scoringdb.Score, error) {
	var out []scoringdb.Score
	for pid, byCriterion := range f.scores[roundID] {
		for c, v := range byCriterion {
			out = append(out, scoringdb.Score{RoundID: roundID, ParticipantID: pid, Criterion: c, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParticipantID != out[j].ParticipantID {
			return out[i].ParticipantID < out[j].ParticipantID
		}
		return out[i].Criterion < out[j].Criterion
	})
	return out, nil
}

func (f *FakeRepo) UpsertScore(_ context.Context, _ bun.IDB, row *scoringdb.Score) error {
	if f.scores[row.RoundID] == nil {
		f.scores[row.RoundID] = make(map[sharedtypes.ParticipantID]map[string]float64)
	}
	if f.scores[row.RoundID][row.ParticipantID] == nil {
		f.scores[row.RoundID][row.ParticipantID] = make(map[string]float64)
	}
	f.scores[row.RoundID][row.ParticipantID][row.Criterion] = row.Value
	return nil
}

func (f *FakeRepo) DeleteScore(_ context.Context, _ bun.IDB, roundID sharedtypes.RoundID, pid sharedtypes.ParticipantID, criterion string) error {
	f.record("DeleteScore")
	delete(f.scores[roundID][pid], criterion)
	return nil
}

func (f *FakeRepo) ListPanels(_ context.Context, _ bun.IDB, roundID sharedtypes.RoundID) ([]scoringdb.Panel, error) {
	return append([]scoringdb.Panel(nil), f.panels[roundID]...), nil
}

func (f *FakeRepo) ReplacePanels(_ context.Context, _ bun.IDB, roundID sharedtypes.RoundID, panels []scoringdb.Panel) error {
	f.panels[roundID] = append([]scoringdb.Panel(nil), panels...)
	return nil
}

func (f *FakeRepo) ListPanelAssignments(_ context.Context, _ bun.IDB, roundID sharedtypes.RoundID) ([]scoringdb.PanelAssignment, error) {
	var out []scoringdb.PanelAssignment
	for pid, panel := range f.assignments[roundID] {
		out = append(out, scoringdb.PanelAssignment{RoundID: roundID, ParticipantID: pid, PanelID: panel})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (f *FakeRepo) UpsertPanelAssignment(_ context.Context, _ bun.IDB, row *scoringdb.PanelAssignment) error {
	if f.assignments[row.RoundID] == nil {
		f.assignments[row.RoundID] = make(map[sharedtypes.ParticipantID]sharedtypes.PanelID)
	}
	f.assignments[row.RoundID][row.ParticipantID] = row.PanelID
	return nil
}

func (f *FakeRepo) DeletePanelAssignment(_ context.Context, _ bun.IDB, roundID sharedtypes.RoundID, pid sharedtypes.ParticipantID) error {
	f.record("DeletePanelAssignment")
	delete(f.assignments[roundID], pid)
	return nil
}

func (f *FakeRepo) GetFlags(_ context.Context, _ bun.IDB, scope sharedtypes.Scope) (eventdomain.Flags, error) {
	if flags, ok := f.flags[scope]; ok {
		return flags.Clone(), nil
	}
	return eventdomain.Flags{}, nil
}

func (f *FakeRepo) ReplaceFlags(_ context.Context, _ bun.IDB, scope sharedtypes.Scope, flags eventdomain.Flags) error {
	f.flags[scope] = flags.Clone()
	return nil
}

func (f *FakeRepo) ListParticipants(_ context.Context, _ bun.IDB, scope sharedtypes.Scope) ([]scoringdb.Participant, error) {
	var out []scoringdb.Participant
	for _, p := range f.participants {
		if p.Scope == scope {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeRepo) InsertParticipant(_ context.Context, _ bun.IDB, p *scoringdb.Participant) error {
	p.ID = f.nextPart
	f.nextPart++
	f.participants[p.ID] = *p
	return nil
}

func (f *FakeRepo) UpdateParticipantStatus(_ context.Context, _ bun.IDB, scope sharedtypes.Scope, id sharedtypes.ParticipantID, status eventdomain.ParticipantStatus, eliminatedIn *sharedtypes.RoundID) error {
	f.record("UpdateParticipantStatus")
	p, ok := f.participants[id]
	if !ok || p.Scope != scope {
		return scoringdb.ErrNotFound
	}
	p.Status = status
	p.EliminatedInRound = eliminatedIn
	f.participants[id] = p
	return nil
}

var _ scoringdb.Repository = (*FakeRepo)(nil)
