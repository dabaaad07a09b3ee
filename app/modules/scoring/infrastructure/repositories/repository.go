package scoringdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a round or participant does not exist.
var ErrNotFound = errors.New("not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new scoring repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func (r *Impl) ListRounds(ctx context.Context, db bun.IDB, scope sharedtypes.Scope) ([]Round, error) {
	db = r.resolveDB(db)
	var rounds []Round
	err := db.NewSelect().
		Model(&rounds).
		Where("scope = ?", scope).
		Order("ordinal ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

func (r *Impl) GetRound(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Where("scope = ?", scope).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "round")
	}
	return round, nil
}

func (r *Impl) GetRoundForUpdate(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Where("scope = ?", scope).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "round")
	}
	return round, nil
}

func (r *Impl) RoundAtOrdinal(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, ordinal int) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Where("scope = ?", scope).
		Where("ordinal = ?", ordinal).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "round by ordinal")
	}
	return round, nil
}

func (r *Impl) MaxOrdinal(ctx context.Context, db bun.IDB, scope sharedtypes.Scope) (int, error) {
	db = r.resolveDB(db)
	var max sql.NullInt64
	err := db.NewSelect().
		Model((*Round)(nil)).
		ColumnExpr("MAX(ordinal)").
		Where("scope = ?", scope).
		Scan(ctx, &max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max ordinal: %w", err)
	}
	return int(max.Int64), nil
}

func (r *Impl) InsertRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	now := time.Now()
	round.CreatedAt, round.UpdatedAt = now, now
	if _, err := db.NewInsert().Model(round).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}
	return nil
}

func (r *Impl) UpdateRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	round.UpdatedAt = time.Now()
	res, err := db.NewUpdate().
		Model(round).
		Column("ordinal", "name", "description", "metadata", "state", "frozen", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	return requireRow(res)
}

func (r *Impl) DeleteRound(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("scope = ?", scope).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) ListAttendance(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Attendance, error) {
	db = r.resolveDB(db)
	var rows []Attendance
	err := db.NewSelect().
		Model(&rows).
		Where("round_id = ?", roundID).
		Order("participant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return rows, nil
}

func (r *Impl) UpsertAttendance(ctx context.Context, db bun.IDB, row *Attendance) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (round_id, participant_id) DO UPDATE").
		Set("present = EXCLUDED.present").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

func (r *Impl) DeleteAttendance(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, participantID sharedtypes.ParticipantID) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*Attendance)(nil)).
		Where("round_id = ?", roundID).
		Where("participant_id = ?", participantID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}

func (r *Impl) ListScores(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Score, error) {
	db = r.resolveDB(db)
	var rows []Score
	err := db.NewSelect().
		Model(&rows).
		Where("round_id = ?", roundID).
		Order("participant_id ASC", "criterion ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return rows, nil
}

func (r *Impl) UpsertScore(ctx context.Context, db bun.IDB, row *Score) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (round_id, participant_id, criterion) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}
	return nil
}

func (r *Impl) DeleteScore(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, participantID sharedtypes.ParticipantID, criterion string) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*Score)(nil)).
		Where("round_id = ?", roundID).
		Where("participant_id = ?", participantID).
		Where("criterion = ?", criterion).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete score: %w", err)
	}
	return nil
}

func (r *Impl) ListPanels(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Panel, error) {
	db = r.resolveDB(db)
	var rows []Panel
	err := db.NewSelect().
		Model(&rows).
		Where("round_id = ?", roundID).
		Order("panel_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list panels: %w", err)
	}
	return rows, nil
}

// ReplacePanels deletes the round's panels and inserts panels. Callers run it in a
// transaction.
func (r *Impl) ReplacePanels(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, panels []Panel) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*Panel)(nil)).Where("round_id = ?", roundID).Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear panels: %w", err)
	}
	if len(panels) == 0 {
		return nil
	}
	for i := range panels {
		panels[i].RoundID = roundID
	}
	if _, err := db.NewInsert().Model(&panels).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert panels: %w", err)
	}
	return nil
}

func (r *Impl) ListPanelAssignments(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]PanelAssignment, error) {
	db = r.resolveDB(db)
	var rows []PanelAssignment
	err := db.NewSelect().
		Model(&rows).
		Where("round_id = ?", roundID).
		Order("participant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list panel assignments: %w", err)
	}
	return rows, nil
}

func (r *Impl) UpsertPanelAssignment(ctx context.Context, db bun.IDB, row *PanelAssignment) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (round_id, participant_id) DO UPDATE").
		Set("panel_id = EXCLUDED.panel_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert panel assignment: %w", err)
	}
	return nil
}

func (r *Impl) DeletePanelAssignment(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID, participantID sharedtypes.ParticipantID) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*PanelAssignment)(nil)).
		Where("round_id = ?", roundID).
		Where("participant_id = ?", participantID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete panel assignment: %w", err)
	}
	return nil
}

func (r *Impl) GetFlags(ctx context.Context, db bun.IDB, scope sharedtypes.Scope) (eventdomain.Flags, error) {
	db = r.resolveDB(db)
	row := new(EventFlags)
	err := db.NewSelect().Model(row).Where("scope = ?", scope).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eventdomain.Flags{}, nil
		}
		return nil, fmt.Errorf("failed to get event flags: %w", err)
	}
	if row.Flags == nil {
		return eventdomain.Flags{}, nil
	}
	return row.Flags, nil
}

func (r *Impl) ReplaceFlags(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, flags eventdomain.Flags) error {
	db = r.resolveDB(db)
	row := &EventFlags{Scope: scope, Flags: flags, UpdatedAt: time.Now()}
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (scope) DO UPDATE").
		Set("flags = EXCLUDED.flags").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to replace event flags: %w", err)
	}
	return nil
}

func (r *Impl) ListParticipants(ctx context.Context, db bun.IDB, scope sharedtypes.Scope) ([]Participant, error) {
	db = r.resolveDB(db)
	var rows []Participant
	err := db.NewSelect().
		Model(&rows).
		Where("scope = ?", scope).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return rows, nil
}

func (r *Impl) InsertParticipant(ctx context.Context, db bun.IDB, p *Participant) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(p).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func (r *Impl) UpdateParticipantStatus(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.ParticipantID, status eventdomain.ParticipantStatus, eliminatedIn *sharedtypes.RoundID) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Participant)(nil)).
		Set("status = ?", status).
		Set("eliminated_in_round = ?", eliminatedIn).
		Where("scope = ?", scope).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return requireRow(res)
}
