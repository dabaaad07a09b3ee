package scoringservice

import (
	"context"
	"errors"
	"fmt"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	scoringdb "github.com/Black-And-White-Club/stage-console/app/modules/scoring/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/uptrace/bun"
)

// ErrInvalidUpdate is returned for an update the backend cannot store.
var ErrInvalidUpdate = errors.New("invalid round update")

func (s *ScoringService) ListRounds(ctx context.Context, scope sharedtypes.Scope) ([]rounddomain.Round, error) {
	var out []rounddomain.Round
	err := s.traced(ctx, "ListRounds", scope, func(ctx context.Context) error {
		rows, err := s.repo.ListRounds(ctx, nil, scope)
		if err != nil {
			return err
		}
		out = make([]rounddomain.Round, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].ToDomain())
		}
		return nil
	})
	return out, err
}

func (s *ScoringService) GetRound(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID) (rounddomain.Round, error) {
	var out rounddomain.Round
	err := s.traced(ctx, "GetRound", scope, func(ctx context.Context) error {
		row, err := s.repo.GetRound(ctx, nil, scope, id)
		if err != nil {
			return roundErr(err, id)
		}
		out = row.ToDomain()
		return nil
	})
	return out, err
}

// CreateRound stores a draft round at the next free ordinal.
func (s *ScoringService) CreateRound(ctx context.Context, scope sharedtypes.Scope, in rounddomain.NewRound) (rounddomain.Round, error) {
	var out rounddomain.Round
	err := s.traced(ctx, "CreateRound", scope, func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			max, err := s.repo.MaxOrdinal(ctx, db, scope)
			if err != nil {
				return err
			}
			row := &scoringdb.Round{
				Scope:       scope,
				Ordinal:     max + 1,
				Name:        in.Name,
				Description: in.Description,
				Metadata:    in.Metadata,
				State:       rounddomain.StateDraft,
			}
			if err := s.repo.InsertRound(ctx, db, row); err != nil {
				return err
			}
			out = row.ToDomain()
			return nil
		})
	})
	return out, err
}

// UpdateRound applies a transition request in one transaction. Moving a round onto an
// ordinal a sibling holds swaps the two. An elimination policy is evaluated against the
// round's scores and eliminates participants in the same transaction.
func (s *ScoringService) UpdateRound(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID, u rounddomain.Update) error {
	return s.traced(ctx, "UpdateRound", scope, func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			row, err := s.repo.GetRoundForUpdate(ctx, db, scope, id)
			if err != nil {
				return roundErr(err, id)
			}

			if u.State != nil {
				if !u.State.Valid() {
					return fmt.Errorf("%w: state %q", ErrInvalidUpdate, *u.State)
				}
				row.State = *u.State
			}
			if u.Frozen != nil {
				row.Frozen = *u.Frozen
			}
			if u.Patch.Name != nil {
				row.Name = *u.Patch.Name
			}
			if u.Patch.Description != nil {
				row.Description = *u.Patch.Description
			}
			if u.Patch.Metadata != nil {
				row.Metadata = *u.Patch.Metadata
			}
			if u.Patch.Ordinal != nil && *u.Patch.Ordinal != row.Ordinal {
				if err := s.moveTo(ctx, db, row, *u.Patch.Ordinal); err != nil {
					return err
				}
			}

			if err := s.repo.UpdateRound(ctx, db, row); err != nil {
				return roundErr(err, id)
			}

			if u.Elimination != nil {
				if err := s.shortlist(ctx, db, row, *u.Elimination); err != nil {
					return err
				}
			}
			s.logApplied(ctx, "Round updated", scope, id)
			return nil
		})
	})
}

func (s *ScoringService) moveTo(ctx context.Context, db bun.IDB, row *scoringdb.Round, ordinal int) error {
	if ordinal < 1 {
		return fmt.Errorf("%w: ordinal %d", ErrInvalidUpdate, ordinal)
	}
	sibling, err := s.repo.RoundAtOrdinal(ctx, db, row.Scope, ordinal)
	switch {
	case errors.Is(err, scoringdb.ErrNotFound):
	case err != nil:
		return err
	default:
		sibling.Ordinal = row.Ordinal
		if err := s.repo.UpdateRound(ctx, db, sibling); err != nil {
			return fmt.Errorf("failed to swap ordinal with round %d: %w", sibling.ID, err)
		}
	}
	row.Ordinal = ordinal
	return nil
}

func (s *ScoringService) shortlist(ctx context.Context, db bun.IDB, row *scoringdb.Round, policy rounddomain.EliminationPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	participants, err := s.repo.ListParticipants(ctx, db, row.Scope)
	if err != nil {
		return err
	}
	active := make([]sharedtypes.ParticipantID, 0, len(participants))
	for _, p := range participants {
		if p.Status == eventdomain.StatusActive {
			active = append(active, p.ID)
		}
	}

	scoreRows, err := s.repo.ListScores(ctx, db, row.ID)
	if err != nil {
		return err
	}
	attendanceRows, err := s.repo.ListAttendance(ctx, db, row.ID)
	if err != nil {
		return err
	}

	eliminated := Eliminate(Rank(active, scoresToDomain(scoreRows), attendanceToDomain(attendanceRows)), policy)
	roundID := row.ID
	for _, pid := range eliminated {
		if err := s.repo.UpdateParticipantStatus(ctx, db, row.Scope, pid, eventdomain.StatusEliminated, &roundID); err != nil {
			return participantErr(err, pid)
		}
	}

	s.logger.InfoContext(ctx, "Shortlist applied",
		attr.ExtractCorrelationID(ctx),
		attr.Scope(row.Scope.String()),
		attr.RoundID(int64(row.ID)),
		attr.String("policy", string(policy.Type)),
		attr.Int("eliminated", len(eliminated)),
		attr.Int("remaining", len(active)-len(eliminated)),
	)
	return nil
}

func (s *ScoringService) DeleteRound(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID) error {
	return s.traced(ctx, "DeleteRound", scope, func(ctx context.Context) error {
		if err := s.repo.DeleteRound(ctx, nil, scope, id); err != nil {
			return roundErr(err, id)
		}
		s.logApplied(ctx, "Round deleted", scope, id)
		return nil
	})
}
