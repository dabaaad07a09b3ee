package scoringservice

import (
	"context"

	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	scoringdb "github.com/Black-And-White-Club/stage-console/app/modules/scoring/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

func (s *ScoringService) GetEventFlags(ctx context.Context, scope sharedtypes.Scope) (eventdomain.Flags, error) {
	var out eventdomain.Flags
	err := s.traced(ctx, "GetEventFlags", scope, func(ctx context.Context) error {
		flags, err := s.repo.GetFlags(ctx, nil, scope)
		out = flags
		return err
	})
	return out, err
}

// SetEventFlags stores flags as the event's complete flag set.
func (s *ScoringService) SetEventFlags(ctx context.Context, scope sharedtypes.Scope, flags eventdomain.Flags) error {
	return s.traced(ctx, "SetEventFlags", scope, func(ctx context.Context) error {
		return s.repo.ReplaceFlags(ctx, nil, scope, flags.Clone())
	})
}

func (s *ScoringService) ListParticipants(ctx context.Context, scope sharedtypes.Scope) ([]eventdomain.Participant, error) {
	var out []eventdomain.Participant
	err := s.traced(ctx, "ListParticipants", scope, func(ctx context.Context) error {
		rows, err := s.repo.ListParticipants(ctx, nil, scope)
		if err != nil {
			return err
		}
		out = make([]eventdomain.Participant, 0, len(rows))
		for i := range rows {
			out = append(out, rows[i].ToDomain())
		}
		return nil
	})
	return out, err
}

func (s *ScoringService) AddParticipant(ctx context.Context, scope sharedtypes.Scope, name string) (eventdomain.Participant, error) {
	var out eventdomain.Participant
	err := s.traced(ctx, "AddParticipant", scope, func(ctx context.Context) error {
		row := &scoringdb.Participant{Scope: scope, Name: name, Status: eventdomain.StatusActive}
		if err := s.repo.InsertParticipant(ctx, nil, row); err != nil {
			return err
		}
		out = row.ToDomain()
		return nil
	})
	return out, err
}

// SetParticipantStatus overwrites one participant's status. Any status other than
// eliminated clears the round they were eliminated in. Eliminating without a round keeps
// the round already recorded.
func (s *ScoringService) SetParticipantStatus(ctx context.Context, scope sharedtypes.Scope, c eventdomain.StatusChange) error {
	return s.traced(ctx, "SetParticipantStatus", scope, func(ctx context.Context) error {
		eliminatedIn := c.EliminatedInRound
		if c.Status == eventdomain.StatusEliminated && eliminatedIn == nil {
			current, err := s.repo.ListParticipants(ctx, nil, scope)
			if err != nil {
				return err
			}
			for _, p := range current {
				if p.ID == c.ParticipantID {
					eliminatedIn = p.EliminatedInRound
				}
			}
		}
		if c.Status != eventdomain.StatusEliminated {
			eliminatedIn = nil
		}
		if err := s.repo.UpdateParticipantStatus(ctx, nil, scope, c.ParticipantID, c.Status, eliminatedIn); err != nil {
			return participantErr(err, c.ParticipantID)
		}
		return nil
	})
}
