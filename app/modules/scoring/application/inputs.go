package scoringservice

import (
	"context"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	scoringdb "github.com/Black-And-White-Club/stage-console/app/modules/scoring/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/uptrace/bun"
)

func scoresToDomain(rows []scoringdb.Score) []rounddomain.Score {
	out := make([]rounddomain.Score, 0, len(rows))
	for _, r := range rows {
		v := r.Value
		out = append(out, rounddomain.Score{ParticipantID: r.ParticipantID, Criterion: r.Criterion, Value: &v})
	}
	return out
}

func attendanceToDomain(rows []scoringdb.Attendance) []rounddomain.AttendanceMark {
	out := make([]rounddomain.AttendanceMark, 0, len(rows))
	for _, r := range rows {
		present := r.Present
		out = append(out, rounddomain.AttendanceMark{ParticipantID: r.ParticipantID, Present: &present})
	}
	return out
}

// inRound checks the round exists in scope before a per-round write.
func (s *ScoringService) inRound(ctx context.Context, db bun.IDB, scope sharedtypes.Scope, id sharedtypes.RoundID) error {
	if _, err := s.repo.GetRound(ctx, db, scope, id); err != nil {
		return roundErr(err, id)
	}
	return nil
}

func (s *ScoringService) GetAttendance(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID) ([]rounddomain.AttendanceMark, error) {
	var out []rounddomain.AttendanceMark
	err := s.traced(ctx, "GetAttendance", scope, func(ctx context.Context) error {
		if err := s.inRound(ctx, nil, scope, id); err != nil {
			return err
		}
		rows, err := s.repo.ListAttendance(ctx, nil, id)
		if err != nil {
			return err
		}
		out = attendanceToDomain(rows)
		return nil
	})
	return out, err
}

// MarkAttendance overwrites one participant's mark. A nil Present removes it.
func (s *ScoringService) MarkAttendance(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID, m rounddomain.AttendanceMark) error {
	return s.traced(ctx, "MarkAttendance", scope, func(ctx context.Context) error {
		if err := s.inRound(ctx, nil, scope, id); err != nil {
			return err
		}
		if m.Present == nil {
			return s.repo.DeleteAttendance(ctx, nil, id, m.ParticipantID)
		}
		return s.repo.UpsertAttendance(ctx, nil, &scoringdb.Attendance{RoundID: id, ParticipantID: m.ParticipantID, Present: *m.Present})
	})
}

func (s *ScoringService) GetScores(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID) ([]rounddomain.Score, error) {
	var out []rounddomain.Score
	err := s.traced(ctx, "GetScores", scope, func(ctx context.Context) error {
		if err := s.inRound(ctx, nil, scope, id); err != nil {
			return err
		}
		rows, err := s.repo.ListScores(ctx, nil, id)
		if err != nil {
			return err
		}
		out = scoresToDomain(rows)
		return nil
	})
	return out, err
}

// SetScore overwrites one score. A nil value removes it.
func (s *ScoringService) SetScore(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID, sc rounddomain.Score) error {
	return s.traced(ctx, "SetScore", scope, func(ctx context.Context) error {
		if err := s.inRound(ctx, nil, scope, id); err != nil {
			return err
		}
		if sc.Value == nil {
			return s.repo.DeleteScore(ctx, nil, id, sc.ParticipantID, sc.Criterion)
		}
		return s.repo.UpsertScore(ctx, nil, &scoringdb.Score{
			RoundID:       id,
			ParticipantID: sc.ParticipantID,
			Criterion:     sc.Criterion,
			Value:         *sc.Value,
		})
	})
}

func (s *ScoringService) GetPanels(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID) ([]rounddomain.Panel, error) {
	var out []rounddomain.Panel
	err := s.traced(ctx, "GetPanels", scope, func(ctx context.Context) error {
		if err := s.inRound(ctx, nil, scope, id); err != nil {
			return err
		}
		rows, err := s.repo.ListPanels(ctx, nil, id)
		if err != nil {
			return err
		}
		out = make([]rounddomain.Panel, 0, len(rows))
		for _, r := range rows {
			judges := r.Judges
			if judges == nil {
				judges = []string{}
			}
			out = append(out, rounddomain.Panel{ID: r.ID, Name: r.Name, Judges: judges})
		}
		return nil
	})
	return out, err
}

// ReplacePanels swaps the round's whole panel set in one transaction.
func (s *ScoringService) ReplacePanels(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID, panels []rounddomain.Panel) error {
	return s.traced(ctx, "ReplacePanels", scope, func(ctx context.Context) error {
		return s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			if err := s.inRound(ctx, db, scope, id); err != nil {
				return err
			}
			rows := make([]scoringdb.Panel, 0, len(panels))
			for _, p := range panels {
				rows = append(rows, scoringdb.Panel{RoundID: id, ID: p.ID, Name: p.Name, Judges: p.Judges})
			}
			return s.repo.ReplacePanels(ctx, db, id, rows)
		})
	})
}

func (s *ScoringService) GetPanelAssignments(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID) ([]rounddomain.PanelAssignment, error) {
	var out []rounddomain.PanelAssignment
	err := s.traced(ctx, "GetPanelAssignments", scope, func(ctx context.Context) error {
		if err := s.inRound(ctx, nil, scope, id); err != nil {
			return err
		}
		rows, err := s.repo.ListPanelAssignments(ctx, nil, id)
		if err != nil {
			return err
		}
		out = make([]rounddomain.PanelAssignment, 0, len(rows))
		for _, r := range rows {
			panel := r.PanelID
			out = append(out, rounddomain.PanelAssignment{ParticipantID: r.ParticipantID, PanelID: &panel})
		}
		return nil
	})
	return out, err
}

// AssignPanel places one participant. A nil panel unassigns them.
func (s *ScoringService) AssignPanel(ctx context.Context, scope sharedtypes.Scope, id sharedtypes.RoundID, a rounddomain.PanelAssignment) error {
	return s.traced(ctx, "AssignPanel", scope, func(ctx context.Context) error {
		if err := s.inRound(ctx, nil, scope, id); err != nil {
			return err
		}
		if a.PanelID == nil {
			return s.repo.DeletePanelAssignment(ctx, nil, id, a.ParticipantID)
		}
		return s.repo.UpsertPanelAssignment(ctx, nil, &scoringdb.PanelAssignment{RoundID: id, ParticipantID: a.ParticipantID, PanelID: *a.PanelID})
	})
}
