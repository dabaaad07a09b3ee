package roundservice

import (
	"context"
	"fmt"
	"strconv"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
)

// inputSpec describes one per-item round input (attendance, scores, panel assignments).
type inputSpec[T any] struct {
	operation    string
	action       string
	verb         string
	rejectFrozen bool
	valid        func(T) bool
	key          func(T) string
	// blank is the value an item had when the backend held nothing for it.
	blank   func(T) T
	current func(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) ([]T, error)
	write   func(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, item T) error
	undo    func(roundID sharedtypes.RoundID, prior []T) undodomain.Command
}

// setInputs writes items one by one after capturing their prior values. Whatever was
// written gets a restore entry, even when a later write fails.
func setInputs[T any](s *LifecycleService, ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, items []T, spec inputSpec[T]) (results.OperationResult[[]T, error], error) {
	return withTelemetry(s, ctx, spec.operation, roundKey(scope, roundID), func(ctx context.Context) (results.OperationResult[[]T, error], error) {
		if len(items) == 0 {
			return results.FailureResult[[]T, error](fmt.Errorf("%w: no items", ErrInvalidInput)), nil
		}
		for i, it := range items {
			if !spec.valid(it) {
				return results.FailureResult[[]T, error](fmt.Errorf("%w: item %d", ErrInvalidInput, i)), nil
			}
		}

		r, err := s.backend.GetRound(ctx, scope, roundID)
		if err != nil {
			return loadFailed[[]T](roundID, err)
		}
		if spec.rejectFrozen && r.Frozen {
			return results.FailureResult[[]T, error](fmt.Errorf("%w: round %d", ErrRoundFrozen, roundID)), nil
		}

		existing, err := spec.current(ctx, scope, roundID)
		if err != nil {
			return results.OperationResult[[]T, error]{}, fmt.Errorf("failed to read current values: %w", err)
		}
		byKey := make(map[string]T, len(existing))
		for _, e := range existing {
			byKey[spec.key(e)] = e
		}

		label := fmt.Sprintf("%s for round %d %q", spec.verb, r.Ordinal, r.Name)
		prior := make([]T, 0, len(items))
		var writeErr error
		for _, it := range items {
			before, ok := byKey[spec.key(it)]
			if !ok {
				before = spec.blank(it)
			}
			if err := spec.write(ctx, scope, roundID, it); err != nil {
				writeErr = err
				break
			}
			prior = append(prior, before)
		}

		undoable := len(prior) > 0 && s.pushUndo(ctx, scope, label, spec.undo(roundID, prior))
		s.recordAction(ctx, scope, spec.action, roundID, label, undoable, writeErr)
		if writeErr != nil {
			return results.OperationResult[[]T, error]{}, fmt.Errorf("%s: wrote %d of %d: %w", spec.verb, len(prior), len(items), writeErr)
		}

		after, err := spec.current(ctx, scope, roundID)
		if err != nil {
			return results.OperationResult[[]T, error]{}, fmt.Errorf("failed to refetch values: %w", err)
		}
		return results.SuccessResult[[]T, error](after), nil
	})
}

// SetAttendance marks presence. Frozen rounds reject it.
func (s *LifecycleService) SetAttendance(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, marks []rounddomain.AttendanceMark) (AttendanceResult, error) {
	return setInputs(s, ctx, scope, roundID, marks, inputSpec[rounddomain.AttendanceMark]{
		operation:    "SetAttendance",
		action:       "round.attendance",
		verb:         "Update attendance",
		rejectFrozen: true,
		valid:        func(m rounddomain.AttendanceMark) bool { return m.ParticipantID > 0 },
		key:          func(m rounddomain.AttendanceMark) string { return participantKey(m.ParticipantID) },
		blank: func(m rounddomain.AttendanceMark) rounddomain.AttendanceMark {
			return rounddomain.AttendanceMark{ParticipantID: m.ParticipantID}
		},
		current: s.backend.GetAttendance,
		write:   s.backend.MarkAttendance,
		undo: func(roundID sharedtypes.RoundID, prior []rounddomain.AttendanceMark) undodomain.Command {
			return undodomain.AttendanceRestore{RoundID: roundID, Marks: prior}
		},
	})
}

// SetScores writes score values. Frozen rounds reject it.
func (s *LifecycleService) SetScores(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, scores []rounddomain.Score) (ScoresResult, error) {
	return setInputs(s, ctx, scope, roundID, scores, inputSpec[rounddomain.Score]{
		operation:    "SetScores",
		action:       "round.scores",
		verb:         "Update scores",
		rejectFrozen: true,
		valid:        func(sc rounddomain.Score) bool { return sc.ParticipantID > 0 && sc.Criterion != "" },
		key: func(sc rounddomain.Score) string {
			return participantKey(sc.ParticipantID) + "/" + sc.Criterion
		},
		blank: func(sc rounddomain.Score) rounddomain.Score {
			return rounddomain.Score{ParticipantID: sc.ParticipantID, Criterion: sc.Criterion}
		},
		current: s.backend.GetScores,
		write:   s.backend.SetScore,
		undo: func(roundID sharedtypes.RoundID, prior []rounddomain.Score) undodomain.Command {
			return undodomain.ScoresRestore{RoundID: roundID, Scores: prior}
		},
	})
}

// AssignPanels moves participants between panels.
func (s *LifecycleService) AssignPanels(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, assignments []rounddomain.PanelAssignment) (PanelAssignmentResult, error) {
	return setInputs(s, ctx, scope, roundID, assignments, inputSpec[rounddomain.PanelAssignment]{
		operation: "AssignPanels",
		action:    "round.panel_assignments",
		verb:      "Update panel assignments",
		valid: func(a rounddomain.PanelAssignment) bool {
			return a.ParticipantID > 0 && (a.PanelID == nil || *a.PanelID > 0)
		},
		key: func(a rounddomain.PanelAssignment) string { return participantKey(a.ParticipantID) },
		blank: func(a rounddomain.PanelAssignment) rounddomain.PanelAssignment {
			return rounddomain.PanelAssignment{ParticipantID: a.ParticipantID}
		},
		current: s.backend.GetPanelAssignments,
		write:   s.backend.AssignPanel,
		undo: func(roundID sharedtypes.RoundID, prior []rounddomain.PanelAssignment) undodomain.Command {
			return undodomain.PanelAssignmentsRestore{RoundID: roundID, Assignments: prior}
		},
	})
}

// ReplacePanels overwrites the round's panel definitions as one set.
func (s *LifecycleService) ReplacePanels(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, panels []rounddomain.Panel) (PanelsResult, error) {
	return withTelemetry(s, ctx, "ReplacePanels", roundKey(scope, roundID), func(ctx context.Context) (PanelsResult, error) {
		if panels == nil {
			panels = []rounddomain.Panel{}
		}
		seen := make(map[sharedtypes.PanelID]bool, len(panels))
		for _, p := range panels {
			if p.ID <= 0 || seen[p.ID] {
				return results.FailureResult[[]rounddomain.Panel, error](fmt.Errorf("%w: panel ids must be positive and unique", ErrInvalidInput)), nil
			}
			seen[p.ID] = true
		}

		r, err := s.backend.GetRound(ctx, scope, roundID)
		if err != nil {
			return loadFailed[[]rounddomain.Panel](roundID, err)
		}
		prior, err := s.backend.GetPanels(ctx, scope, roundID)
		if err != nil {
			return PanelsResult{}, fmt.Errorf("failed to read panels: %w", err)
		}
		if prior == nil {
			prior = []rounddomain.Panel{}
		}

		label := fmt.Sprintf("Update panels for round %d %q", r.Ordinal, r.Name)
		if err := s.backend.ReplacePanels(ctx, scope, roundID, panels); err != nil {
			s.recordAction(ctx, scope, "round.panels", roundID, label, false, err)
			return PanelsResult{}, fmt.Errorf("failed to replace panels: %w", err)
		}
		undoable := s.pushUndo(ctx, scope, label, undodomain.PanelDefinitionsRestore{RoundID: roundID, Panels: prior})
		s.recordAction(ctx, scope, "round.panels", roundID, label, undoable, nil)

		after, err := s.backend.GetPanels(ctx, scope, roundID)
		if err != nil {
			return PanelsResult{}, fmt.Errorf("failed to refetch panels: %w", err)
		}
		return results.SuccessResult[[]rounddomain.Panel, error](after), nil
	})
}

func participantKey(id sharedtypes.ParticipantID) string {
	return strconv.FormatInt(int64(id), 10)
}
