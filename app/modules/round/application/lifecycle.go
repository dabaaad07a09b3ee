package roundservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/metrics"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
)

// transitionPlan is what one lifecycle event sends to the backend and how to reverse it.
// A nil undo means the action is irreversible.
type transitionPlan struct {
	update rounddomain.Update
	undo   undodomain.Command
	label  string
}

type planFunc func(ctx context.Context, r rounddomain.Round, next rounddomain.LifecycleState) (transitionPlan, error)

func isDomainFailure(err error) bool {
	return errors.Is(err, rounddomain.ErrIllegalTransition) ||
		errors.Is(err, rounddomain.ErrInvalidPolicy) ||
		errors.Is(err, rounddomain.ErrRoundNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoNeighbor) ||
		errors.Is(err, ErrRoundFrozen)
}

// transition runs fetch, legality check, one backend update, undo registration, action
// publication and refetch, in that order.
func (s *LifecycleService) transition(
	ctx context.Context,
	operationName string,
	scope sharedtypes.Scope,
	roundID sharedtypes.RoundID,
	ev rounddomain.Event,
	plan planFunc,
) (RoundResult, error) {
	return withTelemetry(s, ctx, operationName, roundKey(scope, roundID), func(ctx context.Context) (RoundResult, error) {
		r, err := s.backend.GetRound(ctx, scope, roundID)
		if err != nil {
			return loadFailed[rounddomain.Round](roundID, err)
		}

		next, err := rounddomain.Check(r, ev)
		if err != nil {
			s.metrics.RecordTransition(ctx, string(ev), metrics.OutcomeRejected)
			return results.FailureResult[rounddomain.Round, error](err), nil
		}

		p, err := plan(ctx, r, next)
		if err != nil {
			if isDomainFailure(err) {
				s.metrics.RecordTransition(ctx, string(ev), metrics.OutcomeRejected)
				return results.FailureResult[rounddomain.Round, error](err), nil
			}
			return RoundResult{}, err
		}

		action := "round." + string(ev)
		if err := s.backend.UpdateRound(ctx, scope, roundID, p.update); err != nil {
			s.metrics.RecordTransition(ctx, string(ev), metrics.OutcomeFailure)
			s.recordAction(ctx, scope, action, roundID, p.label, false, err)
			return RoundResult{}, fmt.Errorf("failed to %s round %d: %w", ev, roundID, err)
		}

		undoable := p.undo != nil && s.pushUndo(ctx, scope, p.label, p.undo)
		s.metrics.RecordTransition(ctx, string(ev), metrics.OutcomeSuccess)
		s.recordAction(ctx, scope, action, roundID, p.label, undoable, nil)

		return s.refetch(ctx, scope, roundID)
	})
}

func (s *LifecycleService) refetch(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	r, err := s.backend.GetRound(ctx, scope, roundID)
	if err != nil {
		return loadFailed[rounddomain.Round](roundID, err)
	}
	return results.SuccessResult[rounddomain.Round, error](r), nil
}

// statePlan moves the round to next and registers a restore of its current state.
func statePlan(verb string) planFunc {
	return func(_ context.Context, r rounddomain.Round, next rounddomain.LifecycleState) (transitionPlan, error) {
		return transitionPlan{
			update: rounddomain.StateUpdate(next),
			undo:   undodomain.RoundStateRestore{RoundID: r.ID, State: r.State},
			label:  roundLabel(verb, r),
		}, nil
	}
}

func (s *LifecycleService) Publish(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	return s.transition(ctx, "Publish", scope, roundID, rounddomain.EventPublish, statePlan("Publish"))
}

func (s *LifecycleService) Unpublish(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	return s.transition(ctx, "Unpublish", scope, roundID, rounddomain.EventUnpublish, statePlan("Unpublish"))
}

func (s *LifecycleService) Activate(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	return s.transition(ctx, "Activate", scope, roundID, rounddomain.EventActivate, statePlan("Activate"))
}

func (s *LifecycleService) Reveal(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	return s.transition(ctx, "Reveal", scope, roundID, rounddomain.EventReveal, statePlan("Reveal"))
}

func (s *LifecycleService) Unreveal(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	return s.transition(ctx, "Unreveal", scope, roundID, rounddomain.EventUnreveal, statePlan("Unreveal"))
}

func (s *LifecycleService) Freeze(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	return s.transition(ctx, "Freeze", scope, roundID, rounddomain.EventFreeze,
		func(_ context.Context, r rounddomain.Round, _ rounddomain.LifecycleState) (transitionPlan, error) {
			return transitionPlan{
				update: rounddomain.FrozenUpdate(true),
				undo:   undodomain.RoundFreezeRestore{RoundID: r.ID, Frozen: false},
				label:  roundLabel("Freeze", r),
			}, nil
		})
}

// Shortlist asks the backend to apply policy and marks the round completed. Eliminations
// cannot be reconstructed, so no undo entry is registered.
func (s *LifecycleService) Shortlist(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, policy rounddomain.EliminationPolicy) (RoundResult, error) {
	return s.transition(ctx, "Shortlist", scope, roundID, rounddomain.EventShortlist,
		func(_ context.Context, r rounddomain.Round, next rounddomain.LifecycleState) (transitionPlan, error) {
			if err := policy.Validate(); err != nil {
				return transitionPlan{}, err
			}
			return transitionPlan{
				update: rounddomain.Update{State: &next, Elimination: &policy},
				label:  roundLabel("Shortlist", r),
			}, nil
		})
}

// EditRound overwrites content fields and registers a restore of the full prior content.
func (s *LifecycleService) EditRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, patch rounddomain.Patch) (RoundResult, error) {
	return s.transition(ctx, "EditRound", scope, roundID, rounddomain.EventEdit,
		func(_ context.Context, r rounddomain.Round, _ rounddomain.LifecycleState) (transitionPlan, error) {
			if err := validatePatch(patch); err != nil {
				return transitionPlan{}, err
			}
			return transitionPlan{
				update: rounddomain.Update{Patch: patch},
				undo:   undodomain.RoundPatchRestore{RoundID: r.ID, Patch: r.Fields()},
				label:  roundLabel("Edit", r),
			}, nil
		})
}

// Reorder swaps the round with its neighbour. Undo restores only this round's ordinal; the
// backend swaps again, so ordinals stay unique.
func (s *LifecycleService) Reorder(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, dir Direction) (RoundResult, error) {
	return s.transition(ctx, "Reorder", scope, roundID, rounddomain.EventReorder,
		func(ctx context.Context, r rounddomain.Round, _ rounddomain.LifecycleState) (transitionPlan, error) {
			if dir != DirectionUp && dir != DirectionDown {
				return transitionPlan{}, fmt.Errorf("%w: direction must be up or down", ErrInvalidInput)
			}
			siblings, err := s.backend.ListRounds(ctx, scope)
			if err != nil {
				return transitionPlan{}, fmt.Errorf("failed to list rounds: %w", err)
			}
			neighbor, ok := neighborOf(siblings, r, dir)
			if !ok {
				return transitionPlan{}, fmt.Errorf("%w: round %d, %s", ErrNoNeighbor, r.ID, dir)
			}
			target, prior := neighbor.Ordinal, r.Ordinal
			return transitionPlan{
				update: rounddomain.Update{Patch: rounddomain.Patch{Ordinal: &target}},
				undo:   undodomain.RoundPatchRestore{RoundID: r.ID, Patch: rounddomain.Patch{Ordinal: &prior}},
				label:  roundLabel("Move", r),
			}, nil
		})
}

func neighborOf(rounds []rounddomain.Round, r rounddomain.Round, dir Direction) (rounddomain.Round, bool) {
	sorted := append([]rounddomain.Round(nil), rounds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })
	for i, sib := range sorted {
		if sib.ID != r.ID {
			continue
		}
		switch {
		case dir == DirectionUp && i > 0:
			return sorted[i-1], true
		case dir == DirectionDown && i < len(sorted)-1:
			return sorted[i+1], true
		}
		return rounddomain.Round{}, false
	}
	return rounddomain.Round{}, false
}

func validatePatch(p rounddomain.Patch) error {
	if p.Ordinal != nil {
		return fmt.Errorf("%w: ordinal changes go through reorder", ErrInvalidInput)
	}
	if p.Empty() {
		return fmt.Errorf("%w: nothing to change", ErrInvalidInput)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be blank", ErrInvalidInput)
	}
	return nil
}

// CreateRound creates a draft round at the next free ordinal. Its undo deletes it again.
func (s *LifecycleService) CreateRound(ctx context.Context, scope sharedtypes.Scope, in rounddomain.NewRound) (RoundResult, error) {
	return withTelemetry(s, ctx, "CreateRound", scope.String(), func(ctx context.Context) (RoundResult, error) {
		if strings.TrimSpace(in.Name) == "" {
			return results.FailureResult[rounddomain.Round, error](fmt.Errorf("%w: name must not be blank", ErrInvalidInput)), nil
		}

		created, err := s.backend.CreateRound(ctx, scope, in)
		if err != nil {
			s.recordAction(ctx, scope, "round.create", 0, fmt.Sprintf("Create round %q", in.Name), false, err)
			return RoundResult{}, fmt.Errorf("failed to create round: %w", err)
		}

		label := roundLabel("Create", created)
		undoable := s.pushUndo(ctx, scope, label, undodomain.RoundDeleteCreated{RoundID: created.ID})
		s.recordAction(ctx, scope, "round.create", created.ID, label, undoable, nil)

		return s.refetch(ctx, scope, created.ID)
	})
}

// DeleteRound removes a draft round. It is irreversible and registers no undo; callers
// warn the operator first. The result is the round as it was before deletion.
func (s *LifecycleService) DeleteRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	return withTelemetry(s, ctx, "DeleteRound", roundKey(scope, roundID), func(ctx context.Context) (RoundResult, error) {
		r, err := s.backend.GetRound(ctx, scope, roundID)
		if err != nil {
			return loadFailed[rounddomain.Round](roundID, err)
		}
		if _, err := rounddomain.Check(r, rounddomain.EventDelete); err != nil {
			s.metrics.RecordTransition(ctx, string(rounddomain.EventDelete), metrics.OutcomeRejected)
			return results.FailureResult[rounddomain.Round, error](err), nil
		}

		label := roundLabel("Delete", r)
		if err := s.backend.DeleteRound(ctx, scope, roundID); err != nil {
			s.metrics.RecordTransition(ctx, string(rounddomain.EventDelete), metrics.OutcomeFailure)
			s.recordAction(ctx, scope, "round.delete", roundID, label, false, err)
			return RoundResult{}, fmt.Errorf("failed to delete round %d: %w", roundID, err)
		}
		s.drafts.discard(scope, roundID)

		s.metrics.RecordTransition(ctx, string(rounddomain.EventDelete), metrics.OutcomeSuccess)
		s.recordAction(ctx, scope, "round.delete", roundID, label, false, nil)
		s.logger.InfoContext(ctx, "Round deleted",
			attr.ExtractCorrelationID(ctx),
			attr.Scope(scope.String()),
			attr.RoundID(int64(roundID)),
		)
		return results.SuccessResult[rounddomain.Round, error](r), nil
	})
}

func (s *LifecycleService) ListRounds(ctx context.Context, scope sharedtypes.Scope) (RoundListResult, error) {
	return withTelemetry(s, ctx, "ListRounds", scope.String(), func(ctx context.Context) (RoundListResult, error) {
		rounds, err := s.backend.ListRounds(ctx, scope)
		if err != nil {
			return RoundListResult{}, fmt.Errorf("failed to list rounds: %w", err)
		}
		sort.Slice(rounds, func(i, j int) bool { return rounds[i].Ordinal < rounds[j].Ordinal })
		if rounds == nil {
			rounds = []rounddomain.Round{}
		}
		return results.SuccessResult[[]rounddomain.Round, error](rounds), nil
	})
}

func (s *LifecycleService) GetRound(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	return withTelemetry(s, ctx, "GetRound", roundKey(scope, roundID), func(ctx context.Context) (RoundResult, error) {
		return s.refetch(ctx, scope, roundID)
	})
}
