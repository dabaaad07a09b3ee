package roundservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
)

// DraftSetter is the local rollback setter that restores a round's unsaved edit form.
const DraftSetter = "round.draft"

// draftSnapshot is the prior value stored in a local undo entry. A nil Patch means the
// round had no draft.
type draftSnapshot struct {
	RoundID sharedtypes.RoundID `json:"round_id"`
	Patch   *rounddomain.Patch  `json:"patch"`
}

type draftKey struct {
	scope   sharedtypes.Scope
	roundID sharedtypes.RoundID
}

// DraftStore holds unsaved round edits in memory.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[draftKey]rounddomain.Patch
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[draftKey]rounddomain.Patch)}
}

func (d *DraftStore) get(scope sharedtypes.Scope, roundID sharedtypes.RoundID) (rounddomain.Patch, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.drafts[draftKey{scope, roundID}]
	return p, ok
}

// swap stores p (or removes the draft when p is nil) and returns what was there before.
func (d *DraftStore) swap(scope sharedtypes.Scope, roundID sharedtypes.RoundID, p *rounddomain.Patch) *rounddomain.Patch {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := draftKey{scope, roundID}
	var prior *rounddomain.Patch
	if old, ok := d.drafts[k]; ok {
		prior = &old
	}
	if p == nil {
		delete(d.drafts, k)
	} else {
		d.drafts[k] = *p
	}
	return prior
}

func (d *DraftStore) discard(scope sharedtypes.Scope, roundID sharedtypes.RoundID) {
	d.swap(scope, roundID, nil)
}

// restore is the DraftSetter.
func (d *DraftStore) restore(_ context.Context, scope sharedtypes.Scope, prior json.RawMessage) error {
	var snap draftSnapshot
	if err := json.Unmarshal(prior, &snap); err != nil {
		return fmt.Errorf("failed to decode draft snapshot: %w", err)
	}
	if snap.RoundID <= 0 {
		return errors.New("draft snapshot has no round id")
	}
	d.swap(scope, snap.RoundID, snap.Patch)
	return nil
}

// GetDraft returns the unsaved edit for a round.
func (s *LifecycleService) GetDraft(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (DraftResult, error) {
	p, ok := s.drafts.get(scope, roundID)
	if !ok {
		return results.FailureResult[rounddomain.Patch, error](fmt.Errorf("%w: %d", ErrNoDraft, roundID)), nil
	}
	return results.SuccessResult[rounddomain.Patch, error](p), nil
}

// UpdateDraft replaces the round's unsaved edit and registers a local undo that puts the
// previous draft back. Nothing is sent to the backend.
func (s *LifecycleService) UpdateDraft(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID, draft rounddomain.Patch) (DraftResult, error) {
	return withTelemetry(s, ctx, "UpdateDraft", roundKey(scope, roundID), func(ctx context.Context) (DraftResult, error) {
		if err := validatePatch(draft); err != nil {
			return results.FailureResult[rounddomain.Patch, error](err), nil
		}
		prior := s.drafts.swap(scope, roundID, &draft)
		label := fmt.Sprintf("Edit draft of round %d", roundID)
		if _, err := s.undo.PushLocal(ctx, scope, label, DraftSetter, draftSnapshot{RoundID: roundID, Patch: prior}); err != nil {
			s.drafts.swap(scope, roundID, prior)
			return DraftResult{}, fmt.Errorf("failed to record draft undo: %w", err)
		}
		return results.SuccessResult[rounddomain.Patch, error](draft), nil
	})
}

// SaveDraft sends the draft through EditRound and drops it once the backend accepted it.
func (s *LifecycleService) SaveDraft(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) (RoundResult, error) {
	draft, ok := s.drafts.get(scope, roundID)
	if !ok {
		return results.FailureResult[rounddomain.Round, error](fmt.Errorf("%w: %d", ErrNoDraft, roundID)), nil
	}
	res, err := s.EditRound(ctx, scope, roundID, draft)
	if err == nil && res.IsSuccess() {
		s.drafts.discard(scope, roundID)
	}
	return res, err
}

// DiscardDraft drops the unsaved edit without an undo entry.
func (s *LifecycleService) DiscardDraft(ctx context.Context, scope sharedtypes.Scope, roundID sharedtypes.RoundID) {
	s.drafts.discard(scope, roundID)
}
