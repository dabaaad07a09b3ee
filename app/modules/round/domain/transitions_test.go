package rounddomain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		state   LifecycleState
		frozen  bool
		event   Event
		want    LifecycleState
		wantErr bool
	}{
		{name: "publish draft", state: StateDraft, event: EventPublish, want: StatePublished},
		{name: "publish active", state: StateActive, event: EventPublish, wantErr: true},
		{name: "unpublish published", state: StatePublished, event: EventUnpublish, want: StateDraft},
		{name: "unpublish draft", state: StateDraft, event: EventUnpublish, wantErr: true},
		{name: "activate published", state: StatePublished, event: EventActivate, want: StateActive},
		{name: "activate draft", state: StateDraft, event: EventActivate, wantErr: true},
		{name: "freeze active", state: StateActive, event: EventFreeze, want: StateActive},
		{name: "freeze already frozen", state: StateActive, frozen: true, event: EventFreeze, wantErr: true},
		{name: "freeze published", state: StatePublished, event: EventFreeze, wantErr: true},
		{name: "shortlist frozen active", state: StateActive, frozen: true, event: EventShortlist, want: StateCompleted},
		{name: "shortlist not frozen", state: StateActive, event: EventShortlist, wantErr: true},
		{name: "shortlist completed", state: StateCompleted, frozen: true, event: EventShortlist, wantErr: true},
		{name: "shortlist reveal", state: StateReveal, frozen: true, event: EventShortlist, wantErr: true},
		{name: "reveal completed", state: StateCompleted, event: EventReveal, want: StateReveal},
		{name: "reveal active", state: StateActive, event: EventReveal, wantErr: true},
		{name: "unreveal reveal", state: StateReveal, event: EventUnreveal, want: StateCompleted},
		{name: "edit unfrozen", state: StateActive, event: EventEdit, want: StateActive},
		{name: "edit frozen", state: StateActive, frozen: true, event: EventEdit, wantErr: true},
		{name: "delete draft", state: StateDraft, event: EventDelete, want: StateDraft},
		{name: "delete published", state: StatePublished, event: EventDelete, wantErr: true},
		{name: "reorder frozen", state: StateCompleted, frozen: true, event: EventReorder, want: StateCompleted},
		{name: "unknown event", state: StateDraft, event: Event("launch"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Round{ID: 3, State: tt.state, Frozen: tt.frozen}
			got, err := Check(r, tt.event)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrIllegalTransition), "expected ErrIllegalTransition, got %v", err)
				assert.Equal(t, tt.state, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEliminationPolicyValidate(t *testing.T) {
	assert.NoError(t, EliminationPolicy{Type: EliminateTopK, Value: 10}.Validate())
	assert.NoError(t, EliminationPolicy{Type: EliminateMinScore, Value: 42.5}.Validate())
	assert.ErrorIs(t, EliminationPolicy{Type: EliminateTopK, Value: 2.5}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, EliminationPolicy{Type: EliminateTopK, Value: -1}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, EliminationPolicy{Type: EliminateTopK, Value: 1e19}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, EliminationPolicy{Type: EliminateTopK, Value: math.Inf(1)}.Validate(), ErrInvalidPolicy)
	assert.ErrorIs(t, EliminationPolicy{Type: EliminateTopK, Value: math.NaN()}.Validate(), ErrInvalidPolicy)
	assert.NoError(t, EliminationPolicy{Type: EliminateTopK, Value: math.MaxInt32}.Validate())
	assert.ErrorIs(t, EliminationPolicy{Type: "lottery", Value: 1}.Validate(), ErrInvalidPolicy)
}

func TestPatchApply(t *testing.T) {
	r := Round{Name: "Heats", Description: "first", Ordinal: 1}
	name := "Finals"
	ord := 4
	got := Patch{Name: &name, Ordinal: &ord}.Apply(r)
	assert.Equal(t, "Finals", got.Name)
	assert.Equal(t, "first", got.Description)
	assert.Equal(t, 4, got.Ordinal)

	assert.True(t, Patch{}.Empty())
	assert.False(t, Patch{Ordinal: &ord}.ContentOnly())
	assert.True(t, r.Fields().ContentOnly())
}
