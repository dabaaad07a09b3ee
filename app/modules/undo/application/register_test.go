package undoservice

import (
	"sync"
	"testing"

	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scopeA sharedtypes.Scope = "event-a"
	scopeB sharedtypes.Scope = "event-b"
)

func savedEntry(label string, roundID sharedtypes.RoundID) undodomain.Entry {
	return undodomain.NewSaved(label, undodomain.RoundFreezeRestore{RoundID: roundID, Frozen: false})
}

func TestRegister_SingleSlot(t *testing.T) {
	reg := NewRegister()

	first := reg.Push(scopeA, savedEntry("Freeze round 1", 1))
	second := reg.Push(scopeA, savedEntry("Freeze round 2", 2))

	got := reg.Peek(scopeA)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
	assert.NotEqual(t, first.ID, got.ID)
	assert.Equal(t, "Freeze round 2", got.Label)
	assert.Equal(t, scopeA, got.Scope)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRegister_ScopesAreIndependent(t *testing.T) {
	reg := NewRegister()
	reg.Push(scopeA, savedEntry("a", 1))
	reg.Push(scopeB, savedEntry("b", 2))

	reg.Clear(scopeA)

	assert.Nil(t, reg.Peek(scopeA))
	require.NotNil(t, reg.Peek(scopeB))
	assert.Equal(t, "b", reg.Peek(scopeB).Label)
}

func TestRegister_PeekReturnsCopy(t *testing.T) {
	reg := NewRegister()
	reg.Push(scopeA, undodomain.NewLocal("Edit draft", "round.draft", []byte(`{"name":"x"}`)))

	got := reg.Peek(scopeA)
	got.Label = "mutated"
	got.Local.Setter = "mutated"

	again := reg.Peek(scopeA)
	assert.Equal(t, "Edit draft", again.Label)
	assert.Equal(t, "round.draft", again.Local.Setter)
}

func TestRegister_Subscribe(t *testing.T) {
	reg := NewRegister()
	pushed := reg.Push(scopeA, savedEntry("existing", 1))

	rec := &recorder{}
	unsubscribe := reg.Subscribe(scopeA, rec.listen)

	initial := rec.last()
	assert.Equal(t, ReasonInitial, initial.Reason)
	require.NotNil(t, initial.Entry)
	assert.Equal(t, pushed.ID, initial.Entry.ID)

	reg.Push(scopeA, savedEntry("next", 2))
	reg.Clear(scopeA)
	reg.Push(scopeB, savedEntry("other scope", 3))

	assert.Equal(t, []ChangeReason{ReasonInitial, ReasonPushed, ReasonCleared}, rec.reasons())
	assert.Nil(t, rec.last().Entry)
	assert.Equal(t, 1, reg.Subscribers(scopeA))

	unsubscribe()
	unsubscribe()
	reg.Push(scopeA, savedEntry("after unsubscribe", 4))

	assert.Len(t, rec.reasons(), 3)
	assert.Equal(t, 0, reg.Subscribers(scopeA))
}

func TestRegister_AnyScopeListener(t *testing.T) {
	reg := NewRegister()
	rec := &recorder{}
	unsubscribe := reg.Subscribe(AnyScope, rec.listen)
	defer unsubscribe()

	assert.Empty(t, rec.reasons())

	reg.Push(scopeA, savedEntry("a", 1))
	reg.Push(scopeB, savedEntry("b", 2))
	reg.Clear(scopeA)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.changes, 3)
	assert.Equal(t, scopeA, rec.changes[0].Scope)
	assert.Equal(t, scopeB, rec.changes[1].Scope)
	assert.Equal(t, ReasonCleared, rec.changes[2].Reason)
}

func TestRegister_Navigate(t *testing.T) {
	tests := []struct {
		name        string
		steps       func(reg *Register) bool
		wantChanged bool
		wantEntry   bool
		wantReasons []ChangeReason
	}{
		{
			name: "first navigation with empty slot",
			steps: func(reg *Register) bool {
				return reg.Navigate(scopeA, "/rounds")
			},
			wantChanged: true,
			wantEntry:   false,
			wantReasons: []ChangeReason{ReasonInitial},
		},
		{
			name: "same route keeps entry",
			steps: func(reg *Register) bool {
				reg.Navigate(scopeA, "/rounds")
				reg.Push(scopeA, savedEntry("a", 1))
				return reg.Navigate(scopeA, "/rounds")
			},
			wantChanged: false,
			wantEntry:   true,
			wantReasons: []ChangeReason{ReasonInitial, ReasonPushed},
		},
		{
			name: "different route invalidates saved entry",
			steps: func(reg *Register) bool {
				reg.Navigate(scopeA, "/rounds")
				reg.Push(scopeA, savedEntry("a", 1))
				return reg.Navigate(scopeA, "/logs")
			},
			wantChanged: true,
			wantEntry:   false,
			wantReasons: []ChangeReason{ReasonInitial, ReasonPushed, ReasonInvalidated},
		},
		{
			name: "different route invalidates local entry",
			steps: func(reg *Register) bool {
				reg.Navigate(scopeA, "/rounds/1/edit")
				reg.Push(scopeA, undodomain.NewLocal("Edit draft", "round.draft", []byte(`{}`)))
				return reg.Navigate(scopeA, "/rounds")
			},
			wantChanged: true,
			wantEntry:   false,
			wantReasons: []ChangeReason{ReasonInitial, ReasonPushed, ReasonInvalidated},
		},
		{
			name: "first report of a screen keeps entry pushed before any route",
			steps: func(reg *Register) bool {
				reg.Push(scopeA, savedEntry("a", 1))
				reg.Navigate(scopeA, "/rounds")
				return reg.Navigate(scopeA, "/rounds")
			},
			wantChanged: false,
			wantEntry:   true,
			wantReasons: []ChangeReason{ReasonInitial, ReasonPushed},
		},
		{
			name: "first report of another screen invalidates entry with a route",
			steps: func(reg *Register) bool {
				e := savedEntry("a", 1)
				e.Route = "/rounds/1/edit"
				reg.Push(scopeA, e)
				return reg.Navigate(scopeA, "/rounds")
			},
			wantChanged: true,
			wantEntry:   false,
			wantReasons: []ChangeReason{ReasonInitial, ReasonPushed, ReasonInvalidated},
		},
		{
			name: "navigating in another scope leaves entry alone",
			steps: func(reg *Register) bool {
				reg.Navigate(scopeA, "/rounds")
				reg.Push(scopeA, savedEntry("a", 1))
				return reg.Navigate(scopeB, "/logs")
			},
			wantChanged: true,
			wantEntry:   true,
			wantReasons: []ChangeReason{ReasonInitial, ReasonPushed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegister()
			rec := &recorder{}
			defer reg.Subscribe(scopeA, rec.listen)()

			changed := tt.steps(reg)

			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantEntry, reg.Peek(scopeA) != nil)
			assert.Equal(t, tt.wantReasons, rec.reasons())
		})
	}
}

func TestRegister_PushRecordsRoute(t *testing.T) {
	reg := NewRegister()
	reg.Navigate(scopeA, "/rounds")

	e := reg.Push(scopeA, savedEntry("a", 1))
	assert.Equal(t, "/rounds", e.Route)
	assert.Equal(t, "/rounds", reg.Route(scopeA))
}

func TestRegister_Consume(t *testing.T) {
	t.Run("clears the executed entry", func(t *testing.T) {
		reg := NewRegister()
		e := reg.Push(scopeA, savedEntry("a", 1))
		rec := &recorder{}
		defer reg.Subscribe(scopeA, rec.listen)()

		reg.Consume(scopeA, e)

		assert.Nil(t, reg.Peek(scopeA))
		last := rec.last()
		assert.Equal(t, ReasonApplied, last.Reason)
		assert.Nil(t, last.Entry)
		require.NotNil(t, last.Applied)
		assert.Equal(t, e.ID, last.Applied.ID)
	})

	t.Run("keeps a newer entry", func(t *testing.T) {
		reg := NewRegister()
		old := reg.Push(scopeA, savedEntry("old", 1))
		newer := reg.Push(scopeA, savedEntry("newer", 2))
		rec := &recorder{}
		defer reg.Subscribe(scopeA, rec.listen)()

		reg.Consume(scopeA, old)

		require.NotNil(t, reg.Peek(scopeA))
		assert.Equal(t, newer.ID, reg.Peek(scopeA).ID)
		last := rec.last()
		assert.Equal(t, ReasonApplied, last.Reason)
		require.NotNil(t, last.Entry)
		assert.Equal(t, newer.ID, last.Entry.ID)
	})
}

func TestRegister_ConcurrentPushes(t *testing.T) {
	reg := NewRegister()
	rec := &recorder{}
	defer reg.Subscribe(scopeA, rec.listen)()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Push(scopeA, savedEntry("concurrent", sharedtypes.RoundID(i)))
		}()
	}
	wg.Wait()

	got := reg.Peek(scopeA)
	require.NotNil(t, got)
	// The last delivered change is the entry left in the slot.
	assert.Equal(t, got.ID, rec.last().Entry.ID)
	assert.Len(t, rec.reasons(), 51)
}
