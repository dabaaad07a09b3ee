package undoservice

import (
	"sync"
	"time"

	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/google/uuid"
)

// AnyScope subscribes a listener to every scope.
const AnyScope sharedtypes.Scope = "*"

// ChangeReason says why a listener is being called.
type ChangeReason string

const (
	ReasonInitial     ChangeReason = "initial"
	ReasonPushed      ChangeReason = "pushed"
	ReasonCleared     ChangeReason = "cleared"
	ReasonInvalidated ChangeReason = "invalidated"
	ReasonApplied     ChangeReason = "applied"
)

// Change is what listeners receive. Entry is the slot's value after the change (nil when
// empty). Applied is set only for ReasonApplied and holds the entry that was executed.
type Change struct {
	Scope   sharedtypes.Scope
	Entry   *undodomain.Entry
	Reason  ChangeReason
	Applied *undodomain.Entry
}

// Listener observes register changes. Listeners run on the goroutine that changed the
// register and must not push or clear from inside the callback.
type Listener func(Change)

type subscription struct {
	id       uint64
	listener Listener
}

// Register holds at most one undo entry per scope and notifies subscribers on every change.
// One Register lives for the lifetime of the application, not of any single screen.
type Register struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	slots    map[sharedtypes.Scope]*undodomain.Entry
	routes   map[sharedtypes.Scope]string
	subs     map[sharedtypes.Scope][]subscription
	nextID   uint64
	now      func() time.Time
}

// NewRegister creates an empty register.
func NewRegister() *Register {
	return &Register{
		slots:  make(map[sharedtypes.Scope]*undodomain.Entry),
		routes: make(map[sharedtypes.Scope]string),
		subs:   make(map[sharedtypes.Scope][]subscription),
		now:    time.Now,
	}
}

// Push replaces whatever entry the scope held. ID, CreatedAt, Scope and Route are filled in
// when the caller left them empty.
func (r *Register) Push(scope sharedtypes.Scope, entry undodomain.Entry) undodomain.Entry {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	entry.Scope = scope
	if entry.Route == "" {
		entry.Route = r.routes[scope]
	}
	stored := entry
	r.slots[scope] = &stored
	listeners := r.listenersLocked(scope)
	r.mu.Unlock()

	r.deliver(listeners, Change{Scope: scope, Entry: copyEntry(&stored), Reason: ReasonPushed})
	return entry
}

// Clear empties the scope's slot. Clearing an empty slot still notifies.
func (r *Register) Clear(scope sharedtypes.Scope) {
	r.clear(scope, ReasonCleared)
}

// Peek returns a copy of the scope's current entry, or nil.
func (r *Register) Peek(scope sharedtypes.Scope) *undodomain.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyEntry(r.slots[scope])
}

// Navigate records the scope's active screen. Moving to a different screen invalidates
// the pending entry whatever its kind. The first report for a scope only invalidates an
// entry that was made on another screen. It reports whether the screen changed.
func (r *Register) Navigate(scope sharedtypes.Scope, route string) bool {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	prev, seen := r.routes[scope]
	r.routes[scope] = route
	cur := r.slots[scope]
	if seen && prev == route {
		r.mu.Unlock()
		return false
	}
	if cur == nil || (!seen && (cur.Route == "" || cur.Route == route)) {
		r.mu.Unlock()
		return true
	}
	delete(r.slots, scope)
	listeners := r.listenersLocked(scope)
	r.mu.Unlock()

	r.deliver(listeners, Change{Scope: scope, Reason: ReasonInvalidated})
	return true
}

// Route returns the scope's last recorded screen.
func (r *Register) Route(scope sharedtypes.Scope) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.routes[scope]
}

// Consume clears the slot if it still holds entry id, then broadcasts that the entry was
// applied. A newer entry pushed while the executed one was in flight is left in place.
func (r *Register) Consume(scope sharedtypes.Scope, applied undodomain.Entry) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if cur := r.slots[scope]; cur != nil && cur.ID == applied.ID {
		delete(r.slots, scope)
	}
	current := copyEntry(r.slots[scope])
	listeners := r.listenersLocked(scope)
	r.mu.Unlock()

	r.deliver(listeners, Change{Scope: scope, Entry: current, Reason: ReasonApplied, Applied: &applied})
}

// Subscribe calls listener now with the current value and again on every change to scope.
// Pass AnyScope to observe all scopes; such listeners are not called immediately.
func (r *Register) Subscribe(scope sharedtypes.Scope, listener Listener) (unsubscribe func()) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs[scope] = append(r.subs[scope], subscription{id: id, listener: listener})
	current := copyEntry(r.slots[scope])
	r.mu.Unlock()

	if scope != AnyScope {
		listener(Change{Scope: scope, Entry: current, Reason: ReasonInitial})
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.unsubscribe(scope, id) })
	}
}

// Subscribers returns the number of listeners registered for scope.
func (r *Register) Subscribers(scope sharedtypes.Scope) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[scope])
}

func (r *Register) unsubscribe(scope sharedtypes.Scope, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.subs[scope]
	for i, s := range subs {
		if s.id == id {
			r.subs[scope] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(r.subs[scope]) == 0 {
		delete(r.subs, scope)
	}
}

func (r *Register) clear(scope sharedtypes.Scope, reason ChangeReason) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	delete(r.slots, scope)
	listeners := r.listenersLocked(scope)
	r.mu.Unlock()

	r.deliver(listeners, Change{Scope: scope, Reason: reason})
}

func (r *Register) listenersLocked(scope sharedtypes.Scope) []Listener {
	out := make([]Listener, 0, len(r.subs[scope])+len(r.subs[AnyScope]))
	for _, s := range r.subs[scope] {
		out = append(out, s.listener)
	}
	if scope != AnyScope {
		for _, s := range r.subs[AnyScope] {
			out = append(out, s.listener)
		}
	}
	return out
}

func (r *Register) deliver(listeners []Listener, c Change) {
	for _, l := range listeners {
		l(c)
	}
}

func copyEntry(e *undodomain.Entry) *undodomain.Entry {
	if e == nil {
		return nil
	}
	c := *e
	if e.Local != nil {
		local := *e.Local
		c.Local = &local
	}
	return &c
}
