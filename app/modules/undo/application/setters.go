package undoservice

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
)

// SetterFunc writes a prior value back into in-memory state owned by some module.
type SetterFunc func(ctx context.Context, scope sharedtypes.Scope, prior json.RawMessage) error

// Setters is the registry local rollbacks are resolved against.
type Setters struct {
	mu sync.RWMutex
	m  map[string]SetterFunc
}

func NewSetters() *Setters {
	return &Setters{m: make(map[string]SetterFunc)}
}

// Register installs fn under name, replacing any previous setter.
func (s *Setters) Register(name string, fn SetterFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[name] = fn
}

// Apply runs the setter named by rb with its prior value.
func (s *Setters) Apply(ctx context.Context, scope sharedtypes.Scope, rb undodomain.LocalRollback) error {
	s.mu.RLock()
	fn, ok := s.m[rb.Setter]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSetter, rb.Setter)
	}
	return fn(ctx, scope, rb.Prior)
}
