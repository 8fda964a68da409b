package signal

import (
	"context"
	"sync"
)

// Adapter delivers a Signal to one delivery mechanism. Validate normalizes
// and rejects an options bag; Deliver performs the actual per-signal
// delivery (spec §4.4). The Dispatcher calls Validate for each Target
// immediately before Deliver; NewRoute, Add and New do not call Validate,
// so bad options are reported at dispatch time. Implementations must treat
// Validate as side-effect free and Deliver as the only operation that
// talks to the outside world.
type Adapter interface {
	Validate(options map[string]any) (map[string]any, error)
	Deliver(ctx context.Context, s *Signal, options map[string]any) error
}

// ValidateFunc and DeliverFunc let a custom Adapter be built from two
// functions instead of a struct.
type ValidateFunc func(options map[string]any) (map[string]any, error)
type DeliverFunc func(ctx context.Context, s *Signal, options map[string]any) error

// FuncAdapter builds an Adapter from a validate/deliver function pair.
type FuncAdapter struct {
	ValidateFn ValidateFunc
	DeliverFn  DeliverFunc
}

func (a FuncAdapter) Validate(options map[string]any) (map[string]any, error) {
	if a.ValidateFn == nil {
		return options, nil
	}
	return a.ValidateFn(options)
}

func (a FuncAdapter) Deliver(ctx context.Context, s *Signal, options map[string]any) error {
	return a.DeliverFn(ctx, s, options)
}

// Registry is the process-wide adapter registry from spec §4.4/§9: a
// mapping from tag to Adapter, populated at startup. Registration is
// append-only by convention (no Unregister is exposed); lookup is O(1).
// Registry is safe for concurrent Lookup once registration is complete.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry returns a Registry with every built-in adapter
// (pid, named, bus, pubsub, logger, console, noop) pre-registered.
func NewRegistry(collab Collaborators) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	registerBuiltins(r, collab)
	return r
}

// Register adds or replaces the adapter for tag. Consumers register
// custom adapters before first use (spec §4.4 "Custom adapters").
func (r *Registry) Register(tag string, a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[tag] = a
}

// Lookup returns the adapter registered for tag, if any.
func (r *Registry) Lookup(tag string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[tag]
	return a, ok
}
