// Package intercept swaps function bindings for wrappers and restores them.
//
// A Registry owns the table of intercepted entry points. Each entry keeps the
// original binding so it can be put back; an entry point is intercepted at
// most once at a time.
//
//	reg := intercept.NewRegistry()
//	_, err := intercept.Install(reg, "simulate_fmu", &ns.SimulateFMU, func(orig fmu.SimulateFMUFunc) fmu.SimulateFMUFunc {
//	    return func(ctx context.Context, filename string, opts fmu.SimulateOptions) (*fmu.SimulationResult, error) {
//	        return orig(ctx, filename, opts)
//	    }
//	})
//	defer reg.RestoreAll()
package intercept

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrAlreadyInstalled is returned when an entry point is already
	// intercepted by the registry.
	ErrAlreadyInstalled = errors.New("entry point already intercepted")

	// ErrNilTarget is returned when the binding to intercept is nil.
	ErrNilTarget = errors.New("nil target binding")
)

// Registry tracks intercepted entry points. It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]func()
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]func())}
}

// Install replaces *target with wrap(*target) and records the original
// under name. It returns the original binding.
//
// The binding is left untouched when name is already installed, when target
// is nil, or when wrap panics.
func Install[F any](r *Registry, name string, target *F, wrap func(original F) F) (original F, err error) {
	if target == nil {
		return original, fmt.Errorf("install %s: %w", name, ErrNilTarget)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return original, fmt.Errorf("install %s: %w", name, ErrAlreadyInstalled)
	}

	original = *target
	wrapper := wrap(original)
	*target = wrapper

	r.entries[name] = func() { *target = original }
	r.order = append(r.order, name)
	return original, nil
}

// Restore puts back the original binding for name. It reports whether name
// was installed.
func (r *Registry) Restore(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	restore, ok := r.entries[name]
	if !ok {
		return false
	}
	restore()
	r.remove(name)
	return true
}

// RestoreAll restores every installed entry point in reverse install order
// and returns how many were restored.
func (r *Registry) RestoreAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		r.entries[name]()
		delete(r.entries, name)
		n++
	}
	r.order = nil
	return n
}

// Forget drops every entry without restoring any binding.
func (r *Registry) Forget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]func())
	r.order = nil
}

// Installed reports whether name is currently intercepted.
func (r *Registry) Installed(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns the installed entry points in install order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of installed entry points.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// remove deletes name from the table. Caller must hold r.mu.
func (r *Registry) remove(name string) {
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
