// Package registry resolves guard and action callbacks by name, so table
// definitions authored as data (YAML, JSON) can reference Go functions.
package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/bramble/pkg/domain"
)

// Registry manages named guards and actions.
type Registry struct {
	mu      sync.RWMutex
	guards  map[string]domain.Guard
	actions map[string]domain.Action
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		guards:  make(map[string]domain.Guard),
		actions: make(map[string]domain.Action),
	}
}

// RegisterGuard adds a guard under name.
// If a guard with the same name exists, it is overwritten.
func (r *Registry) RegisterGuard(name string, g domain.Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards[name] = g
}

// RegisterAction adds an action under name.
// If an action with the same name exists, it is overwritten.
func (r *Registry) RegisterAction(name string, a domain.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = a
}

// Guard looks up a guard by name.
func (r *Registry) Guard(name string) (domain.Guard, error) {
	r.mu.RLock()
	g, ok := r.guards[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("guard not found: %s", name)
	}
	return g, nil
}

// Action looks up an action by name.
func (r *Registry) Action(name string) (domain.Action, error) {
	r.mu.RLock()
	a, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("action not found: %s", name)
	}
	return a, nil
}
