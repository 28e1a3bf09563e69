// Package entity provides the handler registry and the built-in
// validator/normalizer handlers for recognized entity values.
package entity

import (
	"sync"

	"github.com/parleybot/parley/pkg/ports"
)

// Registry manages the available entity handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ports.EntityHandler
}

// NewRegistry creates a registry preloaded with the built-in handlers.
func NewRegistry() *Registry {
	r := &Registry{
		handlers: make(map[string]ports.EntityHandler),
	}
	for name, h := range builtins() {
		r.handlers[name] = h
	}
	return r
}

// Register adds a handler to the registry.
// If a handler with the same name exists, it is overwritten.
func (r *Registry) Register(name string, h ports.EntityHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Get looks up a handler by name.
func (r *Registry) Get(name string) (ports.EntityHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Has reports whether a handler is registered under the name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered handler names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
