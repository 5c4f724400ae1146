package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a configured TitleLookup.
type Factory func(Settings) (TitleLookup, error)

// Registry manages all available lookup backends
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// GlobalRegistry is the default registry instance
var GlobalRegistry = NewRegistry()

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a backend factory to the registry
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		return fmt.Errorf("provider %s has no factory", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// New builds the named backend with the given settings.
func (r *Registry) New(name string, settings Settings) (TitleLookup, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, r.List())
	}

	lookup, err := factory(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to configure provider %s: %w", name, err)
	}
	return lookup, nil
}

// List returns the registered backend names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
