package processor

import (
	"fmt"
	"sync"
)

// Registry maps processor type identifiers to their implementations. The
// verifier resolves every component through the registry exactly once per
// verification pass; there is no runtime class lookup.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]Processor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		processors: make(map[string]Processor),
	}
}

// Register adds a processor under its name. Panics if the name is taken:
// duplicate registration is a programming error, not a runtime condition.
func (r *Registry) Register(p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.processors[name]; exists {
		panic(fmt.Sprintf("processor already registered for name: %s", name))
	}
	r.processors[name] = p
}

// Get retrieves the processor for a type identifier. Returns nil if no
// processor is registered.
func (r *Registry) Get(name string) Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.processors[name]
}

// Has checks if a processor is registered for a name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.processors[name]
	return exists
}

// Names returns all registered processor names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.processors))
	for name := range r.processors {
		names = append(names, name)
	}
	return names
}
