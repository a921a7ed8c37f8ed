package template

import (
	"fmt"
	"sync"

	"github.com/Strob0t/folio/internal/domain"
)

// Builder constructs a fresh Template value on every call.
type Builder func() Template

// Registry maps template ids to builders. Listing preserves registration order.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a builder under id. It panics on duplicate ids or when the
// built template does not validate, since both are programming errors.
func (r *Registry) Register(id string, b Builder) {
	t := b()
	if t.ID != id {
		panic(fmt.Sprintf("template: builder for %q produced id %q", id, t.ID))
	}
	if err := Validate(&t); err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[id]; exists {
		panic(fmt.Sprintf("template: duplicate registration for %q", id))
	}
	r.builders[id] = b
	r.order = append(r.order, id)
}

// Get builds the template registered under id.
func (r *Registry) Get(id string) (*Template, error) {
	r.mu.RLock()
	b, ok := r.builders[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("template %q: %w", id, domain.ErrNotFound)
	}
	t := b()
	return &t, nil
}

// List builds every registered template in registration order.
func (r *Registry) List() []Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.builders[id]())
	}
	return out
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
