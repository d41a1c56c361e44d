// Package suppliers defines the adapter contract every parts supplier
// integration implements, plus the shared error taxonomy.
//
// An adapter fetches raw product data for an exact part number and
// normalizes it into an entities.CanonicalPart. Adapters perform no writes
// anywhere; the destination writer is the only component with side effects.
package suppliers

import (
	"context"
	"fmt"
	"sync"

	"github.com/partbridge/partbridge/internal/entities"
)

// Adapter fetches and normalizes supplier data for a single supplier.
//
// Implementations:
//   - mouser.Client: API-key-authenticated search by part number
//   - digikey.Client: OAuth2 client-credentials product details lookup
type Adapter interface {
	// Name returns the supplier identifier (e.g. "mouser").
	Name() entities.Supplier

	// DisplayName returns the human-readable supplier name.
	DisplayName() string

	// Fetch retrieves the part with the given exact part number.
	// Returns ErrNotFound when the supplier reports zero matches.
	Fetch(ctx context.Context, partNumber string) (*entities.CanonicalPart, error)
}

// Registry holds the configured supplier adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[entities.Supplier]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[entities.Supplier]Adapter),
	}
}

// Register adds an adapter to the registry.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Get retrieves an adapter by supplier name.
func (r *Registry) Get(name entities.Supplier) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("supplier %q not registered", name)
	}
	return a, nil
}

// List returns all registered supplier names.
func (r *Registry) List() []entities.Supplier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]entities.Supplier, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
