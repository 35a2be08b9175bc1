// Package tileproxy resolves custom tile-scheme references to upstream URLs
// and streams the fetched tiles to the browser through an in-memory cache.
package tileproxy

import (
	"fmt"
	"sync"
)

// Resolver turns the path remainder of a scheme reference into an upstream
// URL. The remainder is everything after "/tiles/<scheme>/".
type Resolver interface {
	Resolve(rest string) (string, error)
}

// Registry maps scheme names to resolvers. Registration is idempotent:
// registering an already-present scheme is a no-op, not an error, so
// hot-reload re-entry cannot fail.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]Resolver)}
}

// Register binds a scheme to a resolver unless the scheme is already bound.
// It reports whether the binding took effect.
func (r *Registry) Register(scheme string, resolver Resolver) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resolvers[scheme]; ok {
		return false
	}
	r.resolvers[scheme] = resolver
	return true
}

// Lookup returns the resolver bound to a scheme.
func (r *Registry) Lookup(scheme string) (Resolver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resolver, ok := r.resolvers[scheme]
	if !ok {
		return nil, fmt.Errorf("unregistered tile scheme %q", scheme)
	}
	return resolver, nil
}

// Schemes returns the registered scheme names.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.resolvers))
	for s := range r.resolvers {
		schemes = append(schemes, s)
	}
	return schemes
}
