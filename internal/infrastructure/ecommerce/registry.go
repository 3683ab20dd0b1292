package ecommerce

import (
	"fmt"

	"github.com/ecom-auditor/backend/internal/domain/marketplace"
)

// Registry holds the configured catalog providers keyed by marketplace
type Registry struct {
	providers map[marketplace.Marketplace]marketplace.CatalogProvider
	order     []marketplace.Marketplace
}

// NewRegistry creates a registry from the given providers.
// Later providers for the same marketplace replace earlier ones.
func NewRegistry(providers ...marketplace.CatalogProvider) *Registry {
	r := &Registry{
		providers: make(map[marketplace.Marketplace]marketplace.CatalogProvider),
	}
	for _, p := range providers {
		if _, exists := r.providers[p.Marketplace()]; !exists {
			r.order = append(r.order, p.Marketplace())
		}
		r.providers[p.Marketplace()] = p
	}
	return r
}

// Provider returns the catalog provider for the given marketplace
func (r *Registry) Provider(m marketplace.Marketplace) (marketplace.CatalogProvider, error) {
	p, ok := r.providers[m]
	if !ok {
		return nil, fmt.Errorf("%w: %s", marketplace.ErrProviderNotRegistered, m)
	}
	return p, nil
}

// Providers returns all registered providers in registration order
func (r *Registry) Providers() []marketplace.CatalogProvider {
	out := make([]marketplace.CatalogProvider, 0, len(r.order))
	for _, m := range r.order {
		out = append(out, r.providers[m])
	}
	return out
}

// Ensure Registry implements ProviderRegistry interface
var _ marketplace.ProviderRegistry = (*Registry)(nil)
