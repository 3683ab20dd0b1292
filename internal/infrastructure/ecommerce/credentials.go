package ecommerce

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecom-auditor/backend/internal/domain/marketplace"
)

// StaticCredentialsResolver serves credentials from static configuration.
// Every user shares the same seller keys; a per-user key store can replace
// this behind the same interface.
type StaticCredentialsResolver struct {
	creds map[marketplace.Marketplace]marketplace.Credentials
}

// NewStaticCredentialsResolver creates a resolver with fixed credentials
func NewStaticCredentialsResolver(creds map[marketplace.Marketplace]marketplace.Credentials) *StaticCredentialsResolver {
	if creds == nil {
		creds = make(map[marketplace.Marketplace]marketplace.Credentials)
	}
	return &StaticCredentialsResolver{creds: creds}
}

// Resolve returns the configured credentials for a marketplace
func (r *StaticCredentialsResolver) Resolve(_ context.Context, _ uuid.UUID, m marketplace.Marketplace) (marketplace.Credentials, error) {
	creds, ok := r.creds[m]
	if !ok || creds.APIKey == "" {
		return marketplace.Credentials{}, fmt.Errorf("%w: %s", marketplace.ErrProviderNotConfigured, m)
	}
	return creds, nil
}

// Ensure StaticCredentialsResolver implements CredentialsResolver
var _ marketplace.CredentialsResolver = (*StaticCredentialsResolver)(nil)
