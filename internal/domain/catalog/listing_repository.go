package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ListingFilter narrows listing queries
type ListingFilter struct {
	// Marketplace restricts results to one marketplace when non-empty
	Marketplace string
	// Status restricts results to one lifecycle state when non-empty
	Status ListingStatus
	// Search matches against name and SKU when non-empty
	Search string
	Limit  int
	Offset int
}

// ListingRepository defines persistence for tracked listings
type ListingRepository interface {
	// Create stores a new listing
	Create(ctx context.Context, listing *Listing) error

	// Update persists changes to an existing listing
	Update(ctx context.Context, listing *Listing) error

	// Delete removes a listing owned by the given user
	Delete(ctx context.Context, userID, listingID uuid.UUID) error

	// FindByID loads a listing owned by the given user
	FindByID(ctx context.Context, userID, listingID uuid.UUID) (*Listing, error)

	// FindBySKU loads a listing by its marketplace identity
	FindBySKU(ctx context.Context, userID uuid.UUID, marketplace, sku string) (*Listing, error)

	// Exists reports whether the user already tracks this marketplace SKU
	Exists(ctx context.Context, userID uuid.UUID, marketplace, sku string) (bool, error)

	// List returns the user's listings matching the filter plus the total count
	List(ctx context.Context, userID uuid.UUID, filter ListingFilter) ([]*Listing, int64, error)
}
