package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/domain/shared"
)

// ListingService handles tracked listing management
type ListingService struct {
	listings  catalog.ListingRepository
	providers marketplace.ProviderRegistry
	creds     marketplace.CredentialsResolver
	log       *zap.Logger
}

// NewListingService creates a new ListingService
func NewListingService(
	listings catalog.ListingRepository,
	providers marketplace.ProviderRegistry,
	creds marketplace.CredentialsResolver,
	log *zap.Logger,
) *ListingService {
	return &ListingService{
		listings:  listings,
		providers: providers,
		creds:     creds,
		log:       log,
	}
}

// Create starts tracking a marketplace listing
func (s *ListingService) Create(ctx context.Context, userID uuid.UUID, req CreateListingRequest) (*ListingResponse, error) {
	m := marketplace.Marketplace(req.Marketplace)

	exists, err := s.listings.Exists(ctx, userID, req.Marketplace, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "This marketplace SKU is already tracked")
	}

	listing, err := catalog.NewListing(userID, m, req.SKU, req.Name)
	if err != nil {
		return nil, err
	}
	if err := listing.SetCosts(req.CostPrice, req.LogisticsCost); err != nil {
		return nil, err
	}
	if req.DeliveryTimeHours != nil {
		listing.DeliveryTimeHours = req.DeliveryTimeHours
	}
	if len(req.SEOKeywords) > 0 {
		if err := listing.SetSEOKeywords(req.SEOKeywords); err != nil {
			return nil, err
		}
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	resp := toListingResponse(listing)
	return &resp, nil
}

// Get loads one tracked listing
func (s *ListingService) Get(ctx context.Context, userID, listingID uuid.UUID) (*ListingResponse, error) {
	listing, err := s.listings.FindByID(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	resp := toListingResponse(listing)
	return &resp, nil
}

// List returns the user's tracked listings
func (s *ListingService) List(ctx context.Context, userID uuid.UUID, filter catalog.ListingFilter) (*ListingListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	listings, total, err := s.listings.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		items = append(items, toListingResponse(l))
	}
	return &ListingListResponse{Items: items, Total: total}, nil
}

// UpdateCosts updates the seller-entered cost structure
func (s *ListingService) UpdateCosts(ctx context.Context, userID, listingID uuid.UUID, req UpdateCostsRequest) (*ListingResponse, error) {
	listing, err := s.listings.FindByID(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if err := listing.SetCosts(req.CostPrice, req.LogisticsCost); err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	resp := toListingResponse(listing)
	return &resp, nil
}

// Archive takes a listing out of audit rotation
func (s *ListingService) Archive(ctx context.Context, userID, listingID uuid.UUID) error {
	listing, err := s.listings.FindByID(ctx, userID, listingID)
	if err != nil {
		return err
	}
	listing.Archive()
	return s.listings.Update(ctx, listing)
}

// Delete removes a tracked listing
func (s *ListingService) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	return s.listings.Delete(ctx, userID, listingID)
}

// ValidateSKU checks a SKU against the marketplace before tracking it.
// Missing Wildberries credentials fail closed (the key is mandatory for the
// content API); missing Ozon credentials fail open since many sellers track
// competitor SKUs they hold no keys for.
func (s *ListingService) ValidateSKU(ctx context.Context, userID uuid.UUID, m marketplace.Marketplace, sku string) (*ValidationResult, error) {
	if !m.IsValid() {
		return nil, catalog.ErrInvalidMarketplace
	}
	if sku == "" {
		return nil, catalog.ErrEmptySKU
	}

	provider, err := s.providers.Provider(m)
	if err != nil {
		return nil, err
	}

	creds, err := s.creds.Resolve(ctx, userID, m)
	if err != nil {
		if !errors.Is(err, marketplace.ErrProviderNotConfigured) {
			return nil, err
		}
		switch m {
		case marketplace.Wildberries:
			return &ValidationResult{
				Marketplace: m.String(),
				SKU:         sku,
				Valid:       false,
				Message:     "Configure the Wildberries API key to validate articles",
			}, nil
		default:
			return &ValidationResult{
				Marketplace: m.String(),
				SKU:         sku,
				Valid:       true,
				Message:     "No Ozon credentials configured, the SKU was accepted without verification",
			}, nil
		}
	}

	lookup, err := provider.ValidateSKU(ctx, creds, sku)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Marketplace: m.String(),
		SKU:         sku,
		Valid:       lookup.Valid,
		AuthFailed:  lookup.AuthFailed,
		Message:     lookup.Message,
	}
	if lookup.Listing != nil {
		preview, convErr := catalog.NewListingFromCatalog(userID, m, *lookup.Listing)
		if convErr == nil {
			resp := toListingResponse(preview)
			result.Listing = &resp
		}
	}
	return result, nil
}
