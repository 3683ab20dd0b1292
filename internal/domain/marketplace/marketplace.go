package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Marketplace Errors
// ---------------------------------------------------------------------------

var (
	// Provider errors
	ErrProviderNotConfigured   = errors.New("marketplace: provider not configured")
	ErrProviderNotRegistered   = errors.New("marketplace: provider not registered")
	ErrProviderUnavailable     = errors.New("marketplace: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("marketplace: provider request failed")
	ErrProviderInvalidResponse = errors.New("marketplace: invalid provider response")
	ErrProviderRateLimited     = errors.New("marketplace: provider rate limited")

	// Credential errors
	ErrMissingAPIKey   = errors.New("marketplace: API key is required")
	ErrMissingClientID = errors.New("marketplace: client ID is required")

	// Lookup errors
	ErrSKUNotFound = errors.New("marketplace: SKU not found on marketplace")
	ErrEmptySKU    = errors.New("marketplace: SKU must not be empty")
)

// ---------------------------------------------------------------------------
// Marketplace identifies a supported selling platform
// ---------------------------------------------------------------------------

// Marketplace identifies a supported selling platform
type Marketplace string

const (
	// Wildberries represents the Wildberries marketplace
	Wildberries Marketplace = "wildberries"
	// Ozon represents the Ozon marketplace
	Ozon Marketplace = "ozon"
)

// IsValid returns true if the marketplace code is valid
func (m Marketplace) IsValid() bool {
	switch m {
	case Wildberries, Ozon:
		return true
	default:
		return false
	}
}

// String returns the string representation of Marketplace
func (m Marketplace) String() string {
	return string(m)
}

// DisplayName returns a human-readable name for the marketplace
func (m Marketplace) DisplayName() string {
	switch m {
	case Wildberries:
		return "Wildberries"
	case Ozon:
		return "Ozon"
	default:
		return string(m)
	}
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// Credentials holds the seller API credentials for one marketplace account.
// Wildberries needs only the API key; Ozon additionally requires the client ID.
type Credentials struct {
	// APIKey is the seller API token
	APIKey string
	// ClientID is the seller account identifier (Ozon only)
	ClientID string
}

// Validate checks that the credentials are sufficient for the given marketplace
func (c Credentials) Validate(m Marketplace) error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if m == Ozon && c.ClientID == "" {
		return ErrMissingClientID
	}
	return nil
}

// CatalogListing is a single product listing pulled from a marketplace catalog
type CatalogListing struct {
	// SKU is the marketplace-assigned article identifier
	SKU string
	// Name is the listing title
	Name string
	// Brand is the brand name as published on the marketplace
	Brand string
	// Category is the marketplace category or subject name
	Category string
	// Barcode is the primary barcode, if published
	Barcode string
	// Price is the current selling price in RUB
	Price decimal.Decimal
	// Rating is the buyer rating (0-5), nil when the marketplace does not expose it
	Rating *float64
	// ReviewCount is the number of buyer reviews
	ReviewCount int
	// Description is the listing description text
	Description string
	// PhotoCount is the number of published photos
	PhotoCount int
	// InStock reports whether the listing currently has sellable stock
	InStock bool
	// DeliveryTimeHours is the promised delivery time to the buyer, nil when
	// the marketplace does not expose it
	DeliveryTimeHours *int
	// RawData is the original marketplace payload (JSON)
	RawData string
}

// CatalogResult is the outcome of a full catalog pull.
// AuthFailed is reported in-band rather than as an error: an expired key is an
// expected operator condition, not a transport failure. When AuthFailed is
// true Listings is empty, partially fetched pages are discarded.
type CatalogResult struct {
	// Listings contains every listing fetched across all pages
	Listings []CatalogListing
	// AuthFailed is true when the marketplace rejected the credentials
	AuthFailed bool
}

// SkuLookup is the outcome of checking a single SKU against a marketplace
type SkuLookup struct {
	// Valid reports whether the SKU exists and is accessible
	Valid bool
	// AuthFailed is true when the marketplace rejected the credentials
	AuthFailed bool
	// Listing holds the fetched listing data when Valid is true
	Listing *CatalogListing
	// Message is a human-readable explanation of the outcome
	Message string
}

// PositionSample is one observation of a listing's search placement
type PositionSample struct {
	// ObservedAt is when the sample was taken
	ObservedAt time.Time
	// Position is the 1-based search position (larger is worse)
	Position int
	// Impressions is the number of impressions recorded for the period
	Impressions int
}

// ---------------------------------------------------------------------------
// CatalogProvider Port Interface
// ---------------------------------------------------------------------------

// CatalogProvider defines the port interface for marketplace catalog access.
// The interface lives in the domain layer; concrete adapters (Wildberries,
// Ozon) live in the infrastructure layer.
type CatalogProvider interface {
	// Marketplace returns the marketplace this provider handles
	Marketplace() Marketplace

	// FetchCatalog pulls the full seller catalog, following pagination until
	// the marketplace reports no more pages or the page cap is reached.
	// Credential rejection is reported via CatalogResult.AuthFailed.
	FetchCatalog(ctx context.Context, creds Credentials) (*CatalogResult, error)

	// ValidateSKU checks whether a SKU exists in the seller's catalog and
	// returns the listing data when it does.
	ValidateSKU(ctx context.Context, creds Credentials, sku string) (*SkuLookup, error)
}

// CredentialsResolver resolves a seller's marketplace credentials.
// Implementations may read per-user stored keys or fall back to
// statically configured ones.
type CredentialsResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, m Marketplace) (Credentials, error)
}

// ProviderRegistry provides access to configured catalog providers
type ProviderRegistry interface {
	// Provider returns the catalog provider for the given marketplace
	Provider(m Marketplace) (CatalogProvider, error)

	// Providers returns all registered catalog providers
	Providers() []CatalogProvider
}
