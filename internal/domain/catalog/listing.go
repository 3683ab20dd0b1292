package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/domain/shared"
)

// Listing validation errors
var (
	ErrEmptySKU           = shared.NewDomainError("INVALID_INPUT", "SKU must not be empty")
	ErrSKUTooLong         = shared.NewDomainError("INVALID_INPUT", "SKU must not exceed 50 characters")
	ErrEmptyName          = shared.NewDomainError("INVALID_INPUT", "Listing name must not be empty")
	ErrInvalidMarketplace = shared.NewDomainError("INVALID_INPUT", "Unknown marketplace")
	ErrNegativePrice      = shared.NewDomainError("INVALID_INPUT", "Price must not be negative")
)

// ListingStatus represents the lifecycle state of a tracked listing
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusArchived ListingStatus = "archived"
)

// Listing is a marketplace product listing tracked for auditing.
// It is the aggregate root for catalog operations. A user tracks each
// marketplace SKU at most once: (user, marketplace, sku) is unique.
type Listing struct {
	shared.UserAggregateRoot
	Marketplace string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_listing_user_mkt_sku,priority:2"`
	SKU         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_listing_user_mkt_sku,priority:3;column:sku"`
	Name        string          `gorm:"type:varchar(500);not null"`
	Brand       string          `gorm:"type:varchar(200)"`
	Category    string          `gorm:"type:varchar(200);index"`
	Barcode     string          `gorm:"type:varchar(50);index"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Rating      *float64        `gorm:""`
	ReviewCount int             `gorm:"not null;default:0"`
	Description string          `gorm:"type:text"`
	PhotoCount  int             `gorm:"not null;default:0"`
	InStock     bool            `gorm:"not null;default:false"`
	Status      ListingStatus   `gorm:"type:varchar(20);not null;default:'active'"`

	// DeliveryTimeHours is the promised delivery time to the buyer, nil
	// when neither the marketplace nor the seller supplied it
	DeliveryTimeHours *int

	// SEOKeywordsJSON holds the seller-entered search keywords as a JSON array
	SEOKeywordsJSON string `gorm:"type:jsonb;column:seo_keywords"`

	// Seller-entered cost structure used by the financial checks
	CostPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LogisticsCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// SyncedAt is when the listing data was last refreshed from the marketplace
	SyncedAt *time.Time

	// RawData is the original marketplace payload (JSON)
	RawData string `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Listing) TableName() string {
	return "listings"
}

// NewListing creates a tracked listing
func NewListing(userID uuid.UUID, m marketplace.Marketplace, sku, name string) (*Listing, error) {
	sku = strings.TrimSpace(sku)
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if !m.IsValid() {
		return nil, ErrInvalidMarketplace
	}

	return &Listing{
		UserAggregateRoot: shared.NewUserAggregateRoot(userID),
		Marketplace:       m.String(),
		SKU:               sku,
		Name:              name,
		Price:             decimal.Zero,
		CostPrice:         decimal.Zero,
		LogisticsCost:     decimal.Zero,
		Status:            ListingStatusActive,
		SEOKeywordsJSON:   "[]",
		RawData:           "{}",
	}, nil
}

// NewListingFromCatalog creates a tracked listing from a fetched catalog entry
func NewListingFromCatalog(userID uuid.UUID, m marketplace.Marketplace, cl marketplace.CatalogListing) (*Listing, error) {
	name := cl.Name
	if strings.TrimSpace(name) == "" {
		name = cl.SKU
	}
	listing, err := NewListing(userID, m, cl.SKU, name)
	if err != nil {
		return nil, err
	}
	listing.applyCatalogData(cl)
	return listing, nil
}

// RefreshFromCatalog updates marketplace-sourced fields from a fresh fetch.
// Seller-entered costs are left untouched.
func (l *Listing) RefreshFromCatalog(cl marketplace.CatalogListing) {
	l.applyCatalogData(cl)
	l.UpdatedAt = time.Now()
}

func (l *Listing) applyCatalogData(cl marketplace.CatalogListing) {
	if cl.Name != "" {
		l.Name = cl.Name
	}
	l.Brand = cl.Brand
	l.Category = cl.Category
	l.Barcode = cl.Barcode
	l.Price = cl.Price
	l.Rating = cl.Rating
	l.ReviewCount = cl.ReviewCount
	l.Description = cl.Description
	l.PhotoCount = cl.PhotoCount
	l.InStock = cl.InStock
	if cl.DeliveryTimeHours != nil {
		l.DeliveryTimeHours = cl.DeliveryTimeHours
	}
	if cl.RawData != "" {
		l.RawData = cl.RawData
	}
	now := time.Now()
	l.SyncedAt = &now
}

// SetSEOKeywords records the seller's search keywords
func (l *Listing) SetSEOKeywords(keywords []string) error {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return err
	}
	l.SEOKeywordsJSON = string(raw)
	l.UpdatedAt = time.Now()
	return nil
}

// SEOKeywords returns the stored search keywords
func (l *Listing) SEOKeywords() []string {
	if l.SEOKeywordsJSON == "" {
		return nil
	}
	var keywords []string
	if err := json.Unmarshal([]byte(l.SEOKeywordsJSON), &keywords); err != nil {
		return nil
	}
	return keywords
}

// SetCosts records the seller's cost structure
func (l *Listing) SetCosts(costPrice, logisticsCost decimal.Decimal) error {
	if costPrice.IsNegative() || logisticsCost.IsNegative() {
		return ErrNegativePrice
	}
	l.CostPrice = costPrice
	l.LogisticsCost = logisticsCost
	l.UpdatedAt = time.Now()
	return nil
}

// Archive takes the listing out of audit rotation without deleting history
func (l *Listing) Archive() {
	l.Status = ListingStatusArchived
	l.UpdatedAt = time.Now()
}

// IsActive returns true when the listing participates in audits
func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

func validateSKU(sku string) error {
	if sku == "" {
		return ErrEmptySKU
	}
	if len(sku) > 50 {
		return ErrSKUTooLong
	}
	return nil
}
