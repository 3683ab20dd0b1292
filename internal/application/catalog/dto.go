package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecom-auditor/backend/internal/domain/catalog"
)

// CreateListingRequest is the application-level input for tracking a listing
type CreateListingRequest struct {
	Marketplace       string
	SKU               string
	Name              string
	CostPrice         decimal.Decimal
	LogisticsCost     decimal.Decimal
	DeliveryTimeHours *int
	SEOKeywords       []string
}

// UpdateCostsRequest updates the seller-entered cost structure
type UpdateCostsRequest struct {
	CostPrice     decimal.Decimal
	LogisticsCost decimal.Decimal
}

// ListingResponse is the outward representation of a tracked listing
type ListingResponse struct {
	ID            uuid.UUID       `json:"id"`
	Marketplace   string          `json:"marketplace"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand,omitempty"`
	Category      string          `json:"category,omitempty"`
	Barcode       string          `json:"barcode,omitempty"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	LogisticsCost decimal.Decimal `json:"logistics_cost"`
	Rating        *float64        `json:"rating,omitempty"`
	ReviewCount   int             `json:"review_count"`
	PhotoCount    int             `json:"photo_count"`
	InStock       bool            `json:"in_stock"`
	Status        string          `json:"status"`

	DeliveryTimeHours *int     `json:"delivery_time_hours,omitempty"`
	SEOKeywords       []string `json:"seo_keywords"`

	SyncedAt  *time.Time `json:"synced_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ListingListResponse is a paginated set of listings
type ListingListResponse struct {
	Items []ListingResponse `json:"items"`
	Total int64             `json:"total"`
}

// ImportResult summarizes one catalog import
type ImportResult struct {
	Marketplace string `json:"marketplace"`
	// Total is the number of distinct SKUs fetched from the marketplace
	Total int `json:"total"`
	// Imported is how many new listings were created
	Imported int `json:"imported"`
	// Skipped is how many fetched SKUs were already tracked
	Skipped int `json:"skipped"`
	// AuthFailed is true when the marketplace rejected the credentials
	AuthFailed bool   `json:"auth_failed"`
	Message    string `json:"message,omitempty"`
}

// ValidationResult is the outcome of a SKU validation request
type ValidationResult struct {
	Marketplace string           `json:"marketplace"`
	SKU         string           `json:"sku"`
	Valid       bool             `json:"valid"`
	AuthFailed  bool             `json:"auth_failed,omitempty"`
	Message     string           `json:"message"`
	Listing     *ListingResponse `json:"listing,omitempty"`
}

// toListingResponse converts a domain listing to its response form
func toListingResponse(l *catalog.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID,
		Marketplace:   l.Marketplace,
		SKU:           l.SKU,
		Name:          l.Name,
		Brand:         l.Brand,
		Category:      l.Category,
		Barcode:       l.Barcode,
		Price:         l.Price,
		CostPrice:     l.CostPrice,
		LogisticsCost: l.LogisticsCost,
		Rating:        l.Rating,
		ReviewCount:   l.ReviewCount,
		PhotoCount:    l.PhotoCount,
		InStock:       l.InStock,
		Status:        string(l.Status),

		DeliveryTimeHours: l.DeliveryTimeHours,
		SEOKeywords:       l.SEOKeywords(),

		SyncedAt:  l.SyncedAt,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
