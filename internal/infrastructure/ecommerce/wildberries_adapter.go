package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ecom-auditor/backend/internal/domain/marketplace"
)

// maxResponseSize is the maximum allowed response size from a marketplace API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// wbCardsPath is the content API endpoint for listing and searching cards
const wbCardsPath = "/content/v2/get/cards/list"

// WildberriesAdapter implements CatalogProvider for the Wildberries marketplace
type WildberriesAdapter struct {
	config     *WildberriesConfig
	httpClient *http.Client
}

// NewWildberriesAdapter creates a new Wildberries adapter with the given configuration
func NewWildberriesAdapter(config *WildberriesConfig) (*WildberriesAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &WildberriesAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Marketplace returns the marketplace this adapter handles
func (a *WildberriesAdapter) Marketplace() marketplace.Marketplace {
	return marketplace.Wildberries
}

// FetchCatalog pulls the seller's full card catalog. Wildberries pages by
// offset: the pull advances by PageSize until a short page, an empty page or
// the MaxPages cap. A rejected API key stops the pull and is reported in-band.
func (a *WildberriesAdapter) FetchCatalog(ctx context.Context, creds marketplace.Credentials) (*marketplace.CatalogResult, error) {
	if err := creds.Validate(marketplace.Wildberries); err != nil {
		return nil, err
	}

	result := &marketplace.CatalogResult{
		Listings: make([]marketplace.CatalogListing, 0),
	}

	offset := 0
	for page := 0; page < a.config.MaxPages; page++ {
		resp, authFailed, err := a.fetchCards(ctx, creds, wbCardsRequest{
			Limit:  a.config.PageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		if authFailed {
			return authFailedCatalog(), nil
		}

		for _, card := range resp.Cards {
			result.Listings = append(result.Listings, convertWBCard(card))
		}

		if len(resp.Cards) < a.config.PageSize {
			break
		}
		offset += a.config.PageSize
	}

	return result, nil
}

// ValidateSKU checks whether an article exists in the seller's catalog
func (a *WildberriesAdapter) ValidateSKU(ctx context.Context, creds marketplace.Credentials, sku string) (*marketplace.SkuLookup, error) {
	if sku == "" {
		return nil, marketplace.ErrEmptySKU
	}
	if err := creds.Validate(marketplace.Wildberries); err != nil {
		return nil, err
	}

	resp, authFailed, err := a.fetchCards(ctx, creds, wbCardsRequest{
		Limit:      1,
		TextSearch: sku,
	})
	if err != nil {
		return nil, err
	}
	if authFailed {
		return &marketplace.SkuLookup{
			AuthFailed: true,
			Message:    "Wildberries rejected the API key",
		}, nil
	}

	for _, card := range resp.Cards {
		if strconv.FormatInt(card.NmID, 10) == sku || card.VendorCode == sku {
			listing := convertWBCard(card)
			return &marketplace.SkuLookup{
				Valid:   true,
				Listing: &listing,
				Message: "Article found in the Wildberries catalog",
			}, nil
		}
	}

	return &marketplace.SkuLookup{
		Valid:   false,
		Message: "Article not found in the Wildberries catalog",
	}, nil
}

// fetchCards performs one card list request. The bool result reports
// credential rejection (HTTP 401/403) without treating it as an error.
func (a *WildberriesAdapter) fetchCards(ctx context.Context, creds marketplace.Credentials, reqBody wbCardsRequest) (*WBCardsResponse, bool, error) {
	body, authFailed, err := postJSONWithRetry(ctx, a.httpClient, a.config.APIBaseURL+wbCardsPath, reqBody, func(req *http.Request) {
		req.Header.Set("Authorization", creds.APIKey)
	})
	if err != nil || authFailed {
		return nil, authFailed, err
	}

	var resp WBCardsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse response: %v", marketplace.ErrProviderInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, false, fmt.Errorf("%w: %s", marketplace.ErrProviderRequestFailed, resp.ErrorText)
	}

	return &resp, false, nil
}

// convertWBCard converts a Wildberries card to a catalog listing
func convertWBCard(card WBCard) marketplace.CatalogListing {
	listing := marketplace.CatalogListing{
		SKU:         strconv.FormatInt(card.NmID, 10),
		Name:        card.Title,
		Brand:       card.Brand,
		Category:    card.SubjectName,
		Barcode:     card.Barcode,
		Price:       ParseDecimal(card.Price),
		Rating:      card.Rating,
		ReviewCount: card.Feedbacks,
		Description: card.Description,
		PhotoCount:  len(card.Photos),
		InStock:     card.InStock,
	}
	if raw, err := json.Marshal(card); err == nil {
		listing.RawData = string(raw)
	}
	return listing
}

// Ensure WildberriesAdapter implements CatalogProvider interface
var _ marketplace.CatalogProvider = (*WildberriesAdapter)(nil)
