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

const (
	ozonProductListPath = "/v3/product/list"
	ozonProductInfoPath = "/v3/product/info/list"
)

// OzonAdapter implements CatalogProvider for the Ozon marketplace
type OzonAdapter struct {
	config     *OzonConfig
	httpClient *http.Client
}

// NewOzonAdapter creates a new Ozon adapter with the given configuration
func NewOzonAdapter(config *OzonConfig) (*OzonAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &OzonAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Marketplace returns the marketplace this adapter handles
func (a *OzonAdapter) Marketplace() marketplace.Marketplace {
	return marketplace.Ozon
}

// FetchCatalog pulls the seller's full product catalog. Ozon pages by
// cursor: each page returns a last_id token that requests the next page.
// The pull stops on an empty cursor, a short page, the reported total or
// the MaxPages cap. Each page of identifiers is resolved to full product
// records through the info endpoint.
func (a *OzonAdapter) FetchCatalog(ctx context.Context, creds marketplace.Credentials) (*marketplace.CatalogResult, error) {
	if err := creds.Validate(marketplace.Ozon); err != nil {
		return nil, err
	}

	result := &marketplace.CatalogResult{
		Listings: make([]marketplace.CatalogListing, 0),
	}

	lastID := ""
	for page := 0; page < a.config.MaxPages; page++ {
		body, authFailed, err := a.doRequest(ctx, creds, ozonProductListPath, ozonProductListRequest{
			Filter: ozonListFilter{Visibility: "ALL"},
			LastID: lastID,
			Limit:  a.config.PageSize,
		})
		if err != nil {
			return nil, err
		}
		if authFailed {
			return authFailedCatalog(), nil
		}

		var resp OzonProductListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse response: %v", marketplace.ErrProviderInvalidResponse, err)
		}
		if resp.isAuthError() {
			return authFailedCatalog(), nil
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %s", marketplace.ErrProviderRequestFailed, resp.Message)
		}

		current := resp.Result
		if len(current.Items) > 0 {
			listings, authFailed, err := a.fetchInfo(ctx, creds, current.Items)
			if err != nil {
				return nil, err
			}
			if authFailed {
				return authFailedCatalog(), nil
			}
			result.Listings = append(result.Listings, listings...)
		}

		if current.LastID == "" || len(current.Items) < a.config.PageSize {
			break
		}
		if current.Total > 0 && len(result.Listings) >= current.Total {
			break
		}
		lastID = current.LastID
	}

	return result, nil
}

// ValidateSKU checks whether an offer exists in the seller's catalog.
// The lookup tries the SKU as an offer ID first and, for numeric SKUs,
// retries as a product ID.
func (a *OzonAdapter) ValidateSKU(ctx context.Context, creds marketplace.Credentials, sku string) (*marketplace.SkuLookup, error) {
	if sku == "" {
		return nil, marketplace.ErrEmptySKU
	}
	if err := creds.Validate(marketplace.Ozon); err != nil {
		return nil, err
	}

	infos, authFailed, err := a.productInfo(ctx, creds, ozonProductInfoRequest{OfferID: []string{sku}})
	if err != nil {
		return nil, err
	}
	if authFailed {
		return &marketplace.SkuLookup{
			AuthFailed: true,
			Message:    "Ozon rejected the API key",
		}, nil
	}

	if len(infos) == 0 {
		if productID, convErr := strconv.ParseInt(sku, 10, 64); convErr == nil {
			infos, authFailed, err = a.productInfo(ctx, creds, ozonProductInfoRequest{ProductID: []int64{productID}})
			if err != nil {
				return nil, err
			}
			if authFailed {
				return &marketplace.SkuLookup{
					AuthFailed: true,
					Message:    "Ozon rejected the API key",
				}, nil
			}
		}
	}

	if len(infos) == 0 {
		return &marketplace.SkuLookup{
			Valid:   false,
			Message: "Product not found in the Ozon catalog",
		}, nil
	}

	listing := convertOzonInfo(infos[0])
	return &marketplace.SkuLookup{
		Valid:   true,
		Listing: &listing,
		Message: "Product found in the Ozon catalog",
	}, nil
}

// fetchInfo resolves a page of product identifiers to full records
func (a *OzonAdapter) fetchInfo(ctx context.Context, creds marketplace.Credentials, items []OzonListItem) ([]marketplace.CatalogListing, bool, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	infos, authFailed, err := a.productInfo(ctx, creds, ozonProductInfoRequest{ProductID: ids})
	if err != nil || authFailed {
		return nil, authFailed, err
	}

	listings := make([]marketplace.CatalogListing, 0, len(infos))
	for _, info := range infos {
		listings = append(listings, convertOzonInfo(info))
	}
	return listings, false, nil
}

// productInfo performs one info request
func (a *OzonAdapter) productInfo(ctx context.Context, creds marketplace.Credentials, req ozonProductInfoRequest) ([]OzonProductInfo, bool, error) {
	body, authFailed, err := a.doRequest(ctx, creds, ozonProductInfoPath, req)
	if err != nil || authFailed {
		return nil, authFailed, err
	}

	var resp OzonProductInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("%w: failed to parse response: %v", marketplace.ErrProviderInvalidResponse, err)
	}
	if resp.isAuthError() {
		return nil, true, nil
	}
	if !resp.IsSuccess() {
		return nil, false, fmt.Errorf("%w: %s", marketplace.ErrProviderRequestFailed, resp.Message)
	}
	return resp.Items, false, nil
}

// doRequest performs an HTTP request to the Ozon seller API
func (a *OzonAdapter) doRequest(ctx context.Context, creds marketplace.Credentials, path string, payload any) ([]byte, bool, error) {
	return postJSONWithRetry(ctx, a.httpClient, a.config.APIBaseURL+path, payload, func(req *http.Request) {
		req.Header.Set("Client-Id", creds.ClientID)
		req.Header.Set("Api-Key", creds.APIKey)
	})
}

// convertOzonInfo converts an Ozon product record to a catalog listing
func convertOzonInfo(info OzonProductInfo) marketplace.CatalogListing {
	price := info.MarketingPrice
	if price == "" {
		price = info.Price
	}

	listing := marketplace.CatalogListing{
		SKU:         info.OfferID,
		Name:        info.Name,
		Category:    info.CategoryName,
		Price:       ParseDecimal(price),
		Description: info.Description,
		PhotoCount:  len(info.Images),
		InStock:     info.Stocks.Present > 0,
	}
	if listing.SKU == "" {
		listing.SKU = strconv.FormatInt(info.ID, 10)
	}
	if len(info.Barcodes) > 0 {
		listing.Barcode = info.Barcodes[0]
	}
	if raw, err := json.Marshal(info); err == nil {
		listing.RawData = string(raw)
	}
	return listing
}

// Ensure OzonAdapter implements CatalogProvider interface
var _ marketplace.CatalogProvider = (*OzonAdapter)(nil)
