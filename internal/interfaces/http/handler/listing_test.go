package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecom-auditor/backend/internal/domain/marketplace"
)

func TestListingHandler_Create(t *testing.T) {
	h := newAPIHarness()

	w := h.do(t, http.MethodPost, "/api/v1/products", CreateListingRequest{
		Marketplace:   "wildberries",
		SKU:           "12345678",
		Name:          "Термокружка",
		CostPrice:     1200,
		LogisticsCost: 150,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := dataMap(t, resp)
	assert.Equal(t, "wildberries", data["marketplace"])
	assert.Equal(t, "12345678", data["sku"])
	assert.Equal(t, "active", data["status"])
}

func TestListingHandler_Create_Duplicate(t *testing.T) {
	h := newAPIHarness()

	body := CreateListingRequest{Marketplace: "ozon", SKU: "555"}
	w := h.do(t, http.MethodPost, "/api/v1/products", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(t, http.MethodPost, "/api/v1/products", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ERR_ALREADY_EXISTS", resp.Error.Code)
}

func TestListingHandler_Create_InvalidMarketplace(t *testing.T) {
	h := newAPIHarness()

	w := h.do(t, http.MethodPost, "/api/v1/products", CreateListingRequest{
		Marketplace: "amazon",
		SKU:         "12345678",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListingHandler_Create_Unauthenticated(t *testing.T) {
	h := newAPIHarness()

	w := h.doAnonymous(t, http.MethodPost, "/api/v1/products", CreateListingRequest{
		Marketplace: "wildberries",
		SKU:         "12345678",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListingHandler_Get(t *testing.T) {
	h := newAPIHarness()
	listing := trackedListing(t, uuid.New())
	h.userID = listing.UserID
	require.NoError(t, h.listings.Create(t.Context(), listing))

	w := h.do(t, http.MethodGet, "/api/v1/products/"+listing.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, decodeResponse(t, w))
	assert.Equal(t, listing.ID.String(), data["id"])
	assert.Equal(t, listing.SKU, data["sku"])
}

func TestListingHandler_Get_NotFound(t *testing.T) {
	h := newAPIHarness()

	w := h.do(t, http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
}

func TestListingHandler_Get_InvalidID(t *testing.T) {
	h := newAPIHarness()

	w := h.do(t, http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListingHandler_List(t *testing.T) {
	h := newAPIHarness()
	first := trackedListing(t, uuid.New())
	h.userID = first.UserID
	second := trackedListing(t, h.userID)
	second.SKU = "87654321"
	second.ID = uuid.New()
	require.NoError(t, h.listings.Create(t.Context(), first))
	require.NoError(t, h.listings.Create(t.Context(), second))

	w := h.do(t, http.MethodGet, "/api/v1/products?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
}

func TestListingHandler_UpdateCosts(t *testing.T) {
	h := newAPIHarness()
	listing := trackedListing(t, uuid.New())
	h.userID = listing.UserID
	require.NoError(t, h.listings.Create(t.Context(), listing))

	w := h.do(t, http.MethodPut, "/api/v1/products/"+listing.ID.String()+"/costs", UpdateCostsRequest{
		CostPrice:     1800,
		LogisticsCost: 250,
	})

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decodeResponse(t, w))
	assert.Equal(t, "1800", data["cost_price"])
	assert.Equal(t, "250", data["logistics_cost"])
}

func TestListingHandler_ArchiveAndDelete(t *testing.T) {
	h := newAPIHarness()
	listing := trackedListing(t, uuid.New())
	h.userID = listing.UserID
	require.NoError(t, h.listings.Create(t.Context(), listing))

	w := h.do(t, http.MethodPost, "/api/v1/products/"+listing.ID.String()+"/archive", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/products/"+listing.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decodeResponse(t, w))
	assert.Equal(t, "archived", data["status"])

	w = h.do(t, http.MethodDelete, "/api/v1/products/"+listing.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/products/"+listing.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingHandler_ValidateSKU_NoWildberriesCredentials(t *testing.T) {
	h := newAPIHarness()
	h.providers.provider = &fakeProvider{m: marketplace.Wildberries}

	w := h.do(t, http.MethodPost, "/api/v1/products/validate", ValidateSKURequest{
		Marketplace: "wildberries",
		SKU:         "12345678",
	})

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decodeResponse(t, w))
	assert.Equal(t, false, data["valid"])
	assert.NotEmpty(t, data["message"])
}

func TestListingHandler_ValidateSKU_Found(t *testing.T) {
	h := newAPIHarness()
	h.creds.creds[marketplace.Wildberries] = marketplace.Credentials{APIKey: "key"}
	h.providers.provider = &fakeProvider{
		m: marketplace.Wildberries,
		lookup: &marketplace.SkuLookup{
			Valid: true,
			Listing: &marketplace.CatalogListing{
				SKU:  "12345678",
				Name: "Термокружка",
			},
		},
	}

	w := h.do(t, http.MethodPost, "/api/v1/products/validate", ValidateSKURequest{
		Marketplace: "wildberries",
		SKU:         "12345678",
	})

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decodeResponse(t, w))
	assert.Equal(t, true, data["valid"])
	require.NotNil(t, data["listing"])
}

func TestListingHandler_ImportCatalog(t *testing.T) {
	h := newAPIHarness()
	h.creds.creds[marketplace.Ozon] = marketplace.Credentials{APIKey: "key", ClientID: "42"}
	h.providers.provider = &fakeProvider{
		m: marketplace.Ozon,
		catalog: &marketplace.CatalogResult{
			Listings: []marketplace.CatalogListing{
				{SKU: "100", Name: "Товар 1"},
				{SKU: "200", Name: "Товар 2"},
				{SKU: "100", Name: "Дубликат"},
			},
		},
	}

	w := h.do(t, http.MethodPost, "/api/v1/products/import", ImportCatalogRequest{Marketplace: "ozon"})

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decodeResponse(t, w))
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(2), data["imported"])
	assert.Equal(t, float64(0), data["skipped"])
}

func TestListingHandler_ImportCatalog_AllMarketplaces(t *testing.T) {
	h := newAPIHarness()
	h.creds.creds[marketplace.Ozon] = marketplace.Credentials{APIKey: "key", ClientID: "42"}
	h.providers.provider = &fakeProvider{
		m: marketplace.Ozon,
		catalog: &marketplace.CatalogResult{
			Listings: []marketplace.CatalogListing{
				{SKU: "100", Name: "Товар 1"},
			},
		},
	}

	// Omitting the marketplace imports every configured one
	w := h.do(t, http.MethodPost, "/api/v1/products/import", ImportCatalogRequest{})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	results, ok := resp.Data.([]any)
	require.True(t, ok, "response data is not an array: %T", resp.Data)
	require.Len(t, results, 1)

	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ozon", first["marketplace"])
	assert.Equal(t, float64(1), first["imported"])
}

func TestListingHandler_ImportCatalog_NoCredentials(t *testing.T) {
	h := newAPIHarness()
	h.providers.provider = &fakeProvider{m: marketplace.Ozon}

	w := h.do(t, http.MethodPost, "/api/v1/products/import", ImportCatalogRequest{Marketplace: "ozon"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ERR_INVALID_INPUT", resp.Error.Code)
}
