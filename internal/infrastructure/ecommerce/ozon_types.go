package ecommerce

import "strings"

// ozonAPIError is the error envelope shared by seller API responses
type ozonAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ozonAuthErrorCode is the seller API error code for a rejected key
const ozonAuthErrorCode = 5

// isAuthError reports whether the error indicates rejected credentials.
// Ozon signals this either with code 5 or with an explicit message.
func (e ozonAPIError) isAuthError() bool {
	return e.Code == ozonAuthErrorCode || strings.Contains(e.Message, "Invalid Api-Key")
}

type ozonListFilter struct {
	Visibility string `json:"visibility"`
}

// ozonProductListRequest is the request body for the product list endpoint
type ozonProductListRequest struct {
	Filter ozonListFilter `json:"filter"`
	LastID string         `json:"last_id"`
	Limit  int            `json:"limit"`
}

// OzonProductListResponse is the envelope returned by the product list endpoint
type OzonProductListResponse struct {
	ozonAPIError
	Result *OzonProductListResult `json:"result"`
}

// IsSuccess returns true if the response carries a usable result
func (r *OzonProductListResponse) IsSuccess() bool {
	return r.Code == 0 && r.Result != nil
}

// OzonProductListResult is one page of product identifiers
type OzonProductListResult struct {
	Items  []OzonListItem `json:"items"`
	LastID string         `json:"last_id"`
	Total  int            `json:"total"`
}

// OzonListItem identifies one product in the seller's catalog
type OzonListItem struct {
	ProductID int64  `json:"product_id"`
	OfferID   string `json:"offer_id"`
}

// ozonProductInfoRequest is the request body for the product info endpoint
type ozonProductInfoRequest struct {
	OfferID   []string `json:"offer_id,omitempty"`
	ProductID []int64  `json:"product_id,omitempty"`
}

// OzonProductInfoResponse is the envelope returned by the product info endpoint
type OzonProductInfoResponse struct {
	ozonAPIError
	Items []OzonProductInfo `json:"items"`
}

// IsSuccess returns true if the response carries no API-level error
func (r *OzonProductInfoResponse) IsSuccess() bool {
	return r.Code == 0
}

// OzonProductInfo is the detailed product record
type OzonProductInfo struct {
	ID             int64      `json:"id"`
	OfferID        string     `json:"offer_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	CategoryName   string     `json:"category_name"`
	Barcodes       []string   `json:"barcodes"`
	Price          string     `json:"price"`
	MarketingPrice string     `json:"marketing_price"`
	Images         []string   `json:"images"`
	Stocks         OzonStocks `json:"stocks"`
}

// OzonStocks is the stock summary for a product
type OzonStocks struct {
	Present int `json:"present"`
}
