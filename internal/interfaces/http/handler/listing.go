package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/ecom-auditor/backend/internal/application/catalog"
	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/interfaces/http/dto"
)

// ListingHandler handles tracked-listing API endpoints
type ListingHandler struct {
	BaseHandler
	listings *catalogapp.ListingService
	importer *catalogapp.ImportService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listings *catalogapp.ListingService, importer *catalogapp.ImportService) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		importer: importer,
	}
}

// CreateListingRequest represents a request to track a new listing
type CreateListingRequest struct {
	Marketplace       string   `json:"marketplace" binding:"required,oneof=wildberries ozon"`
	SKU               string   `json:"sku" binding:"required,min=1,max=50"`
	Name              string   `json:"name" binding:"max=500"`
	CostPrice         float64  `json:"cost_price" binding:"omitempty,gte=0"`
	LogisticsCost     float64  `json:"logistics_cost" binding:"omitempty,gte=0"`
	DeliveryTimeHours *int     `json:"delivery_time_hours" binding:"omitempty,gte=0"`
	SEOKeywords       []string `json:"seo_keywords" binding:"omitempty,max=50,dive,max=100"`
}

// UpdateCostsRequest represents a request to update the cost structure
type UpdateCostsRequest struct {
	CostPrice     float64 `json:"cost_price" binding:"gte=0"`
	LogisticsCost float64 `json:"logistics_cost" binding:"gte=0"`
}

// ValidateSKURequest represents a request to validate a SKU against a marketplace
type ValidateSKURequest struct {
	Marketplace string `json:"marketplace" binding:"required,oneof=wildberries ozon"`
	SKU         string `json:"sku" binding:"required,min=1,max=50"`
}

// ImportCatalogRequest represents a request to import the seller catalog.
// Without a marketplace every configured marketplace is imported.
type ImportCatalogRequest struct {
	Marketplace string `json:"marketplace" binding:"omitempty,oneof=wildberries ozon"`
}

// ListListingsRequest represents the listing list query parameters
type ListListingsRequest struct {
	dto.ListRequest
	Marketplace string `form:"marketplace" binding:"omitempty,oneof=wildberries ozon"`
	Status      string `form:"status" binding:"omitempty,oneof=active archived"`
}

// Create tracks a new listing for the authenticated seller
func (h *ListingHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), userID, catalogapp.CreateListingRequest{
		Marketplace:       req.Marketplace,
		SKU:               req.SKU,
		Name:              req.Name,
		CostPrice:         decimal.NewFromFloat(req.CostPrice),
		LogisticsCost:     decimal.NewFromFloat(req.LogisticsCost),
		DeliveryTimeHours: req.DeliveryTimeHours,
		SEOKeywords:       req.SEOKeywords,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, listing)
}

// Get returns one tracked listing by ID
func (h *ListingHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	listing, err := h.listings.Get(c.Request.Context(), userID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, listing)
}

// List returns the seller's tracked listings with pagination and filters
func (h *ListingHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ListListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	result, err := h.listings.List(c.Request.Context(), userID, catalog.ListingFilter{
		Marketplace: req.Marketplace,
		Status:      catalog.ListingStatus(req.Status),
		Search:      req.Search,
		Limit:       req.PageSize,
		Offset:      req.Offset(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, req.Page, req.PageSize)
}

// UpdateCosts updates the seller-entered cost structure of a listing
func (h *ListingHandler) UpdateCosts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	var req UpdateCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.UpdateCosts(c.Request.Context(), userID, listingID, catalogapp.UpdateCostsRequest{
		CostPrice:     decimal.NewFromFloat(req.CostPrice),
		LogisticsCost: decimal.NewFromFloat(req.LogisticsCost),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, listing)
}

// Archive stops auditing a listing without deleting its history
func (h *ListingHandler) Archive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	if err := h.listings.Archive(c.Request.Context(), userID, listingID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete removes a tracked listing
func (h *ListingHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid listing ID format")
		return
	}

	if err := h.listings.Delete(c.Request.Context(), userID, listingID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ValidateSKU checks whether a SKU exists in the seller's marketplace catalog
func (h *ListingHandler) ValidateSKU(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ValidateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.listings.ValidateSKU(c.Request.Context(), userID, marketplace.Marketplace(req.Marketplace), req.SKU)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ImportCatalog pulls the seller's full marketplace catalog into tracking
func (h *ListingHandler) ImportCatalog(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ImportCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.Marketplace == "" {
		results, err := h.importer.ImportAll(c.Request.Context(), userID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, results)
		return
	}

	result, err := h.importer.ImportCatalog(c.Request.Context(), userID, marketplace.Marketplace(req.Marketplace))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers listing routes on the given group
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.PUT("/:id/costs", h.UpdateCosts)
		products.POST("/:id/archive", h.Archive)
		products.DELETE("/:id", h.Delete)
		products.POST("/validate", h.ValidateSKU)
		products.POST("/import", h.ImportCatalog)
	}
}
