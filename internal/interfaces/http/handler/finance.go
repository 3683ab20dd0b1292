package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	financeapp "github.com/ecom-auditor/backend/internal/application/finance"
	"github.com/ecom-auditor/backend/internal/domain/finance"
)

// FinanceHandler handles unit-economics calculation endpoints
type FinanceHandler struct {
	BaseHandler
	finance *financeapp.Service
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(finance *financeapp.Service) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// CalculateFinancesRequest represents a unit-economics calculation request.
// Monetary values are passed as strings to avoid float precision loss.
type CalculateFinancesRequest struct {
	Marketplace    string `json:"marketplace" binding:"omitempty,oneof=wildberries ozon"`
	Category       string `json:"category" binding:"max=200"`
	Price          string `json:"price" binding:"required"`
	CostPrice      string `json:"cost_price" binding:"required"`
	LogisticsCost  string `json:"logistics_cost"`
	CommissionRate string `json:"commission_rate"`
	ReturnRate     string `json:"return_rate"`
	TargetMargin   string `json:"target_margin"`
	VATPayer       bool   `json:"vat_payer"`
	AnnualRevenue  string `json:"annual_revenue"`
}

// parseDecimalField parses an optional decimal string, empty means zero
func parseDecimalField(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

// Calculate computes profit, breakeven price and tax regime headroom
func (h *FinanceHandler) Calculate(c *gin.Context) {
	var req CalculateFinancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := financeapp.CalculateRequest{
		Marketplace: req.Marketplace,
		Category:    req.Category,
		VATPayer:    req.VATPayer,
	}

	fields := []struct {
		value string
		dst   *decimal.Decimal
		name  string
	}{
		{req.Price, &appReq.Price, "price"},
		{req.CostPrice, &appReq.CostPrice, "cost_price"},
		{req.LogisticsCost, &appReq.LogisticsCost, "logistics_cost"},
		{req.CommissionRate, &appReq.CommissionRate, "commission_rate"},
		{req.ReturnRate, &appReq.ReturnRate, "return_rate"},
		{req.TargetMargin, &appReq.TargetMargin, "target_margin"},
		{req.AnnualRevenue, &appReq.AnnualRevenue, "annual_revenue"},
	}
	for _, f := range fields {
		parsed, err := parseDecimalField(f.value)
		if err != nil {
			h.BadRequest(c, "Invalid decimal value for "+f.name)
			return
		}
		*f.dst = parsed
	}

	result, err := h.finance.Calculate(appReq)
	if err != nil {
		switch {
		case errors.Is(err, finance.ErrNonPositivePrice),
			errors.Is(err, finance.ErrNegativeCost),
			errors.Is(err, finance.ErrInvalidRate),
			errors.Is(err, finance.ErrNegativeMargin):
			h.BadRequest(c, err.Error())
		default:
			h.HandleError(c, err)
		}
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers finance routes on the given group
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	finances := rg.Group("/finances")
	{
		finances.POST("/calculate", h.Calculate)
	}
}
