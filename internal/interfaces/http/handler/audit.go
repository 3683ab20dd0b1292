package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	auditapp "github.com/ecom-auditor/backend/internal/application/audit"
	"github.com/ecom-auditor/backend/internal/domain/audit"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/interfaces/http/dto"
)

// AuditHandler handles audit run and report API endpoints
type AuditHandler struct {
	BaseHandler
	orchestrator *auditapp.Orchestrator
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(orchestrator *auditapp.Orchestrator) *AuditHandler {
	return &AuditHandler{orchestrator: orchestrator}
}

// PositionSampleRequest is one search-position observation supplied by the client
type PositionSampleRequest struct {
	ObservedAt  time.Time `json:"observed_at" binding:"required"`
	Position    int       `json:"position" binding:"required,min=1"`
	Impressions int       `json:"impressions" binding:"gte=0"`
}

// RunAuditRequest represents a request to run an audit for one listing.
// CompetitorPrices maps a platform name to the lowest competitor price the
// seller observed there.
type RunAuditRequest struct {
	PositionSamples  []PositionSampleRequest `json:"position_samples" binding:"omitempty,dive"`
	CompetitorPrices map[string]float64      `json:"competitor_prices" binding:"omitempty,dive,gt=0"`
	SkipRefresh      bool                    `json:"skip_refresh"`
}

// FindingResponse is one audit finding in a report response
type FindingResponse struct {
	Kind           string `json:"kind"`
	Dimension      string `json:"dimension"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation,omitempty"`
	Informational  bool   `json:"informational,omitempty"`
}

// ReportResponse is the outward representation of one audit report
type ReportResponse struct {
	ID             uuid.UUID         `json:"id"`
	ProductID      uuid.UUID         `json:"product_id"`
	Marketplace    string            `json:"marketplace"`
	AuditDate      time.Time         `json:"audit_date"`
	Status         string            `json:"status"`
	Breakdown      dtoBreakdown      `json:"scores"`
	Classification string            `json:"classification"`
	Findings       []FindingResponse `json:"findings"`
	Financial      dtoFinancial      `json:"financial"`
	RulesVersion   string            `json:"rules_version,omitempty"`
	FailureReason  string            `json:"failure_reason,omitempty"`
}

type dtoBreakdown struct {
	Legal    float64 `json:"legal"`
	Delivery float64 `json:"delivery"`
	SEO      float64 `json:"seo"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type dtoFinancial struct {
	NetProfit              decimal.Decimal `json:"net_profit"`
	MarginPercent          decimal.Decimal `json:"margin_percent"`
	EffectiveMarginPercent decimal.Decimal `json:"effective_margin_percent"`
	BreakevenPrice         decimal.Decimal `json:"breakeven_price"`
}

// toReportResponse converts a stored report to its response form
func toReportResponse(r *audit.Report) ReportResponse {
	resp := ReportResponse{
		ID:             r.ID,
		ProductID:      r.ProductID,
		Marketplace:    r.Marketplace,
		AuditDate:      r.AuditDate,
		Status:         string(r.Status),
		Classification: string(r.Classification),
		RulesVersion:   r.RulesVersion,
		FailureReason:  r.FailureReason,
		Breakdown: dtoBreakdown{
			Legal:    r.LegalScore,
			Delivery: r.DeliveryScore,
			SEO:      r.SEOScore,
			Price:    r.PriceScore,
			Total:    r.TotalScore,
		},
		Financial: dtoFinancial{
			NetProfit:              r.NetProfit,
			MarginPercent:          r.MarginPercent,
			EffectiveMarginPercent: r.EffectiveMarginPercent,
			BreakevenPrice:         r.BreakevenPrice,
		},
	}

	findings, err := r.Findings()
	if err == nil {
		resp.Findings = make([]FindingResponse, 0, len(findings))
		for _, f := range findings {
			resp.Findings = append(resp.Findings, FindingResponse{
				Kind:           f.Kind,
				Dimension:      string(f.Dimension),
				Severity:       string(f.Severity),
				Description:    f.Description,
				Recommendation: f.Recommendation,
				Informational:  f.Informational,
			})
		}
	}

	return resp
}

// Run executes one audit for a listing and returns the stored report
func (h *AuditHandler) Run(c *gin.Context) {
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

	var req RunAuditRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	samples := make([]marketplace.PositionSample, 0, len(req.PositionSamples))
	for _, s := range req.PositionSamples {
		samples = append(samples, marketplace.PositionSample{
			ObservedAt:  s.ObservedAt,
			Position:    s.Position,
			Impressions: s.Impressions,
		})
	}

	var competitorPrices map[string]decimal.Decimal
	if len(req.CompetitorPrices) > 0 {
		competitorPrices = make(map[string]decimal.Decimal, len(req.CompetitorPrices))
		for platform, price := range req.CompetitorPrices {
			competitorPrices[platform] = decimal.NewFromFloat(price)
		}
	}

	result, err := h.orchestrator.Run(c.Request.Context(), userID, listingID, auditapp.RunOptions{
		PositionSamples:  samples,
		CompetitorPrices: competitorPrices,
		SkipRefresh:      req.SkipRefresh,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toReportResponse(result.Report))
}

// History returns the seller's audit reports across all products
func (h *AuditHandler) History(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	reports, total, err := h.orchestrator.History(c.Request.Context(), userID, req.PageSize, req.Offset())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, toReportResponse(r))
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// ProductHistory returns the audit history of one listing, newest first
func (h *AuditHandler) ProductHistory(c *gin.Context) {
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

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	reports, err := h.orchestrator.ProductHistory(c.Request.Context(), userID, listingID, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		items = append(items, toReportResponse(r))
	}

	h.Success(c, items)
}

// RegisterRoutes registers audit routes on the given group
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	audits := rg.Group("/audits")
	{
		audits.GET("", h.History)
	}

	products := rg.Group("/products")
	{
		products.POST("/:id/audit", h.Run)
		products.GET("/:id/audits", h.ProductHistory)
	}
}
