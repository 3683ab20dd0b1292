package finance

import (
	"github.com/shopspring/decimal"

	"github.com/ecom-auditor/backend/internal/domain/finance"
)

// CalculateRequest is the application-level input for a unit-economics
// calculation. CommissionRate may be zero, in which case the category rate
// table decides.
type CalculateRequest struct {
	Marketplace    string
	Category       string
	Price          decimal.Decimal
	CostPrice      decimal.Decimal
	LogisticsCost  decimal.Decimal
	CommissionRate decimal.Decimal
	ReturnRate     decimal.Decimal
	TargetMargin   decimal.Decimal
	VATPayer       bool
	AnnualRevenue  decimal.Decimal
}

// CalculateResponse is the combined financial picture for one listing
type CalculateResponse struct {
	Profit         finance.ProfitBreakdown     `json:"profit"`
	CommissionRate decimal.Decimal             `json:"commission_rate"`
	Breakeven      *finance.BreakevenResult    `json:"breakeven,omitempty"`
	BreakevenError string                      `json:"breakeven_error,omitempty"`
	RevenueLimit   *finance.RevenueLimitReport `json:"revenue_limit,omitempty"`
}

// Service exposes the financial calculator to the transport layer
type Service struct {
	calc        *finance.Calculator
	commissions *finance.CommissionTable
}

// NewService creates a new finance Service
func NewService(calc *finance.Calculator, commissions *finance.CommissionTable) *Service {
	return &Service{calc: calc, commissions: commissions}
}

// Calculate computes profit, breakeven price and the tax regime headroom in
// one pass. A breakeven that is infeasible for the given rates is reported
// in-band; profit validation errors fail the whole request.
func (s *Service) Calculate(req CalculateRequest) (*CalculateResponse, error) {
	rate := req.CommissionRate
	if rate.IsZero() && req.Marketplace != "" {
		if resolved, err := s.commissions.Resolve(req.Marketplace, req.Category); err == nil {
			rate = resolved
		}
	}

	profit, err := s.calc.NetProfit(finance.ProfitInput{
		Price:          req.Price,
		CostPrice:      req.CostPrice,
		LogisticsCost:  req.LogisticsCost,
		CommissionRate: rate,
		ReturnRate:     req.ReturnRate,
		VATPayer:       req.VATPayer,
	})
	if err != nil {
		return nil, err
	}

	resp := &CalculateResponse{
		Profit:         profit.Rounded(),
		CommissionRate: rate,
	}

	breakeven, err := s.calc.BreakevenPrice(finance.BreakevenInput{
		CostPrice:      req.CostPrice,
		LogisticsCost:  req.LogisticsCost,
		CommissionRate: rate,
		ReturnRate:     req.ReturnRate,
		TargetMargin:   req.TargetMargin,
		VATPayer:       req.VATPayer,
	})
	if err != nil {
		resp.BreakevenError = err.Error()
	} else {
		breakeven.BreakevenPrice = breakeven.BreakevenPrice.Round(2)
		breakeven.RetainedShare = breakeven.RetainedShare.Round(4)
		resp.Breakeven = breakeven
	}

	if req.AnnualRevenue.IsPositive() {
		limit, err := finance.CheckRevenueLimit(req.AnnualRevenue)
		if err == nil {
			limit.UsagePercent = limit.UsagePercent.Round(2)
			resp.RevenueLimit = limit
		}
	}

	return resp, nil
}
