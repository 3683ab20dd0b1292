package finance

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Finance Errors
// ---------------------------------------------------------------------------

var (
	ErrNonPositivePrice  = errors.New("finance: price must be positive")
	ErrNegativeCost      = errors.New("finance: cost must not be negative")
	ErrInvalidRate       = errors.New("finance: rate must be in [0, 1)")
	ErrInfeasibleInputs  = errors.New("finance: rates leave no feasible breakeven price")
	ErrNegativeMargin    = errors.New("finance: target margin must not be negative")
	ErrUnknownCommission = errors.New("finance: no commission rate for category")
)

// DefaultVATRate is the simplified tax system VAT rate applied from 2026
var DefaultVATRate = decimal.NewFromFloat(0.22)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ---------------------------------------------------------------------------
// Net Profit
// ---------------------------------------------------------------------------

// ProfitInput holds everything needed to compute unit economics for one sale
type ProfitInput struct {
	// Price is the buyer-facing selling price, VAT inclusive for VAT payers
	Price decimal.Decimal
	// CostPrice is the procurement cost per unit
	CostPrice decimal.Decimal
	// LogisticsCost is the per-unit delivery cost charged by the marketplace
	LogisticsCost decimal.Decimal
	// CommissionRate is the marketplace commission as a fraction of price
	CommissionRate decimal.Decimal
	// ReturnRate is the expected fraction of sales lost to returns
	ReturnRate decimal.Decimal
	// VATPayer selects whether VAT is carved out of the price
	VATPayer bool
	// VATRate overrides DefaultVATRate when positive
	VATRate decimal.Decimal
}

// vatRate resolves the effective VAT rate for the input
func (in ProfitInput) vatRate() decimal.Decimal {
	if !in.VATPayer {
		return decimal.Zero
	}
	if in.VATRate.IsPositive() {
		return in.VATRate
	}
	return DefaultVATRate
}

// Validate checks the input ranges
func (in ProfitInput) Validate() error {
	if !in.Price.IsPositive() {
		return ErrNonPositivePrice
	}
	if in.CostPrice.IsNegative() || in.LogisticsCost.IsNegative() {
		return ErrNegativeCost
	}
	for _, rate := range []decimal.Decimal{in.CommissionRate, in.ReturnRate} {
		if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
			return ErrInvalidRate
		}
	}
	if in.VATRate.IsNegative() || in.VATRate.GreaterThanOrEqual(one) {
		return ErrInvalidRate
	}
	return nil
}

// ProfitBreakdown is the full unit-economics decomposition of one sale.
// All amounts keep full precision; call Rounded before presenting them.
type ProfitBreakdown struct {
	Price             decimal.Decimal `json:"price"`
	RevenueWithoutVAT decimal.Decimal `json:"revenue_without_vat"`
	VATAmount         decimal.Decimal `json:"vat_amount"`
	MarketplaceFee    decimal.Decimal `json:"marketplace_fee"`
	LogisticsCost     decimal.Decimal `json:"logistics_cost"`
	ReturnLosses      decimal.Decimal `json:"return_losses"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	TotalCosts        decimal.Decimal `json:"total_costs"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	// MarginPercent is the planned markup margin, (price - cost) / price
	MarginPercent decimal.Decimal `json:"margin_percent"`
	// EffectiveMarginPercent is the realized margin, net_profit / price
	EffectiveMarginPercent decimal.Decimal `json:"effective_margin_percent"`
}

// Rounded returns a presentation copy with all amounts at 2 decimal places.
// VATAmount is recomputed from the rounded revenue so that
// RevenueWithoutVAT + VATAmount always equals Price exactly.
func (b ProfitBreakdown) Rounded() ProfitBreakdown {
	out := ProfitBreakdown{
		Price:                  b.Price.Round(2),
		RevenueWithoutVAT:      b.RevenueWithoutVAT.Round(2),
		MarketplaceFee:         b.MarketplaceFee.Round(2),
		LogisticsCost:          b.LogisticsCost.Round(2),
		ReturnLosses:           b.ReturnLosses.Round(2),
		CostPrice:              b.CostPrice.Round(2),
		TotalCosts:             b.TotalCosts.Round(2),
		NetProfit:              b.NetProfit.Round(2),
		MarginPercent:          b.MarginPercent.Round(2),
		EffectiveMarginPercent: b.EffectiveMarginPercent.Round(2),
	}
	out.VATAmount = out.Price.Sub(out.RevenueWithoutVAT)
	return out
}

// Calculator computes marketplace unit economics with exact decimal
// arithmetic. Floats never touch money amounts.
type Calculator struct{}

// NewCalculator creates a Calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// NetProfit computes the profit decomposition for one sale:
//
//	revenue = price / (1 + vat)
//	net     = revenue - cost - price*commission - logistics - price*returns
func (c *Calculator) NetProfit(in ProfitInput) (*ProfitBreakdown, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	vat := in.vatRate()
	revenue := in.Price.Div(one.Add(vat))

	b := &ProfitBreakdown{
		Price:             in.Price,
		RevenueWithoutVAT: revenue,
		VATAmount:         in.Price.Sub(revenue),
		MarketplaceFee:    in.Price.Mul(in.CommissionRate),
		LogisticsCost:     in.LogisticsCost,
		ReturnLosses:      in.Price.Mul(in.ReturnRate),
		CostPrice:         in.CostPrice,
	}
	b.TotalCosts = b.CostPrice.Add(b.MarketplaceFee).Add(b.LogisticsCost).Add(b.ReturnLosses)
	b.NetProfit = b.RevenueWithoutVAT.Sub(b.TotalCosts)
	b.MarginPercent = in.Price.Sub(in.CostPrice).Div(in.Price).Mul(hundred)
	b.EffectiveMarginPercent = b.NetProfit.Div(in.Price).Mul(hundred)
	return b, nil
}

// ---------------------------------------------------------------------------
// Breakeven
// ---------------------------------------------------------------------------

// BreakevenInput holds the cost structure for a breakeven price calculation
type BreakevenInput struct {
	CostPrice      decimal.Decimal
	LogisticsCost  decimal.Decimal
	CommissionRate decimal.Decimal
	ReturnRate     decimal.Decimal
	// TargetMargin is the desired net margin as a fraction of price
	TargetMargin decimal.Decimal
	VATPayer     bool
	VATRate      decimal.Decimal
}

// Validate checks the input ranges
func (in BreakevenInput) Validate() error {
	if in.CostPrice.IsNegative() || in.LogisticsCost.IsNegative() {
		return ErrNegativeCost
	}
	for _, rate := range []decimal.Decimal{in.CommissionRate, in.ReturnRate} {
		if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
			return ErrInvalidRate
		}
	}
	if in.VATRate.IsNegative() || in.VATRate.GreaterThanOrEqual(one) {
		return ErrInvalidRate
	}
	if in.TargetMargin.IsNegative() {
		return ErrNegativeMargin
	}
	return nil
}

// BreakevenResult is the minimum viable price for a cost structure
type BreakevenResult struct {
	// BreakevenPrice is the lowest price that still yields the target margin
	BreakevenPrice decimal.Decimal `json:"breakeven_price"`
	// RetainedShare is the fraction of the price left after VAT, commission,
	// returns and the target margin. Fixed costs divide by this share.
	RetainedShare decimal.Decimal `json:"retained_share"`
}

// BreakevenPrice solves price*share = cost + logistics, where share is what
// remains of each price rouble after VAT, commission, returns and the target
// margin. A share at or below zero means the rates alone consume the whole
// price and no finite breakeven price exists.
func (c *Calculator) BreakevenPrice(in BreakevenInput) (*BreakevenResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	vat := decimal.Zero
	if in.VATPayer {
		vat = in.VATRate
		if !vat.IsPositive() {
			vat = DefaultVATRate
		}
	}

	share := one.Div(one.Add(vat)).
		Sub(in.CommissionRate).
		Sub(in.ReturnRate).
		Sub(in.TargetMargin)
	if !share.IsPositive() {
		return nil, ErrInfeasibleInputs
	}

	fixed := in.CostPrice.Add(in.LogisticsCost)
	return &BreakevenResult{
		BreakevenPrice: fixed.Div(share),
		RetainedShare:  share,
	}, nil
}
