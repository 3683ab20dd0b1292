package finance

import "github.com/shopspring/decimal"

// SimplifiedTaxRevenueLimit is the annual revenue ceiling for the simplified
// tax regime, in roubles.
var SimplifiedTaxRevenueLimit = decimal.NewFromInt(265_800_000)

// RevenueLimitRisk grades how close a seller is to losing the simplified regime
type RevenueLimitRisk string

const (
	RevenueLimitRiskLow      RevenueLimitRisk = "low"
	RevenueLimitRiskMedium   RevenueLimitRisk = "medium"
	RevenueLimitRiskHigh     RevenueLimitRisk = "high"
	RevenueLimitRiskExceeded RevenueLimitRisk = "exceeded"
)

// RevenueLimitReport is the outcome of checking annual revenue against the
// simplified tax regime ceiling.
type RevenueLimitReport struct {
	AnnualRevenue decimal.Decimal  `json:"annual_revenue"`
	Limit         decimal.Decimal  `json:"limit"`
	Remaining     decimal.Decimal  `json:"remaining"`
	UsagePercent  decimal.Decimal  `json:"usage_percent"`
	WithinLimit   bool             `json:"within_limit"`
	Risk          RevenueLimitRisk `json:"risk"`
}

// CheckRevenueLimit compares annual revenue to the simplified regime ceiling.
// Risk turns medium at 80% usage and high at 95%.
func CheckRevenueLimit(annualRevenue decimal.Decimal) (*RevenueLimitReport, error) {
	if annualRevenue.IsNegative() {
		return nil, ErrNegativeCost
	}

	usage := annualRevenue.Div(SimplifiedTaxRevenueLimit).Mul(hundred)
	report := &RevenueLimitReport{
		AnnualRevenue: annualRevenue,
		Limit:         SimplifiedTaxRevenueLimit,
		Remaining:     SimplifiedTaxRevenueLimit.Sub(annualRevenue),
		UsagePercent:  usage,
		WithinLimit:   annualRevenue.LessThanOrEqual(SimplifiedTaxRevenueLimit),
	}

	switch {
	case !report.WithinLimit:
		report.Risk = RevenueLimitRiskExceeded
	case usage.GreaterThanOrEqual(decimal.NewFromInt(95)):
		report.Risk = RevenueLimitRiskHigh
	case usage.GreaterThanOrEqual(decimal.NewFromInt(80)):
		report.Risk = RevenueLimitRiskMedium
	default:
		report.Risk = RevenueLimitRiskLow
	}
	return report, nil
}
