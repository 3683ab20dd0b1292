package audit

import "sort"

// Maximum score per dimension. The four dimensions sum to 100.
const (
	MaxLegalScore    = 40.0
	MaxDeliveryScore = 30.0
	MaxSEOScore      = 20.0
	MaxPriceScore    = 10.0
)

// Penalty subtracted from a dimension score per finding severity
const (
	PenaltyCritical = 20.0
	PenaltyHigh     = 15.0
	PenaltyMedium   = 8.0
	PenaltyLow      = 2.0
)

// Classification buckets the total score for the seller
type Classification string

const (
	ClassificationGood     Classification = "good"
	ClassificationWarning  Classification = "warning"
	ClassificationCritical Classification = "critical"
)

// String returns the string representation of Classification
func (c Classification) String() string {
	return string(c)
}

// Classify maps a total score to its risk classification.
// Boundaries are inclusive at the lower end: 70.0 is good, 40.0 is warning.
func Classify(total float64) Classification {
	switch {
	case total >= 70:
		return ClassificationGood
	case total >= 40:
		return ClassificationWarning
	default:
		return ClassificationCritical
	}
}

// ScoreBreakdown is the per-dimension and total audit score
type ScoreBreakdown struct {
	Legal    float64 `json:"legal_score"`
	Delivery float64 `json:"delivery_score"`
	SEO      float64 `json:"seo_score"`
	Price    float64 `json:"price_score"`
	Total    float64 `json:"total_score"`
}

// penalty returns the score deduction for a finding.
// Informational findings never cost points.
func penalty(f Finding) float64 {
	if f.Informational {
		return 0
	}
	switch f.Severity {
	case SeverityCritical:
		return PenaltyCritical
	case SeverityHigh:
		return PenaltyHigh
	case SeverityMedium:
		return PenaltyMedium
	default:
		return PenaltyLow
	}
}

// Aggregate computes the score breakdown from a set of findings and returns
// the findings sorted by severity, highest first. Each dimension starts at
// its maximum and loses a fixed penalty per finding, floored at zero. The
// sort is stable so findings of equal severity keep their detection order.
func Aggregate(findings []Finding) (ScoreBreakdown, []Finding) {
	scores := map[Dimension]float64{
		DimensionLegal:    MaxLegalScore,
		DimensionDelivery: MaxDeliveryScore,
		DimensionSEO:      MaxSEOScore,
		DimensionPrice:    MaxPriceScore,
	}

	for _, f := range findings {
		s, ok := scores[f.Dimension]
		if !ok {
			continue
		}
		s -= penalty(f)
		if s < 0 {
			s = 0
		}
		scores[f.Dimension] = s
	}

	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.rank() > sorted[j].Severity.rank()
	})

	breakdown := ScoreBreakdown{
		Legal:    scores[DimensionLegal],
		Delivery: scores[DimensionDelivery],
		SEO:      scores[DimensionSEO],
		Price:    scores[DimensionPrice],
	}
	breakdown.Total = breakdown.Legal + breakdown.Delivery + breakdown.SEO + breakdown.Price
	return breakdown, sorted
}
