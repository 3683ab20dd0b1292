package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_NoFindings(t *testing.T) {
	breakdown, sorted := Aggregate(nil)

	assert.Equal(t, MaxLegalScore, breakdown.Legal)
	assert.Equal(t, MaxDeliveryScore, breakdown.Delivery)
	assert.Equal(t, MaxSEOScore, breakdown.SEO)
	assert.Equal(t, MaxPriceScore, breakdown.Price)
	assert.Equal(t, 100.0, breakdown.Total)
	assert.Empty(t, sorted)
	assert.Equal(t, ClassificationGood, Classify(breakdown.Total))
}

func TestAggregate_MixedDimensions(t *testing.T) {
	findings := []Finding{
		{Kind: "certificate_invalid", Dimension: DimensionLegal, Severity: SeverityCritical},
		{Kind: "slow_delivery", Dimension: DimensionDelivery, Severity: SeverityMedium},
		{Kind: "short_description", Dimension: DimensionSEO, Severity: SeverityLow},
		{Kind: "price_above_market", Dimension: DimensionPrice, Severity: SeverityHigh},
	}

	breakdown, _ := Aggregate(findings)

	assert.Equal(t, 20.0, breakdown.Legal)    // 40 - 20
	assert.Equal(t, 22.0, breakdown.Delivery) // 30 - 8
	assert.Equal(t, 18.0, breakdown.SEO)      // 20 - 2
	assert.Equal(t, 0.0, breakdown.Price)     // 10 - 15, floored
	assert.Equal(t, 60.0, breakdown.Total)
	assert.Equal(t, ClassificationWarning, Classify(breakdown.Total))
}

func TestAggregate_FloorsDimensionAtZero(t *testing.T) {
	findings := []Finding{
		{Kind: "a", Dimension: DimensionLegal, Severity: SeverityCritical},
		{Kind: "b", Dimension: DimensionLegal, Severity: SeverityCritical},
		{Kind: "c", Dimension: DimensionLegal, Severity: SeverityCritical},
	}

	breakdown, _ := Aggregate(findings)

	assert.Equal(t, 0.0, breakdown.Legal)
	assert.Equal(t, 60.0, breakdown.Total)
}

func TestAggregate_InformationalFindingsCostNothing(t *testing.T) {
	findings := []Finding{
		{Kind: "registry_unavailable", Dimension: DimensionLegal, Severity: SeverityLow, Informational: true},
	}

	breakdown, sorted := Aggregate(findings)

	assert.Equal(t, 100.0, breakdown.Total)
	assert.Len(t, sorted, 1)
}

func TestAggregate_SortsBySeverityStable(t *testing.T) {
	findings := []Finding{
		{Kind: "low_first", Dimension: DimensionSEO, Severity: SeverityLow},
		{Kind: "high_a", Dimension: DimensionPrice, Severity: SeverityHigh},
		{Kind: "critical", Dimension: DimensionLegal, Severity: SeverityCritical},
		{Kind: "high_b", Dimension: DimensionDelivery, Severity: SeverityHigh},
	}

	_, sorted := Aggregate(findings)

	kinds := make([]string, 0, len(sorted))
	for _, f := range sorted {
		kinds = append(kinds, f.Kind)
	}
	assert.Equal(t, []string{"critical", "high_a", "high_b", "low_first"}, kinds)

	// Input order must not be mutated
	assert.Equal(t, "low_first", findings[0].Kind)
}

func TestAggregate_UnknownDimensionIgnored(t *testing.T) {
	findings := []Finding{
		{Kind: "stray", Dimension: Dimension("bogus"), Severity: SeverityCritical},
	}

	breakdown, sorted := Aggregate(findings)

	assert.Equal(t, 100.0, breakdown.Total)
	assert.Len(t, sorted, 1)
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		want  Classification
	}{
		{"perfect", 100, ClassificationGood},
		{"good lower bound", 70, ClassificationGood},
		{"just below good", 69.999, ClassificationWarning},
		{"warning lower bound", 40, ClassificationWarning},
		{"just below warning", 39.999, ClassificationCritical},
		{"zero", 0, ClassificationCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.total))
		})
	}
}
