package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRevenueLimit(t *testing.T) {
	tests := []struct {
		name    string
		revenue string
		within  bool
		risk    RevenueLimitRisk
	}{
		{"well under", "100000000", true, RevenueLimitRiskLow},
		{"at 80 percent", "212640000", true, RevenueLimitRiskMedium},
		{"at 95 percent", "252510000", true, RevenueLimitRiskHigh},
		{"at limit", "265800000", true, RevenueLimitRiskHigh},
		{"over limit", "265800001", false, RevenueLimitRiskExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := CheckRevenueLimit(dec(tt.revenue))
			require.NoError(t, err)
			assert.Equal(t, tt.within, report.WithinLimit)
			assert.Equal(t, tt.risk, report.Risk)
		})
	}
}

func TestCheckRevenueLimit_Remaining(t *testing.T) {
	report, err := CheckRevenueLimit(dec("265000000"))
	require.NoError(t, err)
	assertDecimal(t, "800000", report.Remaining)
}

func TestCheckRevenueLimit_NegativeRevenue(t *testing.T) {
	_, err := CheckRevenueLimit(dec("-1"))
	assert.ErrorIs(t, err, ErrNegativeCost)
}
