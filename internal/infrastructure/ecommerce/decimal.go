package ecommerce

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a marketplace money string into a decimal.
// Marketplaces are inconsistent about formatting, so spaces and comma
// decimal separators are tolerated. Returns zero for unparseable input.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
