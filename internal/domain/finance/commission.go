package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CommissionRange is a published marketplace commission band for a category
type CommissionRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Midpoint returns the middle of the band. Used when the seller has not
// supplied an exact negotiated rate.
func (r CommissionRange) Midpoint() decimal.Decimal {
	return r.Min.Add(r.Max).Div(decimal.NewFromInt(2))
}

type commissionKey struct {
	marketplace string
	category    string
}

// CommissionTable resolves marketplace commission rates by category. The
// table carries a version so audit reports can record which rate revision
// they were computed with.
type CommissionTable struct {
	// Version identifies the rate revision
	Version string

	entries  map[commissionKey]CommissionRange
	defaults map[string]CommissionRange
}

// NewCommissionTable creates an empty table
func NewCommissionTable(version string) *CommissionTable {
	return &CommissionTable{
		Version:  version,
		entries:  make(map[commissionKey]CommissionRange),
		defaults: make(map[string]CommissionRange),
	}
}

// Set adds or replaces the band for a (marketplace, category) pair
func (t *CommissionTable) Set(marketplace, category string, r CommissionRange) {
	t.entries[commissionKey{normalize(marketplace), normalize(category)}] = r
}

// SetDefault sets the fallback band for a marketplace
func (t *CommissionTable) SetDefault(marketplace string, r CommissionRange) {
	t.defaults[normalize(marketplace)] = r
}

// Resolve returns the commission rate for a category. An exact category
// match returns the band midpoint; otherwise the marketplace default band
// midpoint; ErrUnknownCommission when neither exists.
func (t *CommissionTable) Resolve(marketplace, category string) (decimal.Decimal, error) {
	if r, ok := t.entries[commissionKey{normalize(marketplace), normalize(category)}]; ok {
		return r.Midpoint(), nil
	}
	if r, ok := t.defaults[normalize(marketplace)]; ok {
		return r.Midpoint(), nil
	}
	return decimal.Zero, ErrUnknownCommission
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rng(min, max float64) CommissionRange {
	return CommissionRange{
		Min: decimal.NewFromFloat(min),
		Max: decimal.NewFromFloat(max),
	}
}

// DefaultCommissionTable returns the built-in rate table with published
// category bands for the supported marketplaces.
func DefaultCommissionTable() *CommissionTable {
	t := NewCommissionTable("2026-01")

	t.SetDefault("wildberries", rng(0.13, 0.20))
	t.Set("wildberries", "одежда", rng(0.17, 0.25))
	t.Set("wildberries", "обувь", rng(0.15, 0.23))
	t.Set("wildberries", "электроника", rng(0.08, 0.12))
	t.Set("wildberries", "косметика", rng(0.15, 0.19))
	t.Set("wildberries", "товары для дома", rng(0.15, 0.19))

	t.SetDefault("ozon", rng(0.12, 0.18))
	t.Set("ozon", "одежда", rng(0.16, 0.22))
	t.Set("ozon", "обувь", rng(0.14, 0.20))
	t.Set("ozon", "электроника", rng(0.07, 0.11))
	t.Set("ozon", "косметика", rng(0.14, 0.18))
	t.Set("ozon", "товары для дома", rng(0.14, 0.18))

	return t
}
