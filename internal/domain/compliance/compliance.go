package compliance

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Compliance Errors
// ---------------------------------------------------------------------------

var (
	ErrRegistryUnavailable = errors.New("compliance: registry temporarily unavailable")
	ErrRegistryBadResponse = errors.New("compliance: invalid registry response")
	ErrEmptyQuery          = errors.New("compliance: query must not be empty")
)

// ---------------------------------------------------------------------------
// CertificateStatus
// ---------------------------------------------------------------------------

// CertificateStatus is the normalized state of a conformity certificate or
// declaration after mapping the registry's raw status strings.
type CertificateStatus string

const (
	// CertificateValid indicates an active certificate
	CertificateValid CertificateStatus = "valid"
	// CertificateExpired indicates the certificate validity period has ended
	CertificateExpired CertificateStatus = "expired"
	// CertificateInvalid indicates a suspended, terminated or annulled certificate
	CertificateInvalid CertificateStatus = "invalid"
	// CertificateUnknown indicates the registry returned no usable status
	CertificateUnknown CertificateStatus = "unknown"
)

// IsValid returns true if the status is a known value
func (s CertificateStatus) IsValid() bool {
	switch s {
	case CertificateValid, CertificateExpired, CertificateInvalid, CertificateUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of CertificateStatus
func (s CertificateStatus) String() string {
	return string(s)
}

// CertificateRecord is a single certificate or declaration found in the
// accreditation registry.
type CertificateRecord struct {
	// Number is the registry document number
	Number string
	// Status is the normalized document status
	Status CertificateStatus
	// RawStatus is the status string exactly as the registry returned it
	RawStatus string
	// Holder is the certificate holder's name
	Holder string
	// ValidTo is the end of the validity period, if published
	ValidTo *time.Time
}

// MarkingResult is the outcome of a mandatory-marking registry check
type MarkingResult struct {
	// Required reports whether the product group is subject to marking
	Required bool
	// ProductGroup names the matched marking product group
	ProductGroup string
	// Registered reports whether the item is registered in the marking system
	Registered bool
}

// ---------------------------------------------------------------------------
// Registry Port Interfaces
// ---------------------------------------------------------------------------

// AccreditationRegistry is the port for the national accreditation registry
// holding conformity certificates and declarations.
type AccreditationRegistry interface {
	// FindCertificates searches the registry by product name, barcode or
	// declarant and returns the matching documents.
	FindCertificates(ctx context.Context, query string) ([]CertificateRecord, error)
}

// MarkingRegistry is the port for the mandatory product marking system
type MarkingRegistry interface {
	// CheckItem checks whether a barcode is registered in the marking system
	CheckItem(ctx context.Context, barcode string) (*MarkingResult, error)
}

// ---------------------------------------------------------------------------
// ProductGroupTable
// ---------------------------------------------------------------------------

// ProductGroupTable maps product categories to mandatory-marking product
// groups by keyword. The table carries a version so audits can record which
// revision of the marking rules they were scored against.
type ProductGroupTable struct {
	// Version identifies the rule revision
	Version string

	groups []productGroup
}

type productGroup struct {
	name     string
	keywords []string
}

// DefaultProductGroupTable returns the built-in marking product group table
func DefaultProductGroupTable() *ProductGroupTable {
	return &ProductGroupTable{
		Version: "2026-01",
		groups: []productGroup{
			{name: "Обувь", keywords: []string{"обувь", "ботинки", "кроссовки", "туфли", "сапоги", "кеды", "сандалии"}},
			{name: "Одежда", keywords: []string{"одежда", "куртка", "пальто", "блузка", "рубашка", "платье", "брюки", "джинсы", "футболка", "свитер", "худи"}},
			{name: "Текстиль", keywords: []string{"постельное", "белье", "полотенце", "скатерть", "плед"}},
			{name: "Парфюмерия", keywords: []string{"духи", "парфюм", "туалетная вода", "одеколон"}},
			{name: "Фотоаппараты", keywords: []string{"фотоаппарат", "фотокамера", "вспышка"}},
			{name: "Шины", keywords: []string{"шина", "покрышка", "автошина"}},
			{name: "Молочная продукция", keywords: []string{"молоко", "сыр", "творог", "йогурт", "кефир", "сливки", "мороженое"}},
			{name: "Вода", keywords: []string{"вода питьевая", "вода минеральная"}},
			{name: "БАД", keywords: []string{"бад", "биологически активная добавка", "витамины"}},
			{name: "Антисептики", keywords: []string{"антисептик", "дезинфицирующее"}},
		},
	}
}

// MatchGroup returns the marking product group whose keywords match the given
// category or product name, and whether any group matched. Matching is
// case-insensitive substring matching, first group wins.
func (t *ProductGroupTable) MatchGroup(text string) (string, bool) {
	needle := strings.ToLower(text)
	if needle == "" {
		return "", false
	}
	for _, g := range t.groups {
		for _, kw := range g.keywords {
			if strings.Contains(needle, kw) {
				return g.name, true
			}
		}
	}
	return "", false
}

// MapRegistryStatus normalizes a raw accreditation registry status string
func MapRegistryStatus(raw string) CertificateStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ACTIVE", "ДЕЙСТВУЕТ":
		return CertificateValid
	case "EXPIRED", "ИСТЕК", "ИСТЁК":
		return CertificateExpired
	case "SUSPENDED", "TERMINATED", "ANNULLED",
		"ПРИОСТАНОВЛЕН", "ПРЕКРАЩЕН", "ПРЕКРАЩЁН", "АННУЛИРОВАН":
		return CertificateInvalid
	default:
		return CertificateUnknown
	}
}
