package audit

// Severity grades how badly a finding affects the listing
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// IsValid returns true if the severity is a known value
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// rank orders severities for sorting, highest first
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Dimension is the scoring dimension a finding counts against
type Dimension string

const (
	DimensionLegal    Dimension = "legal"
	DimensionDelivery Dimension = "delivery"
	DimensionSEO      Dimension = "seo"
	DimensionPrice    Dimension = "price"
)

// IsValid returns true if the dimension is a known value
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionLegal, DimensionDelivery, DimensionSEO, DimensionPrice:
		return true
	default:
		return false
	}
}

// String returns the string representation of Dimension
func (d Dimension) String() string {
	return string(d)
}

// Finding is a single risk discovered during an audit run
type Finding struct {
	// Kind is a stable machine-readable identifier for the check outcome
	Kind string `json:"kind"`
	// Dimension is the scoring dimension this finding penalizes
	Dimension Dimension `json:"dimension"`
	// Severity grades the impact
	Severity Severity `json:"severity"`
	// Description explains what was found
	Description string `json:"description"`
	// Recommendation tells the seller what to do about it
	Recommendation string `json:"recommendation,omitempty"`
	// Informational findings are reported but carry no score penalty,
	// e.g. a registry that could not be reached.
	Informational bool `json:"informational,omitempty"`
}
