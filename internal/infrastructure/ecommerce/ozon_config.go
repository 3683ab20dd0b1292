package ecommerce

import "errors"

// OzonConfig holds configuration for the Ozon seller API
type OzonConfig struct {
	// APIBaseURL is the base URL for the seller API
	APIBaseURL string
	// PageSize is the number of products requested per page
	PageSize int
	// MaxPages caps pagination to keep a single pull bounded
	MaxPages int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// OzonProductionAPIURL is the production seller API endpoint
	OzonProductionAPIURL = "https://api-seller.ozon.ru"

	defaultOzonPageSize       = 1000
	defaultOzonMaxPages       = 20
	defaultOzonTimeoutSeconds = 30
)

// ErrOzonConfigPageSize indicates a page size outside the API's allowed range
var ErrOzonConfigPageSize = errors.New("ozon: page size must be between 1 and 1000")

// NewOzonConfig creates an Ozon configuration with defaults
func NewOzonConfig() *OzonConfig {
	return &OzonConfig{
		APIBaseURL:     OzonProductionAPIURL,
		PageSize:       defaultOzonPageSize,
		MaxPages:       defaultOzonMaxPages,
		TimeoutSeconds: defaultOzonTimeoutSeconds,
	}
}

// Validate validates the configuration and fills in defaults
func (c *OzonConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = OzonProductionAPIURL
	}
	if c.PageSize == 0 {
		c.PageSize = defaultOzonPageSize
	}
	if c.PageSize < 1 || c.PageSize > 1000 {
		return ErrOzonConfigPageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultOzonMaxPages
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultOzonTimeoutSeconds
	}
	return nil
}
