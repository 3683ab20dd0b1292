package ecommerce

import "errors"

// WildberriesConfig holds configuration for the Wildberries content API
type WildberriesConfig struct {
	// APIBaseURL is the base URL for the content API
	APIBaseURL string
	// PageSize is the number of cards requested per page
	PageSize int
	// MaxPages caps pagination to keep a single pull bounded
	MaxPages int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// WildberriesProductionAPIURL is the production content API endpoint
	WildberriesProductionAPIURL = "https://content-api.wildberries.ru"

	defaultWBPageSize       = 1000
	defaultWBMaxPages       = 20
	defaultWBTimeoutSeconds = 30
)

// ErrWildberriesConfigPageSize indicates a page size outside the API's allowed range
var ErrWildberriesConfigPageSize = errors.New("wildberries: page size must be between 1 and 1000")

// NewWildberriesConfig creates a Wildberries configuration with defaults
func NewWildberriesConfig() *WildberriesConfig {
	return &WildberriesConfig{
		APIBaseURL:     WildberriesProductionAPIURL,
		PageSize:       defaultWBPageSize,
		MaxPages:       defaultWBMaxPages,
		TimeoutSeconds: defaultWBTimeoutSeconds,
	}
}

// Validate validates the configuration and fills in defaults
func (c *WildberriesConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = WildberriesProductionAPIURL
	}
	if c.PageSize == 0 {
		c.PageSize = defaultWBPageSize
	}
	if c.PageSize < 1 || c.PageSize > 1000 {
		return ErrWildberriesConfigPageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultWBMaxPages
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultWBTimeoutSeconds
	}
	return nil
}
