package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ecom-auditor/backend/internal/domain/compliance"
)

// crptCheckPath is the item check endpoint
const crptCheckPath = "/product/check"

// CRPTConfig holds configuration for the marking system client
type CRPTConfig struct {
	// APIBaseURL is the base URL for the marking system API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// RetryAttempts is how many times a failed request is retried
	RetryAttempts int
}

const (
	// CRPTProductionAPIURL is the production marking system endpoint
	CRPTProductionAPIURL = "https://markirovka.crpt.ru/api/v3"

	defaultCRPTTimeoutSeconds = 15
)

// NewCRPTConfig creates a CRPT configuration with defaults
func NewCRPTConfig() *CRPTConfig {
	return &CRPTConfig{
		APIBaseURL:     CRPTProductionAPIURL,
		TimeoutSeconds: defaultCRPTTimeoutSeconds,
		RetryAttempts:  defaultRegistryRetries,
	}
}

// Validate validates the configuration and fills in defaults
func (c *CRPTConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = CRPTProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultCRPTTimeoutSeconds
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = defaultRegistryRetries
	}
	return nil
}

type crptCheckResponse struct {
	Registered   bool   `json:"registered"`
	ProductGroup string `json:"productGroup"`
}

// CRPTClient implements MarkingRegistry against the mandatory marking
// system's public check API.
type CRPTClient struct {
	config     *CRPTConfig
	httpClient *http.Client
}

// NewCRPTClient creates a new marking system client with the given configuration
func NewCRPTClient(config *CRPTConfig) (*CRPTClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &CRPTClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// CheckItem checks whether a barcode is registered in the marking system
func (c *CRPTClient) CheckItem(ctx context.Context, barcode string) (*compliance.MarkingResult, error) {
	if barcode == "" {
		return nil, compliance.ErrEmptyQuery
	}

	endpoint := c.config.APIBaseURL + crptCheckPath + "?barcode=" + url.QueryEscape(barcode)

	body, err := doWithRetry(ctx, c.httpClient, c.config.RetryAttempts, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, err
	}

	var resp crptCheckResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", compliance.ErrRegistryBadResponse, err)
	}

	return &compliance.MarkingResult{
		Required:     resp.ProductGroup != "",
		ProductGroup: resp.ProductGroup,
		Registered:   resp.Registered,
	}, nil
}

// Ensure CRPTClient implements MarkingRegistry interface
var _ compliance.MarkingRegistry = (*CRPTClient)(nil)
