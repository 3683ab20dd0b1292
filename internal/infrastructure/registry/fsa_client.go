package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ecom-auditor/backend/internal/domain/compliance"
)

// maxResponseSize is the maximum allowed response size from a registry API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// fsaSearchPath is the certificate search endpoint
const fsaSearchPath = "/certificates/search"

// FSAConfig holds configuration for the accreditation registry client
type FSAConfig struct {
	// APIBaseURL is the base URL for the public registry API
	APIBaseURL string
	// SearchLimit is the maximum number of documents requested per search
	SearchLimit int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// RetryAttempts is how many times a failed request is retried
	RetryAttempts int
}

const (
	// FSAProductionAPIURL is the production registry endpoint
	FSAProductionAPIURL = "https://pub.fsa.gov.ru/api/v1"

	defaultFSASearchLimit    = 20
	defaultFSATimeoutSeconds = 15
	defaultRegistryRetries   = 1
)

// NewFSAConfig creates an FSA configuration with defaults
func NewFSAConfig() *FSAConfig {
	return &FSAConfig{
		APIBaseURL:     FSAProductionAPIURL,
		SearchLimit:    defaultFSASearchLimit,
		TimeoutSeconds: defaultFSATimeoutSeconds,
		RetryAttempts:  defaultRegistryRetries,
	}
}

// Validate validates the configuration and fills in defaults
func (c *FSAConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = FSAProductionAPIURL
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = defaultFSASearchLimit
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultFSATimeoutSeconds
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = defaultRegistryRetries
	}
	return nil
}

type fsaSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type fsaSearchResponse struct {
	Items []fsaCertificate `json:"items"`
}

type fsaCertificate struct {
	Number  string `json:"number"`
	Status  string `json:"status"`
	Holder  string `json:"holder"`
	ValidTo string `json:"validTo"`
}

// FSAClient implements AccreditationRegistry against the public
// accreditation registry API.
type FSAClient struct {
	config     *FSAConfig
	httpClient *http.Client
}

// NewFSAClient creates a new registry client with the given configuration
func NewFSAClient(config *FSAConfig) (*FSAClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &FSAClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// FindCertificates searches the registry by product name, barcode or declarant
func (c *FSAClient) FindCertificates(ctx context.Context, query string) ([]compliance.CertificateRecord, error) {
	if query == "" {
		return nil, compliance.ErrEmptyQuery
	}

	payload, err := json.Marshal(fsaSearchRequest{Query: query, Limit: c.config.SearchLimit})
	if err != nil {
		return nil, fmt.Errorf("fsa: failed to encode request: %w", err)
	}

	body, err := doWithRetry(ctx, c.httpClient, c.config.RetryAttempts, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIBaseURL+fsaSearchPath, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp fsaSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", compliance.ErrRegistryBadResponse, err)
	}

	records := make([]compliance.CertificateRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		record := compliance.CertificateRecord{
			Number:    item.Number,
			Status:    compliance.MapRegistryStatus(item.Status),
			RawStatus: item.Status,
			Holder:    item.Holder,
		}
		if item.ValidTo != "" {
			if ts, parseErr := time.Parse("2006-01-02", item.ValidTo); parseErr == nil {
				record.ValidTo = &ts
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// doWithRetry performs a request, retrying transport errors and 5xx
// responses. The request is rebuilt per attempt because bodies are
// single-use readers.
func doWithRetry(ctx context.Context, client *http.Client, retries int, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("registry: failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", compliance.ErrRegistryUnavailable, err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", compliance.ErrRegistryUnavailable, readErr)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%w: HTTP %d", compliance.ErrRegistryUnavailable, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%w: HTTP %d", compliance.ErrRegistryBadResponse, resp.StatusCode)
		}
		return body, nil
	}
	return nil, lastErr
}

// Ensure FSAClient implements AccreditationRegistry interface
var _ compliance.AccreditationRegistry = (*FSAClient)(nil)
