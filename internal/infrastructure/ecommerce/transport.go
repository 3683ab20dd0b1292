package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ecom-auditor/backend/internal/domain/marketplace"
)

// transportRetries is how many extra attempts a transient marketplace API
// failure gets before the pull gives up
const transportRetries = 1

// postJSONWithRetry sends a JSON POST to a marketplace API, retrying
// transport errors and 5xx responses. Credential rejection (HTTP 401/403)
// is reported via the bool and is never retried, rate limiting (HTTP 429)
// fails immediately. The request is rebuilt per attempt because bodies are
// single-use readers.
func postJSONWithRetry(ctx context.Context, client *http.Client, url string, payload any, setHeaders func(*http.Request)) ([]byte, bool, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to encode request: %v", marketplace.ErrProviderRequestFailed, err)
	}

	var lastErr error
	for attempt := 0; attempt <= transportRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
		if err != nil {
			return nil, false, fmt.Errorf("%w: failed to create request: %v", marketplace.ErrProviderRequestFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		setHeaders(req)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", marketplace.ErrProviderUnavailable, err)
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			return nil, true, nil
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, false, marketplace.ErrProviderRateLimited
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", marketplace.ErrProviderUnavailable, readErr)
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%w: HTTP %d", marketplace.ErrProviderUnavailable, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, false, fmt.Errorf("%w: HTTP %d", marketplace.ErrProviderRequestFailed, resp.StatusCode)
		}
		return body, false, nil
	}
	return nil, false, lastErr
}

// authFailedCatalog is the result of a pull the marketplace refused to
// authorize. Partially fetched pages are discarded so callers never act on
// an incomplete catalog.
func authFailedCatalog() *marketplace.CatalogResult {
	return &marketplace.CatalogResult{
		Listings:   make([]marketplace.CatalogListing, 0),
		AuthFailed: true,
	}
}
