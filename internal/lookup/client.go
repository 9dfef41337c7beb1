// Package lookup talks to the external merchant directory: given a
// (franchiseId, outletId) pair it returns the display names for both.
// The service is slow and rate-limited, so callers are expected to
// deduplicate keys before reaching it (see internal/resolver).
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticket-admin-service/api/dto"
	"ticket-admin-service/internal/config"
	"ticket-admin-service/internal/metrics"
)

// Client resolves one (franchiseId, outletId) pair to display names.
//
// A nil-error result with Found=false means the directory answered and the
// pair is unknown; a non-nil error means the directory could not answer
// (transport failure, timeout, bad payload). Callers that want to avoid
// persisting negative results can rely on this distinction.
type Client interface {
	LookupNames(ctx context.Context, franchiseID, outletID string) (*dto.ResolutionResult, error)
}

type httpClient struct {
	client *http.Client
	cfg    config.Directory
}

// NewHTTPClient builds a directory client with pooled connections.
func NewHTTPClient(cfg config.Directory) Client {
	return &httpClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cfg: cfg,
	}
}

type lookupRequest struct {
	FranchiseID string `json:"franchiseId"`
	OutletID    string `json:"outletId"`
}

type lookupResponse struct {
	FranchiseName string `json:"franchiseName"`
	OutletName    string `json:"outletName"`
	Found         bool   `json:"found"`
}

func (c *httpClient) LookupNames(ctx context.Context, franchiseID, outletID string) (res *dto.ResolutionResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDirectoryRequest(err, time.Since(start).Seconds())
	}()

	body, err := json.Marshal(lookupRequest{FranchiseID: franchiseID, OutletID: outletID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	// Unknown pair: an answer, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return &dto.ResolutionResult{Found: false}, nil
	}

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad response (%d): %s", resp.StatusCode, string(respBody))
	}

	var decoded lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &dto.ResolutionResult{
		FranchiseName: decoded.FranchiseName,
		OutletName:    decoded.OutletName,
		Found:         decoded.Found,
	}, nil
}
