// Package collectors implements the per-source metric collectors. Every
// collector follows the same contract: Collect never returns an error; any
// internal failure is converted into a failure-status bundle so a single
// broken source can never fail a scoring request.
package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Default HTTP behavior shared by all collectors.
const (
	userAgent        = "brandpulse/1.0"
	maxResponseBytes = 4 << 20
)

// getJSON performs a GET with the supplied headers and decodes the JSON
// response into out. Non-2xx statuses are returned as errors.
func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out)
}

// query builds a URL with encoded query parameters.
func query(base, path string, params url.Values) string {
	return base + path + "?" + params.Encode()
}
