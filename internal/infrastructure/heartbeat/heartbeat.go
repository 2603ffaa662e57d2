package heartbeat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client reports liveness to an external heartbeat application. The
// contract is fire-and-forget: callers log failures but do not retry.
type Client struct {
	baseURL string
	http    *http.Client
}

// New configures the client against the heartbeat application URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Initialise registers the application id with its expected update
// interval. Called once at startup.
func (c *Client) Initialise(ctx context.Context, id string, expectedInterval time.Duration) error {
	body, err := json.Marshal(map[string]interface{}{
		"expected_period_seconds": int(expectedInterval.Seconds()),
	})
	if err != nil {
		return err
	}

	return c.post(ctx, fmt.Sprintf("%s/applications/%s", c.baseURL, id), body)
}

// Update records one liveness tick for the application id.
func (c *Client) Update(ctx context.Context, id string) error {
	return c.post(ctx, fmt.Sprintf("%s/update/%s", c.baseURL, id), nil)
}

func (c *Client) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("heartbeat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("heartbeat returned %s for %s", resp.Status, url)
	}
	return nil
}
