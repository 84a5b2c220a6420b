package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fetches and decodes the upstream schedule feed.
type Client struct {
	url        string
	headers    map[string]string
	httpClient *http.Client
}

func NewClient(url string, headers map[string]string) *Client {
	return &Client{
		url:     url,
		headers: headers,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Fetch downloads the schedule and decodes it, tolerating the
// heterogeneous channel field shapes via ChannelField.
func (c *Client) Fetch(ctx context.Context) (Schedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schedule: unexpected status %d", resp.StatusCode)
	}

	var sched Schedule
	if err := json.NewDecoder(resp.Body).Decode(&sched); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	return sched, nil
}
