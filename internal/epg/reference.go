package epg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client downloads the externally maintained reference identifier list.
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
			Timeout: 30 * time.Second,
		},
	}
}

// FetchReferenceList returns the raw lines of the reference id list.
// Callers are expected to tolerate an error by building an empty index.
func (c *Client) FetchReferenceList(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reference list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch reference list: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reference list: %w", err)
	}
	return strings.Split(string(body), "\n"), nil
}
