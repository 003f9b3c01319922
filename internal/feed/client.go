package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/impactlink/pulse/pkg/models"
)

// Client fetches feed pages from the platform API.
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{},
	}
}

// FetchPage requests one page of feed items. The cursor is opaque and
// round-tripped from the previous page's response.
func (c *Client) FetchPage(ctx context.Context, cursor string) (Page, error) {
	u := fmt.Sprintf("%s/feed", c.baseURL)
	if cursor != "" {
		u += "?cursor=" + url.QueryEscape(cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("sending feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Page{}, fmt.Errorf("feed API error (status %d): %s", resp.StatusCode, string(body))
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page{}, fmt.Errorf("decoding feed page: %w", err)
	}

	// Unknown types from newer servers normalize here, not downstream.
	for i := range page.Items {
		page.Items[i].Type = models.ParseContentType(string(page.Items[i].Type))
	}
	return page, nil
}
