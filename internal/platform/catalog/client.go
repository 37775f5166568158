// Package catalog is the REST client for the market catalog API, which
// provides paginated event metadata with nested binary markets and their
// outcome-token mints.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the catalog REST client.
type Client struct {
	baseURL    string
	usdcMint   string
	httpClient *http.Client
}

// NewClient creates a catalog client. usdcMint selects which collateral's
// account records carry the outcome mints for markets quoted in more than
// one collateral token.
func NewClient(baseURL, usdcMint string) *Client {
	return &Client{
		baseURL:  baseURL,
		usdcMint: usdcMint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetEvents returns one page of events.
func (c *Client) GetEvents(ctx context.Context, limit, offset int) ([]APIEvent, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("catalog: get events: %w", err)
	}

	var events []APIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("catalog: decode events: %w", err)
	}
	return events, nil
}

// USDCMint returns the collateral mint this client resolves outcome mints
// against.
func (c *Client) USDCMint() string {
	return c.usdcMint
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
