// Package dflow is the REST client for the DFlow trade API: quoting priced
// routes into outcome tokens and tracking async order completion.
package dflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// DefaultSlippageBps is the default slippage tolerance. 100 bps is
// deliberately wide: the priced asset is a bounded probability, not an
// open-ended price.
const DefaultSlippageBps = 100

// Client is the REST client for the DFlow quote and order-status endpoints.
// It is stateless; every call is a single request with no retry.
type Client struct {
	baseURL    string
	usdcMint   string
	httpClient *http.Client
}

// NewClient creates a DFlow client.
//
// baseURL is the API root, e.g. "https://quote-api.dflow.net".
// usdcMint is the quote-currency mint used as the input side of every quote.
func NewClient(baseURL, usdcMint string) *Client {
	return &Client{
		baseURL:  baseURL,
		usdcMint: usdcMint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetQuote requests a priced route converting amount USDC into the given
// outcome token. The amount is validated before any network call: zero or
// negative amounts fail with domain.ErrInvalidAmount. Quote failures are
// surfaced immediately as *domain.QuoteError with the service's "msg" body
// field verbatim when parseable; the caller decides whether to re-request.
func (c *Client) GetQuote(ctx context.Context, outputMint string, amount decimal.Decimal, userPublicKey string, slippageBps int) (domain.Quote, error) {
	if amount.Sign() <= 0 {
		return domain.Quote{}, domain.ErrInvalidAmount
	}
	if slippageBps <= 0 {
		slippageBps = DefaultSlippageBps
	}

	params := url.Values{}
	params.Set("inputMint", c.usdcMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatInt(domain.ToMicroUSDC(amount), 10))
	params.Set("slippageBps", strconv.Itoa(slippageBps))
	params.Set("userPublicKey", userPublicKey)

	body, err := c.doGet(ctx, "/order?"+params.Encode())
	if err != nil {
		if apiErr, ok := err.(*apiError); ok {
			return domain.Quote{}, &domain.QuoteError{StatusCode: apiErr.statusCode, Message: apiErr.msg}
		}
		return domain.Quote{}, fmt.Errorf("dflow: get quote: %w", err)
	}

	var apiQuote APIQuote
	if err := json.Unmarshal(body, &apiQuote); err != nil {
		return domain.Quote{}, fmt.Errorf("dflow: decode quote: %w", err)
	}

	quote, err := apiQuote.ToDomainQuote()
	if err != nil {
		return domain.Quote{}, fmt.Errorf("dflow: invalid quote: %w", err)
	}
	return quote, nil
}

// GetOrderStatus fetches the current status of an async order.
func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	path := fmt.Sprintf("/status/%s", url.PathEscape(orderID))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.OrderStatus{}, fmt.Errorf("dflow: get order status %s: %w", orderID, err)
	}

	var apiStatus APIOrderStatus
	if err := json.Unmarshal(body, &apiStatus); err != nil {
		return domain.OrderStatus{}, fmt.Errorf("dflow: decode order status: %w", err)
	}

	return apiStatus.ToDomainOrderStatus(), nil
}

// apiError is a non-2xx response with the optional {msg} body decoded.
type apiError struct {
	statusCode int
	msg        string
}

func (e *apiError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("HTTP %d: %s", e.statusCode, e.msg)
	}
	return fmt.Sprintf("HTTP %d", e.statusCode)
}

// doGet performs a GET request against the API root and returns the response
// body, or *apiError for non-2xx responses.
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Msg string `json:"msg"`
		}
		_ = json.Unmarshal(body, &errBody)
		return nil, &apiError{statusCode: resp.StatusCode, msg: errBody.Msg}
	}

	return body, nil
}
