package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient is a JSON-RPC 2.0 client for the ledger's HTTP endpoint with
// bounded retry and exponential backoff on transport failures.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets the maximum retry attempts per call.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a ledger RPC client for the given endpoint.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest is a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
// RPC-level errors (the server answered with an error object) are not
// retried; only transport failures are.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}
		if rpcResp.Error != nil {
			return rpcResp.Error
		}
		if result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result for %s: %w", method, err)
			}
		}
		return nil
	}

	return fmt.Errorf("%s after %d attempts: %w", method, c.maxRetries+1, lastErr)
}

// TokenHoldings returns all token balances the owner holds under the given
// token program, in ui units.
func (c *HTTPClient) TokenHoldings(ctx context.Context, owner, programID string) ([]domain.Holding, error) {
	var result tokenAccountsResult
	err := c.call(ctx, "getTokenAccountsByOwner", []interface{}{
		owner,
		map[string]string{"programId": programID},
		map[string]string{"encoding": "jsonParsed"},
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("chain: token holdings for %s: %w", owner, err)
	}

	holdings := make([]domain.Holding, 0, len(result.Value))
	for _, entry := range result.Value {
		info := entry.Account.Data.Parsed.Info
		amount, err := decimal.NewFromString(info.TokenAmount.UIAmountString)
		if err != nil {
			// Skip malformed entries rather than failing the whole fetch.
			continue
		}
		holdings = append(holdings, domain.Holding{
			Mint:   info.Mint,
			Amount: amount,
		})
	}
	return holdings, nil
}

// TokenBalance returns the owner's total ui-unit balance for one mint,
// summed across accounts. A wallet with no account for the mint has a zero
// balance; that is not an error.
func (c *HTTPClient) TokenBalance(ctx context.Context, owner, mint string) (decimal.Decimal, error) {
	var result tokenAccountsResult
	err := c.call(ctx, "getTokenAccountsByOwner", []interface{}{
		owner,
		map[string]string{"mint": mint},
		map[string]string{"encoding": "jsonParsed"},
	}, &result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("chain: token balance for %s: %w", owner, err)
	}

	total := decimal.Zero
	for _, entry := range result.Value {
		amount, err := decimal.NewFromString(entry.Account.Data.Parsed.Info.TokenAmount.UIAmountString)
		if err != nil {
			continue
		}
		total = total.Add(amount)
	}
	return total, nil
}

// GetBlockHeight returns the current block height at confirmed commitment.
func (c *HTTPClient) GetBlockHeight(ctx context.Context) (uint64, error) {
	var height uint64
	err := c.call(ctx, "getBlockHeight", []interface{}{
		map[string]string{"commitment": "confirmed"},
	}, &height)
	if err != nil {
		return 0, fmt.Errorf("chain: block height: %w", err)
	}
	return height, nil
}

// GetSignatureStatuses returns the status of each signature, nil for
// signatures the ledger does not know yet.
func (c *HTTPClient) GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error) {
	var result struct {
		Value []*SignatureStatus `json:"value"`
	}
	err := c.call(ctx, "getSignatureStatuses", []interface{}{
		signatures,
		map[string]bool{"searchTransactionHistory": false},
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("chain: signature statuses: %w", err)
	}
	return result.Value, nil
}

// SendTransaction submits a fully signed transaction and returns its
// signature.
func (c *HTTPClient) SendTransaction(ctx context.Context, signedTx []byte) (string, error) {
	var signature string
	err := c.call(ctx, "sendTransaction", []interface{}{
		base64.StdEncoding.EncodeToString(signedTx),
		map[string]interface{}{"encoding": "base64", "skipPreflight": false},
	}, &signature)
	if err != nil {
		return "", fmt.Errorf("chain: send transaction: %w", err)
	}
	return signature, nil
}
