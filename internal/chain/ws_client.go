package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// DefaultAwaitTimeout bounds how long a signature subscription is held open
// before the caller falls back to RPC polling.
const DefaultAwaitTimeout = 60 * time.Second

// WSClient subscribes to signature confirmations over the ledger's
// websocket endpoint. Each AwaitSignature call opens its own short-lived
// connection; confirmations are rare enough that connection reuse is not
// worth the reconnect machinery.
type WSClient struct {
	endpoint     string
	awaitTimeout time.Duration
	logger       *slog.Logger
}

// NewWSClient creates a websocket confirmation client.
func NewWSClient(endpoint string, logger *slog.Logger) *WSClient {
	return &WSClient{
		endpoint:     endpoint,
		awaitTimeout: DefaultAwaitTimeout,
		logger:       logger.With(slog.String("component", "chain_ws")),
	}
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type wsMessage struct {
	ID     uint64          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Method string          `json:"method,omitempty"`
	Params *struct {
		Subscription int64 `json:"subscription"`
		Result       struct {
			Value struct {
				Err json.RawMessage `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params,omitempty"`
	Error *rpcError `json:"error,omitempty"`
}

// AwaitSignature subscribes to the signature and blocks until the ledger
// pushes its confirmation. The second return value is false when the
// websocket path failed and the caller should fall back to RPC polling; it
// is true when a definitive answer was received (err nil for confirmed,
// domain.ErrTransactionFailed for a recorded error payload).
func (c *WSClient) AwaitSignature(ctx context.Context, signature string) (error, bool) {
	deadline := time.Now().Add(c.awaitTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		c.logger.Debug("websocket dial failed", slog.String("error", err.Error()))
		return nil, false
	}
	defer conn.Close()

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]string{"commitment": "confirmed"},
		},
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(req); err != nil {
		c.logger.Debug("websocket subscribe failed", slog.String("error", err.Error()))
		return nil, false
	}

	for {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.logger.Debug("websocket read failed", slog.String("error", err.Error()))
			return nil, false
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Error != nil {
			c.logger.Debug("websocket subscription rejected", slog.String("error", msg.Error.Error()))
			return nil, false
		}
		if msg.Method != "signatureNotification" || msg.Params == nil {
			// Subscription ack or unrelated frame.
			continue
		}

		errPayload := msg.Params.Result.Value.Err
		if len(errPayload) > 0 && string(errPayload) != "null" {
			return fmt.Errorf("%w: %s", domain.ErrTransactionFailed, string(errPayload)), true
		}
		return nil, true
	}
}
