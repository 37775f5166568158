package chain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// DefaultConfirmPollInterval is the status poll cadence on the RPC
// confirmation path.
const DefaultConfirmPollInterval = 500 * time.Millisecond

// Confirmer tracks a submitted transaction until the ledger confirms or
// rejects it. When a websocket endpoint is configured it subscribes for a
// push notification first and falls back to RPC status polling on any
// websocket failure.
type Confirmer struct {
	rpc          *HTTPClient
	ws           *WSClient // nil when no ws endpoint configured
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewConfirmer creates a Confirmer. ws may be nil, in which case only the
// RPC polling path is used.
func NewConfirmer(rpc *HTTPClient, ws *WSClient, logger *slog.Logger) *Confirmer {
	return &Confirmer{
		rpc:          rpc,
		ws:           ws,
		pollInterval: DefaultConfirmPollInterval,
		logger:       logger.With(slog.String("component", "confirmer")),
	}
}

// ConfirmTransaction blocks until the transaction with the given signature
// is confirmed, fails, or can no longer land (the ledger's block height has
// passed lastValidBlockHeight). A recorded error payload is
// domain.ErrTransactionFailed; expiry is domain.ErrTransactionExpired.
func (c *Confirmer) ConfirmTransaction(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	if c.ws != nil {
		err, ok := c.ws.AwaitSignature(ctx, signature)
		if ok {
			return err
		}
		c.logger.Warn("websocket confirmation unavailable, falling back to polling",
			slog.String("signature", signature),
		)
	}
	return c.pollStatus(ctx, signature, lastValidBlockHeight)
}

func (c *Confirmer) pollStatus(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	for {
		statuses, err := c.rpc.GetSignatureStatuses(ctx, []string{signature})
		if err != nil {
			return err
		}

		if len(statuses) > 0 && statuses[0] != nil {
			status := statuses[0]
			if status.Failed() {
				return fmt.Errorf("%w: %s", domain.ErrTransactionFailed, string(status.Err))
			}
			if status.Confirmed() {
				return nil
			}
		} else if lastValidBlockHeight > 0 {
			// Unknown signature: check whether it can still land.
			height, err := c.rpc.GetBlockHeight(ctx)
			if err != nil {
				return err
			}
			if height > lastValidBlockHeight {
				return fmt.Errorf("%w: block height %d past %d", domain.ErrTransactionExpired, height, lastValidBlockHeight)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}
