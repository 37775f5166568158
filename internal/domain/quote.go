package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExecutionMode is the server-declared completion path for a quoted trade.
// Sync trades confirm directly on chain using the transaction signature;
// async trades are tracked through the order status endpoint.
type ExecutionMode string

const (
	ExecutionModeSync  ExecutionMode = "sync"
	ExecutionModeAsync ExecutionMode = "async"
)

// TradeIntent captures a single user action: buy AmountUSDC worth of the
// given outcome token. Intents are ephemeral and never persisted.
type TradeIntent struct {
	MarketID   string
	OutputMint string
	AmountUSDC decimal.Decimal
	Side       Side
}

// RouteHop is one venue hop of a quoted route. Informational only.
type RouteHop struct {
	Venue      string
	InputMint  string
	OutputMint string
}

// Quote is a priced, time-bounded offer produced by the quoting service for
// exactly one TradeIntent. RawTransaction is the signable payload; it is
// opaque to everything but the signer.
type Quote struct {
	RawTransaction       []byte
	LastValidBlockHeight uint64
	ExecutionMode        ExecutionMode
	InAmount             int64 // micro USDC spent
	OutAmount            int64 // outcome-token base units received
	PriceImpact          float64
	Route                []RouteHop
	OrderID              string // set iff ExecutionMode is async
}

// Validate enforces the mode/order-identity invariant: an async quote must
// carry an order ID and a sync quote must not.
func (q Quote) Validate() error {
	switch q.ExecutionMode {
	case ExecutionModeAsync:
		if q.OrderID == "" {
			return fmt.Errorf("async quote missing order id")
		}
	case ExecutionModeSync:
		if q.OrderID != "" {
			return fmt.Errorf("sync quote carries order id %q", q.OrderID)
		}
	default:
		return fmt.Errorf("unknown execution mode %q", q.ExecutionMode)
	}
	return nil
}
