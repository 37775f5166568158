package domain

import "time"

// TradeOutcome is the terminal result of one trade attempt.
type TradeOutcome string

const (
	TradeOutcomeSucceeded TradeOutcome = "succeeded"
	TradeOutcomeFailed    TradeOutcome = "failed"
)

// TradeRecord is the journal row written for every terminal trade attempt,
// successful or not. It feeds the activity history surface and the cold
// archive.
type TradeRecord struct {
	ID         string // uuid assigned per attempt
	Wallet     string
	MarketID   string
	OutputMint string
	Side       Side
	Mode       ExecutionMode
	InAmount   int64 // micro USDC
	OutAmount  int64 // outcome-token base units
	Signature  string
	OrderID    string
	Outcome    TradeOutcome
	Error      string
	CreatedAt  time.Time
}
