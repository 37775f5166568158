package domain

import "github.com/shopspring/decimal"

// Holding is a raw wallet token balance, externally observed and read-only
// to this core.
type Holding struct {
	Mint   string
	Amount decimal.Decimal // ui units (already adjusted for token decimals)
}

// Position is the join of a Holding with a known market's outcome-token
// metadata. Positions are recomputed fully on each refresh and never
// incrementally mutated.
type Position struct {
	MarketID    string
	MarketTitle string
	Side        Side
	Shares      decimal.Decimal
	MarkPrice   float64 // implied price of the held side, [0,1]
	Value       float64 // Shares * MarkPrice, USDC
	ImageURL    string
	Mint        string

	// CostBasis and RealizedPnL are always zero: no cost-basis source
	// exists in the upstream data. Kept in the shape for the consumers
	// that render them.
	CostBasis   float64
	RealizedPnL float64
}
