package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusActive  MarketStatus = "active"
	MarketStatusClosed  MarketStatus = "closed"
	MarketStatusSettled MarketStatus = "settled"
)

// Side identifies one of the two outcomes of a binary market.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Opposite returns the other outcome.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// Market represents one binary market within a catalog event. Prices are
// quoted in cents (0-100) for the YES outcome; the NO price is the
// complement.
type Market struct {
	ID        string
	EventID   string
	Title     string
	ImageURL  string
	Status    MarketStatus
	YesMint   string // outcome-token mint for the YES side
	NoMint    string // outcome-token mint for the NO side
	YesBid    int    // best bid for YES, cents
	YesAsk    int    // best ask for YES, cents
	UpdatedAt time.Time
}

// MintFor returns the outcome-token mint for the given side.
func (m Market) MintFor(side Side) string {
	if side == SideYes {
		return m.YesMint
	}
	return m.NoMint
}

// SideForMint reports which outcome the given mint represents. The second
// return value is false when the mint belongs to neither side.
func (m Market) SideForMint(mint string) (Side, bool) {
	switch mint {
	case "":
		return "", false
	case m.YesMint:
		return SideYes, true
	case m.NoMint:
		return SideNo, true
	}
	return "", false
}

// YesPrice returns the market-implied YES probability in [0,1], the midpoint
// of the bid/ask spread.
func (m Market) YesPrice() float64 {
	return float64(m.YesBid+m.YesAsk) / 200
}

// MarkPrice returns the implied price for the given side in [0,1].
func (m Market) MarkPrice(side Side) float64 {
	yes := m.YesPrice()
	if side == SideYes {
		return yes
	}
	return 1 - yes
}

// Event groups related binary markets under one catalog entry.
type Event struct {
	ID       string
	Title    string
	ImageURL string
	Markets  []Market
}
