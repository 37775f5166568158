package catalog

import (
	"time"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// APIEvent is the wire shape of one catalog event.
type APIEvent struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	ImageURL string      `json:"imageUrl"`
	Markets  []APIMarket `json:"markets"`
}

// APIMarket is one binary market nested in an event. Prices are cents
// (0-100) for the YES outcome. Accounts maps each supported collateral
// mint to the pair of outcome-token mints minted against it.
type APIMarket struct {
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	ImageURL string                `json:"imageUrl"`
	Status   string                `json:"status"`
	BestBid  int                   `json:"bestBid"`
	BestAsk  int                   `json:"bestAsk"`
	Accounts map[string]APIAccount `json:"accounts"`
}

// APIAccount holds the outcome-token mints for one collateral token.
type APIAccount struct {
	YesMint string `json:"yesMint"`
	NoMint  string `json:"noMint"`
}

// ToDomainEvent converts the wire event and its markets, resolving outcome
// mints against the given collateral mint. Markets with no account record
// for that collateral keep empty mints and will never match a holding.
func (e APIEvent) ToDomainEvent(collateralMint string) domain.Event {
	event := domain.Event{
		ID:       e.ID,
		Title:    e.Title,
		ImageURL: e.ImageURL,
	}
	for _, m := range e.Markets {
		event.Markets = append(event.Markets, m.ToDomainMarket(e, collateralMint))
	}
	return event
}

// ToDomainMarket converts one wire market. Title and image fall back to the
// enclosing event's when the market does not carry its own.
func (m APIMarket) ToDomainMarket(event APIEvent, collateralMint string) domain.Market {
	market := domain.Market{
		ID:        m.ID,
		EventID:   event.ID,
		Title:     m.Title,
		ImageURL:  m.ImageURL,
		Status:    domain.MarketStatus(m.Status),
		YesBid:    m.BestBid,
		YesAsk:    m.BestAsk,
		UpdatedAt: time.Now().UTC(),
	}
	if market.Title == "" {
		market.Title = event.Title
	}
	if market.ImageURL == "" {
		market.ImageURL = event.ImageURL
	}
	if acct, ok := m.Accounts[collateralMint]; ok {
		market.YesMint = acct.YesMint
		market.NoMint = acct.NoMint
	}
	return market
}
