package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

const usdc = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestGetEventsPassesPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "200", r.URL.Query().Get("offset"))
		json.NewEncoder(w).Encode([]APIEvent{{ID: "ev-1", Title: "Election"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, usdc)
	events, err := client.GetEvents(context.Background(), 100, 200)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
}

func TestToDomainEventResolvesCollateralAccounts(t *testing.T) {
	event := APIEvent{
		ID:       "ev-1",
		Title:    "Will it rain tomorrow?",
		ImageURL: "https://img/ev-1.png",
		Markets: []APIMarket{
			{
				ID:      "mkt-1",
				Status:  "active",
				BestBid: 60,
				BestAsk: 64,
				Accounts: map[string]APIAccount{
					usdc:    {YesMint: "yesMint1", NoMint: "noMint1"},
					"other": {YesMint: "yesMintX", NoMint: "noMintX"},
				},
			},
			{
				ID:       "mkt-2",
				Status:   "active",
				Accounts: map[string]APIAccount{"other": {YesMint: "y2", NoMint: "n2"}},
			},
		},
	}

	dom := event.ToDomainEvent(usdc)
	require.Len(t, dom.Markets, 2)

	m1 := dom.Markets[0]
	assert.Equal(t, "yesMint1", m1.YesMint)
	assert.Equal(t, "noMint1", m1.NoMint)
	assert.Equal(t, domain.MarketStatusActive, m1.Status)
	assert.Equal(t, "Will it rain tomorrow?", m1.Title, "falls back to event title")
	assert.Equal(t, "https://img/ev-1.png", m1.ImageURL)
	assert.Equal(t, "ev-1", m1.EventID)

	// No record for our collateral: mints stay empty, market can't match.
	m2 := dom.Markets[1]
	assert.Empty(t, m2.YesMint)
	assert.Empty(t, m2.NoMint)
}
