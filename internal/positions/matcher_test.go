package positions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlenwiebe/predictbot/internal/chain"
	"github.com/arlenwiebe/predictbot/internal/domain"
	"github.com/arlenwiebe/predictbot/internal/platform/catalog"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type fakeHoldings struct {
	byProgram map[string][]domain.Holding
	errs      map[string]error
}

func (f *fakeHoldings) TokenHoldings(_ context.Context, _, programID string) ([]domain.Holding, error) {
	if err := f.errs[programID]; err != nil {
		return nil, err
	}
	return f.byProgram[programID], nil
}

type fakeCatalog struct {
	pages [][]catalog.APIEvent
	calls int
}

func (f *fakeCatalog) GetEvents(_ context.Context, limit, offset int) ([]catalog.APIEvent, error) {
	f.calls++
	page := offset / limit
	if page >= len(f.pages) {
		return nil, nil
	}
	return f.pages[page], nil
}

func (f *fakeCatalog) USDCMint() string { return usdcMint }

type mapCache struct {
	byMint map[string]domain.Market
}

func (c *mapCache) Set(_ context.Context, _ domain.Market) error        { return nil }
func (c *mapCache) SetBatch(_ context.Context, _ []domain.Market) error { return nil }
func (c *mapCache) Get(_ context.Context, _ string) (domain.Market, error) {
	return domain.Market{}, domain.ErrNotFound
}
func (c *mapCache) GetByMint(_ context.Context, mint string) (domain.Market, error) {
	if m, ok := c.byMint[mint]; ok {
		return m, nil
	}
	return domain.Market{}, domain.ErrNotFound
}
func (c *mapCache) Invalidate(_ context.Context, _ string) error { return nil }

func eventPage(markets ...catalog.APIMarket) []catalog.APIEvent {
	return []catalog.APIEvent{{
		ID:      "evt-1",
		Title:   "Will it rain tomorrow",
		Markets: markets,
	}}
}

func apiMarket(id, yesMint, noMint string, bid, ask int) catalog.APIMarket {
	return catalog.APIMarket{
		ID:      id,
		Title:   "Will it rain tomorrow",
		Status:  "active",
		BestBid: bid,
		BestAsk: ask,
		Accounts: map[string]catalog.APIAccount{
			usdcMint: {YesMint: yesMint, NoMint: noMint},
		},
	}
}

func holding(mint, amount string) domain.Holding {
	return domain.Holding{Mint: mint, Amount: decimal.RequireFromString(amount)}
}

func TestPositionsJoinsHoldingsToMarkets(t *testing.T) {
	holdings := &fakeHoldings{byProgram: map[string][]domain.Holding{
		chain.TokenProgramID:     {holding("yes-1", "10")},
		chain.Token2022ProgramID: {holding("no-1", "4")},
	}}
	cat := &fakeCatalog{pages: [][]catalog.APIEvent{
		eventPage(apiMarket("mkt-1", "yes-1", "no-1", 60, 64)),
	}}

	m := NewMatcher(holdings, cat, Config{}, testLogger)
	got, err := m.Positions(context.Background(), "owner")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// legacy program holdings come first
	assert.Equal(t, "mkt-1", got[0].MarketID)
	assert.Equal(t, domain.SideYes, got[0].Side)
	assert.InDelta(t, 0.62, got[0].MarkPrice, 1e-9)
	assert.InDelta(t, 6.2, got[0].Value, 1e-9)

	assert.Equal(t, domain.SideNo, got[1].Side)
	assert.InDelta(t, 0.38, got[1].MarkPrice, 1e-9)
	assert.True(t, got[1].Shares.Equal(decimal.RequireFromString("4")))

	// pnl fields stay zeroed
	assert.Zero(t, got[0].CostBasis)
	assert.Zero(t, got[0].RealizedPnL)
}

func TestPositionsExcludesUSDCAndEmptyBalances(t *testing.T) {
	holdings := &fakeHoldings{byProgram: map[string][]domain.Holding{
		chain.TokenProgramID: {
			holding(usdcMint, "120"),
			holding("yes-1", "0"),
			holding("yes-2", "3"),
		},
	}}
	cat := &fakeCatalog{pages: [][]catalog.APIEvent{
		eventPage(apiMarket("mkt-2", "yes-2", "no-2", 50, 50)),
	}}

	m := NewMatcher(holdings, cat, Config{}, testLogger)
	got, err := m.Positions(context.Background(), "owner")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "yes-2", got[0].Mint)
}

func TestPositionsExtendedProgramFailureNonFatal(t *testing.T) {
	holdings := &fakeHoldings{
		byProgram: map[string][]domain.Holding{
			chain.TokenProgramID: {holding("yes-1", "2")},
		},
		errs: map[string]error{
			chain.Token2022ProgramID: errors.New("unsupported"),
		},
	}
	cat := &fakeCatalog{pages: [][]catalog.APIEvent{
		eventPage(apiMarket("mkt-1", "yes-1", "no-1", 40, 44)),
	}}

	m := NewMatcher(holdings, cat, Config{}, testLogger)
	got, err := m.Positions(context.Background(), "owner")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestPositionsLegacyProgramFailureFatal(t *testing.T) {
	holdings := &fakeHoldings{
		errs: map[string]error{
			chain.TokenProgramID: errors.New("rpc down"),
		},
	}
	m := NewMatcher(holdings, &fakeCatalog{}, Config{}, testLogger)
	_, err := m.Positions(context.Background(), "owner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "legacy holdings")
}

func TestPositionsNoHoldingsSkipsCatalog(t *testing.T) {
	holdings := &fakeHoldings{}
	cat := &fakeCatalog{}
	m := NewMatcher(holdings, cat, Config{}, testLogger)

	got, err := m.Positions(context.Background(), "owner")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, cat.calls)
}

func TestPositionsRespectsPageBound(t *testing.T) {
	holdings := &fakeHoldings{byProgram: map[string][]domain.Holding{
		chain.TokenProgramID: {holding("yes-deep", "1")},
	}}
	// the matching market would appear past the bound; full pages keep the
	// scan going until MaxPages cuts it off
	full := make([]catalog.APIEvent, 0, 2)
	full = append(full, eventPage(apiMarket("mkt-a", "yes-a", "no-a", 50, 50))...)
	full = append(full, eventPage(apiMarket("mkt-b", "yes-b", "no-b", 50, 50))...)
	cat := &fakeCatalog{pages: [][]catalog.APIEvent{full, full, full, full}}

	m := NewMatcher(holdings, cat, Config{MaxPages: 2, PageSize: 2}, testLogger)
	got, err := m.Positions(context.Background(), "owner")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 2, cat.calls)
}

func TestPositionsCacheShortCircuitsCatalog(t *testing.T) {
	holdings := &fakeHoldings{byProgram: map[string][]domain.Holding{
		chain.TokenProgramID: {holding("yes-1", "5")},
	}}
	cat := &fakeCatalog{}
	cache := &mapCache{byMint: map[string]domain.Market{
		"yes-1": {
			ID:      "mkt-1",
			Title:   "Cached market",
			Status:  domain.MarketStatusActive,
			YesMint: "yes-1",
			NoMint:  "no-1",
			YesBid:  70,
			YesAsk:  74,
		},
	}}

	m := NewMatcher(holdings, cat, Config{}, testLogger)
	m.SetCache(cache)

	got, err := m.Positions(context.Background(), "owner")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cached market", got[0].MarketTitle)
	assert.Zero(t, cat.calls)
}

func TestPositionsStopsPagingOnShortPage(t *testing.T) {
	holdings := &fakeHoldings{byProgram: map[string][]domain.Holding{
		chain.TokenProgramID: {holding("unknown-mint", "1")},
	}}
	cat := &fakeCatalog{pages: [][]catalog.APIEvent{
		eventPage(apiMarket("mkt-1", "yes-1", "no-1", 50, 50)),
	}}

	m := NewMatcher(holdings, cat, Config{MaxPages: 10, PageSize: 100}, testLogger)
	got, err := m.Positions(context.Background(), "owner")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, cat.calls)
}
