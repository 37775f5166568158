// Package positions derives user positions by joining wallet token holdings
// against the market catalog's outcome-token mints.
package positions

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/arlenwiebe/predictbot/internal/chain"
	"github.com/arlenwiebe/predictbot/internal/domain"
	"github.com/arlenwiebe/predictbot/internal/platform/catalog"
)

const (
	DefaultMaxPages = 10
	DefaultPageSize = 100
)

// HoldingsSource fetches token balances for one owner under one token
// program. Implemented by chain.HTTPClient.
type HoldingsSource interface {
	TokenHoldings(ctx context.Context, owner, programID string) ([]domain.Holding, error)
}

// CatalogSource pages through the market catalog. Implemented by
// catalog.Client.
type CatalogSource interface {
	GetEvents(ctx context.Context, limit, offset int) ([]catalog.APIEvent, error)
	USDCMint() string
}

// Config bounds the catalog scan. A wallet holding a mint outside the first
// MaxPages*PageSize events simply does not get a position for it.
type Config struct {
	MaxPages int
	PageSize int
}

// Matcher recomputes positions from scratch on every call. An optional
// MarketCache short-circuits the catalog scan for mints it already knows.
type Matcher struct {
	holdings HoldingsSource
	catalog  CatalogSource
	cache    domain.MarketCache
	cfg      Config
	logger   *slog.Logger
}

func NewMatcher(holdings HoldingsSource, cat CatalogSource, cfg Config, logger *slog.Logger) *Matcher {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Matcher{
		holdings: holdings,
		catalog:  cat,
		cfg:      cfg,
		logger:   logger.With("component", "positions"),
	}
}

// SetCache attaches a market cache consulted before the catalog. Optional.
func (m *Matcher) SetCache(cache domain.MarketCache) { m.cache = cache }

// Positions returns the owner's open positions in holding order: legacy
// token program accounts first, then extended program accounts. Holdings
// whose mint matches no known market are dropped.
func (m *Matcher) Positions(ctx context.Context, owner string) ([]domain.Position, error) {
	holdings, err := m.fetchHoldings(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return []domain.Position{}, nil
	}

	markets, err := m.resolveMints(ctx, holdings)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(holdings))
	for _, h := range holdings {
		market, ok := markets[h.Mint]
		if !ok {
			m.logger.Debug("holding matched no market", "mint", h.Mint)
			continue
		}
		side, ok := market.SideForMint(h.Mint)
		if !ok {
			continue
		}
		price := market.MarkPrice(side)
		shares, _ := h.Amount.Float64()
		positions = append(positions, domain.Position{
			MarketID:    market.ID,
			MarketTitle: market.Title,
			Side:        side,
			Shares:      h.Amount,
			MarkPrice:   price,
			Value:       shares * price,
			ImageURL:    market.ImageURL,
			Mint:        h.Mint,
		})
	}
	return positions, nil
}

// fetchHoldings queries both token programs in parallel. The legacy program
// is authoritative and its failure aborts the refresh; the extended program
// covers newer mints and its failure only costs those holdings.
func (m *Matcher) fetchHoldings(ctx context.Context, owner string) ([]domain.Holding, error) {
	var legacy, extended []domain.Holding

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		legacy, err = m.holdings.TokenHoldings(gctx, owner, chain.TokenProgramID)
		if err != nil {
			return fmt.Errorf("positions: legacy holdings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		extended, err = m.holdings.TokenHoldings(gctx, owner, chain.Token2022ProgramID)
		if err != nil {
			m.logger.Warn("extended token holdings unavailable", "owner", owner, "error", err)
			extended = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usdc := m.catalog.USDCMint()
	merged := make([]domain.Holding, 0, len(legacy)+len(extended))
	for _, h := range append(legacy, extended...) {
		if h.Amount.Sign() <= 0 {
			continue
		}
		if h.Mint == usdc {
			continue
		}
		merged = append(merged, h)
	}
	return merged, nil
}

// resolveMints maps each held mint to its market. The cache is tried first;
// remaining mints are resolved by scanning catalog pages until all are found
// or the page bound is hit. The first market claiming a mint wins.
func (m *Matcher) resolveMints(ctx context.Context, holdings []domain.Holding) (map[string]domain.Market, error) {
	resolved := make(map[string]domain.Market, len(holdings))
	unresolved := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		unresolved[h.Mint] = struct{}{}
	}

	if m.cache != nil {
		for mint := range unresolved {
			market, err := m.cache.GetByMint(ctx, mint)
			if err != nil {
				continue
			}
			resolved[mint] = market
			delete(unresolved, mint)
		}
	}

	usdc := m.catalog.USDCMint()
	for page := 0; page < m.cfg.MaxPages && len(unresolved) > 0; page++ {
		events, err := m.catalog.GetEvents(ctx, m.cfg.PageSize, page*m.cfg.PageSize)
		if err != nil {
			return nil, fmt.Errorf("positions: catalog page %d: %w", page, err)
		}
		if len(events) == 0 {
			break
		}
		for _, e := range events {
			event := e.ToDomainEvent(usdc)
			for _, market := range event.Markets {
				for _, mint := range []string{market.YesMint, market.NoMint} {
					if mint == "" {
						continue
					}
					if _, want := unresolved[mint]; want {
						resolved[mint] = market
						delete(unresolved, mint)
					}
				}
			}
		}
		if len(events) < m.cfg.PageSize {
			break
		}
	}
	return resolved, nil
}
