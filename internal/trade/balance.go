package trade

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// BalanceSource fetches a wallet's token balance. Implemented by the chain
// RPC client.
type BalanceSource interface {
	TokenBalance(ctx context.Context, owner, mint string) (decimal.Decimal, error)
}

// BalanceCache holds the wallet's last known USDC balance. It lives outside
// the executor state so that resetting a trade attempt does not blank the
// balance shown for affordability checks. Fetch failures keep the previous
// value; a stale balance is more useful than none.
type BalanceCache struct {
	source BalanceSource
	mint   string
	logger *slog.Logger

	mu     sync.RWMutex
	amount decimal.Decimal
	known  bool
}

func NewBalanceCache(source BalanceSource, usdcMint string, logger *slog.Logger) *BalanceCache {
	return &BalanceCache{
		source: source,
		mint:   usdcMint,
		logger: logger.With("component", "balance"),
	}
}

// Refresh fetches the owner's balance and updates the cache. Errors are
// logged and swallowed: balance display is best effort and must never fail
// a trade.
func (b *BalanceCache) Refresh(ctx context.Context, owner string) {
	amount, err := b.source.TokenBalance(ctx, owner, b.mint)
	if err != nil {
		b.logger.Warn("balance refresh failed", "owner", owner, "error", err)
		return
	}

	b.mu.Lock()
	b.amount = amount
	b.known = true
	b.mu.Unlock()

	b.logger.Debug("balance refreshed", "owner", owner, "usdc", amount.String())
}

// Cached returns the last known balance and whether one has been fetched.
func (b *BalanceCache) Cached() (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.amount, b.known
}

// CanAfford reports whether the cached balance covers the given spend.
// An unknown balance does not block: the venue is the authority and will
// reject an unfunded trade.
func (b *BalanceCache) CanAfford(amount decimal.Decimal) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.known {
		return true
	}
	return amount.LessThanOrEqual(b.amount)
}
