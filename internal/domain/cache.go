package domain

import "context"

// MarketCache provides fast market metadata lookups keyed by market ID or by
// either of a market's outcome-token mints. Implementations return
// ErrNotFound on a miss.
type MarketCache interface {
	Set(ctx context.Context, market Market) error
	SetBatch(ctx context.Context, markets []Market) error
	Get(ctx context.Context, id string) (Market, error)
	GetByMint(ctx context.Context, mint string) (Market, error)
	Invalidate(ctx context.Context, id string) error
}
