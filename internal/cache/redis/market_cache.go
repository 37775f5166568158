package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

const marketTTL = 5 * time.Minute

// MarketCache implements domain.MarketCache using Redis hashes with JSON-
// serialized Market data and a secondary mint-to-market index.
//
// Key schema:
//
//	market:{id}        - hash with field "data" containing JSON
//	market:mint:{mint} - string value of the market ID
type MarketCache struct {
	rdb *redis.Client
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.rdb}
}

func marketKey(id string) string       { return "market:" + id }
func marketMintKey(mint string) string { return "market:mint:" + mint }

// Set stores a Market with a 5-minute TTL and indexes both of its outcome
// mints back to the market ID.
func (mc *MarketCache) Set(ctx context.Context, market domain.Market) error {
	pipe := mc.rdb.TxPipeline()
	if err := mc.queueSet(ctx, pipe, market); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set market %s: %w", market.ID, err)
	}
	return nil
}

// SetBatch stores many markets in one pipeline round trip. Used by the
// catalog sync job.
func (mc *MarketCache) SetBatch(ctx context.Context, markets []domain.Market) error {
	if len(markets) == 0 {
		return nil
	}
	pipe := mc.rdb.TxPipeline()
	for _, market := range markets {
		if err := mc.queueSet(ctx, pipe, market); err != nil {
			return err
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set %d markets: %w", len(markets), err)
	}
	return nil
}

func (mc *MarketCache) queueSet(ctx context.Context, pipe redis.Pipeliner, market domain.Market) error {
	data, err := json.Marshal(market)
	if err != nil {
		return fmt.Errorf("redis: marshal market %s: %w", market.ID, err)
	}

	key := marketKey(market.ID)
	pipe.HSet(ctx, key, "data", data)
	pipe.Expire(ctx, key, marketTTL)

	for _, mint := range []string{market.YesMint, market.NoMint} {
		if mint == "" {
			continue
		}
		pipe.Set(ctx, marketMintKey(mint), market.ID, marketTTL)
	}
	return nil
}

// Get retrieves a Market by its ID. It returns domain.ErrNotFound when the
// key does not exist.
func (mc *MarketCache) Get(ctx context.Context, id string) (domain.Market, error) {
	data, err := mc.rdb.HGet(ctx, marketKey(id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("redis: get market %s: %w", id, err)
	}

	var market domain.Market
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.Market{}, fmt.Errorf("redis: unmarshal market %s: %w", id, err)
	}
	return market, nil
}

// GetByMint looks up a Market by one of its outcome-token mints. It returns
// domain.ErrNotFound if the mint mapping or market does not exist.
func (mc *MarketCache) GetByMint(ctx context.Context, mint string) (domain.Market, error) {
	marketID, err := mc.rdb.Get(ctx, marketMintKey(mint)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("redis: get market by mint %s: %w", mint, err)
	}

	return mc.Get(ctx, marketID)
}

// Invalidate removes a Market and its mint index entries.
func (mc *MarketCache) Invalidate(ctx context.Context, id string) error {
	// Read the market first to find its mints so the reverse index entries
	// can be cleaned up too.
	market, err := mc.Get(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("redis: invalidate market %s: %w", id, err)
	}

	pipe := mc.rdb.TxPipeline()
	pipe.Del(ctx, marketKey(id))

	if err == nil {
		for _, mint := range []string{market.YesMint, market.NoMint} {
			if mint == "" {
				continue
			}
			pipe.Del(ctx, marketMintKey(mint))
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: invalidate market %s: %w", id, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MarketCache = (*MarketCache)(nil)
