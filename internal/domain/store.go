package domain

import (
	"context"
	"time"
)

// TradeLogStore persists trade attempt records.
type TradeLogStore interface {
	Insert(ctx context.Context, rec TradeRecord) error
	ListByWallet(ctx context.Context, wallet string, limit int) ([]TradeRecord, error)
	ListBefore(ctx context.Context, before time.Time, limit int) ([]TradeRecord, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
