// Package journal persists trade attempt records and ships aged records to
// cold storage. Recording is best effort: a journal failure never fails the
// trade that produced the record.
package journal

import (
	"context"
	"log/slog"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// Recorder writes trade records through a TradeLogStore, swallowing errors.
type Recorder struct {
	store  domain.TradeLogStore
	logger *slog.Logger
}

func NewRecorder(store domain.TradeLogStore, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.With("component", "journal"),
	}
}

// Record persists one trade attempt. Errors are logged and dropped.
func (r *Recorder) Record(ctx context.Context, rec domain.TradeRecord) {
	if err := r.store.Insert(ctx, rec); err != nil {
		r.logger.Error("trade record lost", "id", rec.ID, "market", rec.MarketID, "error", err)
		return
	}
	r.logger.Debug("trade recorded", "id", rec.ID, "outcome", rec.Outcome)
}

// History returns the wallet's most recent attempts, newest first.
func (r *Recorder) History(ctx context.Context, wallet string, limit int) ([]domain.TradeRecord, error) {
	return r.store.ListByWallet(ctx, wallet, limit)
}
