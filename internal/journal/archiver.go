package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// DefaultArchiveBatch bounds how many records one archive object holds.
const DefaultArchiveBatch = 500

// Archiver moves aged trade records out of Postgres into object storage as
// JSONL batches. Each batch is uploaded before its rows are deleted, so a
// failed run leaves the remaining rows in place for the next run.
type Archiver struct {
	store     domain.TradeLogStore
	blob      domain.BlobWriter
	batchSize int
	logger    *slog.Logger
}

func NewArchiver(store domain.TradeLogStore, blob domain.BlobWriter, batchSize int, logger *slog.Logger) *Archiver {
	if batchSize <= 0 {
		batchSize = DefaultArchiveBatch
	}
	return &Archiver{
		store:     store,
		blob:      blob,
		batchSize: batchSize,
		logger:    logger.With("component", "archiver"),
	}
}

// archiveRecord is the JSONL wire shape of one archived trade.
type archiveRecord struct {
	ID         string `json:"id"`
	Wallet     string `json:"wallet"`
	MarketID   string `json:"market_id"`
	OutputMint string `json:"output_mint"`
	Side       string `json:"side"`
	Mode       string `json:"mode"`
	InAmount   int64  `json:"in_amount"`
	OutAmount  int64  `json:"out_amount"`
	Signature  string `json:"signature,omitempty"`
	OrderID    string `json:"order_id,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Archive uploads all records older than the cutoff in batches, deleting
// each batch once its object is stored. It returns the number of rows
// deleted.
func (a *Archiver) Archive(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	batchNum := 0

	for {
		recs, err := a.store.ListBefore(ctx, before, a.batchSize)
		if err != nil {
			return total, fmt.Errorf("journal: list batch %d: %w", batchNum, err)
		}
		if len(recs) == 0 {
			break
		}

		key := a.objectKey(before, batchNum)
		body, err := encodeJSONL(recs)
		if err != nil {
			return total, fmt.Errorf("journal: encode batch %d: %w", batchNum, err)
		}
		if err := a.blob.Put(ctx, key, bytes.NewReader(body), "application/x-ndjson"); err != nil {
			return total, fmt.Errorf("journal: upload %s: %w", key, err)
		}

		// ListBefore returns the oldest rows first, so everything at or
		// before the batch's last timestamp has just been uploaded.
		cutoff := recs[len(recs)-1].CreatedAt.Add(time.Nanosecond)
		if cutoff.After(before) {
			cutoff = before
		}
		deleted, err := a.store.DeleteBefore(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("journal: delete batch %d: %w", batchNum, err)
		}
		total += deleted

		a.logger.Info("archive batch stored", "key", key, "records", len(recs), "deleted", deleted)
		batchNum++

		if len(recs) < a.batchSize {
			break
		}
	}

	if total == 0 {
		a.logger.Info("nothing to archive", "before", before.Format(time.RFC3339))
		return 0, nil
	}
	a.logger.Info("archive complete", "batches", batchNum, "deleted", total)
	return total, nil
}

func (a *Archiver) objectKey(before time.Time, batch int) string {
	return fmt.Sprintf("trades/%s/batch-%04d.jsonl", before.UTC().Format("2006-01-02"), batch)
}

func encodeJSONL(recs []domain.TradeRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range recs {
		line := archiveRecord{
			ID:         r.ID,
			Wallet:     r.Wallet,
			MarketID:   r.MarketID,
			OutputMint: r.OutputMint,
			Side:       string(r.Side),
			Mode:       string(r.Mode),
			InAmount:   r.InAmount,
			OutAmount:  r.OutAmount,
			Signature:  r.Signature,
			OrderID:    r.OrderID,
			Outcome:    string(r.Outcome),
			Error:      r.Error,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := enc.Encode(line); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
