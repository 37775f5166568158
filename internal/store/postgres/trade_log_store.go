package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// TradeLogStore implements domain.TradeLogStore using PostgreSQL.
type TradeLogStore struct {
	pool *pgxpool.Pool
}

// NewTradeLogStore creates a TradeLogStore backed by the given pool.
func NewTradeLogStore(pool *pgxpool.Pool) *TradeLogStore {
	return &TradeLogStore{pool: pool}
}

const tradeLogSelectCols = `id, wallet, market_id, output_mint, side, mode,
	in_amount, out_amount, signature, order_id, outcome, error, created_at`

func scanTradeLogRows(rows pgx.Rows) ([]domain.TradeRecord, error) {
	var recs []domain.TradeRecord
	for rows.Next() {
		var r domain.TradeRecord
		if err := rows.Scan(
			&r.ID, &r.Wallet, &r.MarketID, &r.OutputMint, &r.Side, &r.Mode,
			&r.InAmount, &r.OutAmount, &r.Signature, &r.OrderID,
			&r.Outcome, &r.Error, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Insert writes one trade attempt. Re-inserting the same attempt id is a
// no-op via ON CONFLICT DO NOTHING.
func (s *TradeLogStore) Insert(ctx context.Context, rec domain.TradeRecord) error {
	const query = `
		INSERT INTO trade_log (
			id, wallet, market_id, output_mint, side, mode,
			in_amount, out_amount, signature, order_id,
			outcome, error, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13
		) ON CONFLICT (id) DO NOTHING`

	if _, err := s.pool.Exec(ctx, query,
		rec.ID, rec.Wallet, rec.MarketID, rec.OutputMint, rec.Side, rec.Mode,
		rec.InAmount, rec.OutAmount, rec.Signature, rec.OrderID,
		rec.Outcome, rec.Error, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("postgres: insert trade %s: %w", rec.ID, err)
	}
	return nil
}

// ListByWallet returns the wallet's most recent attempts, newest first.
func (s *TradeLogStore) ListByWallet(ctx context.Context, wallet string, limit int) ([]domain.TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT %s FROM trade_log
		WHERE wallet = $1
		ORDER BY created_at DESC
		LIMIT $2`, tradeLogSelectCols)

	rows, err := s.pool.Query(ctx, query, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades for %s: %w", wallet, err)
	}
	defer rows.Close()

	recs, err := scanTradeLogRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trades for %s: %w", wallet, err)
	}
	return recs, nil
}

// ListBefore returns attempts older than the cutoff, oldest first. The
// archiver drains the table through this in bounded batches.
func (s *TradeLogStore) ListBefore(ctx context.Context, before time.Time, limit int) ([]domain.TradeRecord, error) {
	if limit <= 0 {
		limit = 500
	}
	query := fmt.Sprintf(`
		SELECT %s FROM trade_log
		WHERE created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`, tradeLogSelectCols)

	rows, err := s.pool.Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades before %s: %w", before.Format(time.RFC3339), err)
	}
	defer rows.Close()

	recs, err := scanTradeLogRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trades before %s: %w", before.Format(time.RFC3339), err)
	}
	return recs, nil
}

// DeleteBefore removes attempts older than the cutoff and reports how many
// rows were deleted.
func (s *TradeLogStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trade_log WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete trades before %s: %w", before.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.TradeLogStore = (*TradeLogStore)(nil)
