package journal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memStore is an in-memory TradeLogStore keyed by created_at.
type memStore struct {
	recs      []domain.TradeRecord
	insertErr error
}

func (m *memStore) Insert(_ context.Context, rec domain.TradeRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memStore) ListByWallet(_ context.Context, wallet string, limit int) ([]domain.TradeRecord, error) {
	var out []domain.TradeRecord
	for _, r := range m.recs {
		if r.Wallet == wallet {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListBefore(_ context.Context, before time.Time, limit int) ([]domain.TradeRecord, error) {
	var out []domain.TradeRecord
	for _, r := range m.recs {
		if r.CreatedAt.Before(before) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	var kept []domain.TradeRecord
	var deleted int64
	for _, r := range m.recs {
		if r.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.recs = kept
	return deleted, nil
}

type memBlob struct {
	objects map[string][]byte
	putErr  error
}

func (b *memBlob) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if b.putErr != nil {
		return b.putErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[path] = raw
	return nil
}

func (b *memBlob) PutMultipart(ctx context.Context, path string, data io.Reader, _ int64) error {
	return b.Put(ctx, path, data, "")
}

func record(i int, at time.Time) domain.TradeRecord {
	return domain.TradeRecord{
		ID:        fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
		Wallet:    "wallet-1",
		MarketID:  "mkt-1",
		Side:      domain.SideYes,
		Mode:      domain.ExecutionModeSync,
		InAmount:  1_000_000,
		Outcome:   domain.TradeOutcomeSucceeded,
		CreatedAt: at,
	}
}

func TestArchiveBatchesAndDeletes(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := &memStore{}
	for i := 0; i < 5; i++ {
		store.recs = append(store.recs, record(i, base.Add(time.Duration(i)*time.Hour)))
	}
	// one record after the cutoff stays behind
	cutoff := base.Add(4 * time.Hour)

	blob := &memBlob{}
	a := NewArchiver(store, blob, 2, testLogger)

	deleted, err := a.Archive(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	require.Len(t, store.recs, 1)
	assert.Equal(t, base.Add(4*time.Hour), store.recs[0].CreatedAt)

	// 4 records at batch size 2 means two objects
	require.Len(t, blob.objects, 2)
	total := 0
	for key, body := range blob.objects {
		assert.Contains(t, key, "trades/2026-08-01/")
		sc := bufio.NewScanner(bytes.NewReader(body))
		for sc.Scan() {
			assert.Contains(t, sc.Text(), `"wallet":"wallet-1"`)
			total++
		}
	}
	assert.Equal(t, 4, total)
}

func TestArchiveNothingToDo(t *testing.T) {
	store := &memStore{}
	blob := &memBlob{}
	a := NewArchiver(store, blob, 10, testLogger)

	deleted, err := a.Archive(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, blob.objects)
}

func TestArchiveUploadFailureKeepsRows(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := &memStore{recs: []domain.TradeRecord{record(0, base)}}
	blob := &memBlob{putErr: errors.New("bucket gone")}
	a := NewArchiver(store, blob, 10, testLogger)

	_, err := a.Archive(context.Background(), base.Add(time.Hour))
	require.Error(t, err)
	assert.Len(t, store.recs, 1)
}

func TestRecorderSwallowsStoreErrors(t *testing.T) {
	store := &memStore{insertErr: errors.New("db down")}
	r := NewRecorder(store, testLogger)

	// must not panic or propagate
	r.Record(context.Background(), record(0, time.Now()))
	assert.Empty(t, store.recs)
}
