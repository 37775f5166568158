package dflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

const testUSDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestGetQuoteRejectsInvalidAmountBeforeNetwork(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(server.URL, testUSDCMint)

	for _, amount := range []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(-5),
	} {
		_, err := client.GetQuote(context.Background(), "outMint", amount, "user", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
	assert.Equal(t, int64(0), calls.Load(), "invalid amounts must not reach the network")
}

func TestGetQuoteSync(t *testing.T) {
	rawTx := []byte{1, 0, 0, 42, 42}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, testUSDCMint, q.Get("inputMint"))
		assert.Equal(t, "outMint", q.Get("outputMint"))
		assert.Equal(t, "50000000", q.Get("amount")) // 50 USDC in micro units
		assert.Equal(t, "100", q.Get("slippageBps")) // default applied
		assert.Equal(t, "user123", q.Get("userPublicKey"))

		json.NewEncoder(w).Encode(APIQuote{
			Transaction:          base64.StdEncoding.EncodeToString(rawTx),
			LastValidBlockHeight: 250_000_123,
			ExecutionMode:        "sync",
			InAmount:             "50000000",
			OutAmount:            "80645161",
			PriceImpact:          "0.0031",
			RoutePlan: []APIRouteStep{
				{Venue: "prediction_amm", InputMint: testUSDCMint, OutputMint: "outMint"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, testUSDCMint)
	quote, err := client.GetQuote(context.Background(), "outMint", decimal.NewFromInt(50), "user123", 0)
	require.NoError(t, err)

	assert.Equal(t, rawTx, quote.RawTransaction)
	assert.Equal(t, uint64(250_000_123), quote.LastValidBlockHeight)
	assert.Equal(t, domain.ExecutionModeSync, quote.ExecutionMode)
	assert.Equal(t, int64(50000000), quote.InAmount)
	assert.Equal(t, int64(80645161), quote.OutAmount)
	assert.InDelta(t, 0.0031, quote.PriceImpact, 1e-9)
	assert.Empty(t, quote.OrderID)
	require.Len(t, quote.Route, 1)
	assert.Equal(t, "prediction_amm", quote.Route[0].Venue)
}

func TestGetQuoteAsyncCarriesOrderID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(APIQuote{
			Transaction:   base64.StdEncoding.EncodeToString([]byte{9}),
			ExecutionMode: "async",
			InAmount:      "1000000",
			OutAmount:     "1500000",
			OrderID:       "ord-abc",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, testUSDCMint)
	quote, err := client.GetQuote(context.Background(), "outMint", decimal.NewFromInt(1), "user", 50)
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionModeAsync, quote.ExecutionMode)
	assert.Equal(t, "ord-abc", quote.OrderID)
}

func TestGetQuoteAsyncWithoutOrderIDIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(APIQuote{
			Transaction:   base64.StdEncoding.EncodeToString([]byte{9}),
			ExecutionMode: "async",
			InAmount:      "1000000",
			OutAmount:     "1500000",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, testUSDCMint)
	_, err := client.GetQuote(context.Background(), "outMint", decimal.NewFromInt(1), "user", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order id")
}

func TestGetQuoteServiceErrorMessage(t *testing.T) {
	t.Run("with msg body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"msg": "market closed"})
		}))
		defer server.Close()

		client := NewClient(server.URL, testUSDCMint)
		_, err := client.GetQuote(context.Background(), "outMint", decimal.NewFromInt(1), "user", 0)

		var quoteErr *domain.QuoteError
		require.True(t, errors.As(err, &quoteErr))
		assert.Equal(t, http.StatusForbidden, quoteErr.StatusCode)
		assert.Equal(t, "market closed", quoteErr.Message)
		assert.Contains(t, quoteErr.Error(), "market closed")
	})

	t.Run("without body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient(server.URL, testUSDCMint)
		_, err := client.GetQuote(context.Background(), "outMint", decimal.NewFromInt(1), "user", 0)

		var quoteErr *domain.QuoteError
		require.True(t, errors.As(err, &quoteErr))
		assert.Empty(t, quoteErr.Message)
		assert.Contains(t, quoteErr.Error(), "403")
	})
}

func TestGetOrderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status/ord-1", r.URL.Path)
		json.NewEncoder(w).Encode(APIOrderStatus{
			Status:    "completed",
			Signature: "5sig",
			InAmount:  "1000000",
			OutAmount: "1400000",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, testUSDCMint)
	status, err := client.GetOrderStatus(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateCompleted, status.State)
	assert.Equal(t, "5sig", status.Signature)
	assert.Equal(t, int64(1000000), status.InAmount)
	assert.Equal(t, int64(1400000), status.OutAmount)
}
