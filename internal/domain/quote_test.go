package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteValidateModeOrderIDInvariant(t *testing.T) {
	tests := []struct {
		name    string
		mode    ExecutionMode
		orderID string
		wantErr bool
	}{
		{"async with order id", ExecutionModeAsync, "ord-1", false},
		{"async without order id", ExecutionModeAsync, "", true},
		{"sync without order id", ExecutionModeSync, "", false},
		{"sync with order id", ExecutionModeSync, "ord-1", true},
		{"unknown mode", ExecutionMode("instant"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quote{ExecutionMode: tt.mode, OrderID: tt.orderID}
			err := q.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMarketMarkPrice(t *testing.T) {
	m := Market{YesMint: "mintY", NoMint: "mintN", YesBid: 60, YesAsk: 64}

	assert.InDelta(t, 0.62, m.MarkPrice(SideYes), 1e-9)
	assert.InDelta(t, 0.38, m.MarkPrice(SideNo), 1e-9)

	side, ok := m.SideForMint("mintN")
	assert.True(t, ok)
	assert.Equal(t, SideNo, side)

	_, ok = m.SideForMint("other")
	assert.False(t, ok)

	_, ok = Market{}.SideForMint("")
	assert.False(t, ok)
}
