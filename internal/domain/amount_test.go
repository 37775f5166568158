package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUSDCRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "abc", "0", "-1", "-0.5", "NaN", "Inf"} {
		_, err := ParseUSDC(s)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", s)
	}
}

func TestMicroUSDCRoundTrip(t *testing.T) {
	// Exact for every representable value with <= 6 fractional digits.
	for _, s := range []string{"1", "50", "0.000001", "12.345678", "999999.5", "0.1"} {
		d, err := ParseUSDC(s)
		require.NoError(t, err)

		micro := ToMicroUSDC(d)
		back := FromMicroUSDC(micro)
		assert.True(t, d.Equal(back), "round trip %s -> %d -> %s", s, micro, back)
		assert.Equal(t, s, FormatUSDC(back))
	}
}

func TestToMicroUSDCFloors(t *testing.T) {
	d := decimal.RequireFromString("1.2345678")
	assert.Equal(t, int64(1234567), ToMicroUSDC(d))
}
