package domain

import (
	"github.com/shopspring/decimal"
)

// USDCDecimals is the number of fractional digits of the quote currency.
// All on-chain amounts are integers in units of 10^-6 USDC ("micro USDC").
const USDCDecimals = 6

var microFactor = decimal.New(1, USDCDecimals)

// ToMicroUSDC converts a user-facing decimal USDC amount into the chain's
// fixed-point integer representation, flooring any precision beyond six
// fractional digits.
func ToMicroUSDC(amount decimal.Decimal) int64 {
	return amount.Mul(microFactor).Floor().IntPart()
}

// FromMicroUSDC converts a fixed-point micro-USDC amount back into a decimal
// USDC amount. The conversion is exact for every int64 input.
func FromMicroUSDC(micro int64) decimal.Decimal {
	return decimal.New(micro, -USDCDecimals)
}

// ParseUSDC parses a user-entered USDC amount string. It rejects values that
// are not finite positive numbers with ErrInvalidAmount.
func ParseUSDC(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatUSDC renders a decimal USDC amount with trailing zeros trimmed, the
// inverse of ParseUSDC for any value representable in six fractional digits.
func FormatUSDC(d decimal.Decimal) string {
	return d.String()
}
