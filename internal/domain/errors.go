package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNotReady           = errors.New("signer not ready")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrTradeInFlight      = errors.New("trade already in flight")
	ErrPollingTimeout     = errors.New("order status polling timed out")
	ErrTransactionFailed  = errors.New("transaction failed on chain")
	ErrTransactionExpired = errors.New("transaction expired before confirmation")
	ErrContextDone        = errors.New("context cancelled")
)

// QuoteError is returned when the quoting service rejects a quote request.
// Message carries the service's own error text when the response body was
// parseable, otherwise a generic HTTP status description.
type QuoteError struct {
	StatusCode int
	Message    string
}

func (e *QuoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("quote failed: %s", e.Message)
	}
	return fmt.Sprintf("quote failed: HTTP %d", e.StatusCode)
}

// OrderFailedError is returned when the order-matching service reports a
// terminal failed state for an async order.
type OrderFailedError struct {
	OrderID string
	Reason  string
}

func (e *OrderFailedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("order %s failed: %s", e.OrderID, e.Reason)
	}
	return fmt.Sprintf("order %s failed", e.OrderID)
}
