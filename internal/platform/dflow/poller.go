package dflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// Default polling parameters: 30 attempts x 2s gives a worst-case wait of
// about one minute. The interval is fixed, with no backoff.
const (
	DefaultPollMaxAttempts = 30
	DefaultPollInterval    = 2 * time.Second
)

// StatusSource yields order status observations. Implemented by Client.
type StatusSource interface {
	GetOrderStatus(ctx context.Context, orderID string) (domain.OrderStatus, error)
}

// StatusPoller polls an order until it reaches a terminal state or the
// attempt budget is exhausted.
type StatusPoller struct {
	statuses    StatusSource
	maxAttempts int
	interval    time.Duration
	logger      *slog.Logger
}

// NewStatusPoller creates a StatusPoller. Non-positive maxAttempts or
// interval fall back to the defaults.
func NewStatusPoller(statuses StatusSource, maxAttempts int, interval time.Duration, logger *slog.Logger) *StatusPoller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatusPoller{
		statuses:    statuses,
		maxAttempts: maxAttempts,
		interval:    interval,
		logger:      logger.With(slog.String("component", "status_poller")),
	}
}

// WaitForCompletion polls the order status at a fixed interval. It returns
// the status as soon as the order completes, fails with
// *domain.OrderFailedError on the first failed observation, and fails with
// domain.ErrPollingTimeout after maxAttempts non-terminal observations.
//
// A timeout is a terminal client-side result, not a statement about the
// order: the venue may still complete it after we give up. No later
// re-check is performed.
func (p *StatusPoller) WaitForCompletion(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.statuses.GetOrderStatus(ctx, orderID)
		if err != nil {
			return domain.OrderStatus{}, fmt.Errorf("poll order %s (attempt %d): %w", orderID, attempt, err)
		}

		switch status.State {
		case domain.OrderStateCompleted:
			return status, nil
		case domain.OrderStateFailed:
			return status, &domain.OrderFailedError{OrderID: orderID, Reason: status.Error}
		}

		p.logger.Debug("order not terminal yet",
			slog.String("order_id", orderID),
			slog.String("state", string(status.State)),
			slog.Int("attempt", attempt),
		)

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return domain.OrderStatus{}, ctx.Err()
		case <-time.After(p.interval):
		}
	}

	return domain.OrderStatus{}, fmt.Errorf("order %s: %w", orderID, domain.ErrPollingTimeout)
}
