package dflow

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// APIQuote is the wire shape of a quote response. Amount fields arrive as
// decimal strings; the transaction is base64.
type APIQuote struct {
	Transaction          string         `json:"transaction"`
	LastValidBlockHeight uint64         `json:"lastValidBlockHeight"`
	ExecutionMode        string         `json:"executionMode"`
	InAmount             string         `json:"inAmount"`
	OutAmount            string         `json:"outAmount"`
	PriceImpact          string         `json:"priceImpact"`
	RoutePlan            []APIRouteStep `json:"routePlan"`
	OrderID              string         `json:"orderId,omitempty"`
}

// APIRouteStep is one hop of the quoted route.
type APIRouteStep struct {
	Venue      string `json:"venue"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
}

// ToDomainQuote converts the wire quote into the domain Quote, decoding the
// transaction payload and enforcing the mode/order-id invariant.
func (q APIQuote) ToDomainQuote() (domain.Quote, error) {
	rawTx, err := base64.StdEncoding.DecodeString(q.Transaction)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("decode transaction: %w", err)
	}

	inAmount, err := strconv.ParseInt(q.InAmount, 10, 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("parse inAmount %q: %w", q.InAmount, err)
	}
	outAmount, err := strconv.ParseInt(q.OutAmount, 10, 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("parse outAmount %q: %w", q.OutAmount, err)
	}

	// Price impact is informational; a missing or malformed value is zero.
	impact, _ := strconv.ParseFloat(q.PriceImpact, 64)

	route := make([]domain.RouteHop, 0, len(q.RoutePlan))
	for _, step := range q.RoutePlan {
		route = append(route, domain.RouteHop{
			Venue:      step.Venue,
			InputMint:  step.InputMint,
			OutputMint: step.OutputMint,
		})
	}

	quote := domain.Quote{
		RawTransaction:       rawTx,
		LastValidBlockHeight: q.LastValidBlockHeight,
		ExecutionMode:        domain.ExecutionMode(q.ExecutionMode),
		InAmount:             inAmount,
		OutAmount:            outAmount,
		PriceImpact:          impact,
		Route:                route,
		OrderID:              q.OrderID,
	}
	if err := quote.Validate(); err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}

// APIOrderStatus is the wire shape of an order status response.
type APIOrderStatus struct {
	Status    string `json:"status"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
	InAmount  string `json:"inAmount,omitempty"`
	OutAmount string `json:"outAmount,omitempty"`
}

// ToDomainOrderStatus converts the wire status into the domain OrderStatus.
// Result amounts are optional and zero when absent.
func (s APIOrderStatus) ToDomainOrderStatus() domain.OrderStatus {
	inAmount, _ := strconv.ParseInt(s.InAmount, 10, 64)
	outAmount, _ := strconv.ParseInt(s.OutAmount, 10, 64)
	return domain.OrderStatus{
		State:     domain.OrderState(s.Status),
		Signature: s.Signature,
		Error:     s.Error,
		InAmount:  inAmount,
		OutAmount: outAmount,
	}
}
