package domain

// OrderState is the lifecycle state reported by the order status service.
type OrderState string

const (
	OrderStatePending    OrderState = "pending"
	OrderStateProcessing OrderState = "processing"
	OrderStateCompleted  OrderState = "completed"
	OrderStateFailed     OrderState = "failed"
)

// Terminal reports whether the state ends the order's lifecycle. Non-terminal
// states trigger continued polling.
func (s OrderState) Terminal() bool {
	return s == OrderStateCompleted || s == OrderStateFailed
}

// OrderStatus is one observation of an async order's progress.
type OrderStatus struct {
	State     OrderState
	Signature string // set once the venue has submitted the fill transaction
	Error     string // populated on failed
	InAmount  int64  // micro USDC actually spent, set on completed
	OutAmount int64  // outcome-token units actually received, set on completed
}
