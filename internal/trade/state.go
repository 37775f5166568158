// Package trade implements the trade execution state machine: quote, sign,
// confirm, with dual-mode completion tracking and a balance cache that
// outlives individual attempts.
package trade

import "github.com/arlenwiebe/predictbot/internal/domain"

// Phase is the single observable phase of a trade attempt. Exactly one
// phase is active at a time; the enum replaces the representable-but-invalid
// combinations a set of boolean flags would allow.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseQuoting    Phase = "quoting"
	PhaseSigning    Phase = "signing"
	PhaseConfirming Phase = "confirming"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Busy reports whether an attempt is in flight. Callers should disable the
// trade trigger while Busy is true; the executor additionally rejects
// concurrent Buy calls.
func (p Phase) Busy() bool {
	return p == PhaseQuoting || p == PhaseSigning || p == PhaseConfirming
}

// Terminal reports whether the phase ends an attempt.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// State is the observable snapshot of the executor. A new Buy call resets
// it to quoting, discarding prior terminal state. The cached balance is
// deliberately not part of State: it is a cross-cutting value owned by
// BalanceCache and survives resets.
type State struct {
	Phase         Phase
	LastError     string
	LastQuote     *domain.Quote
	LastSignature string
}
