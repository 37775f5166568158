package trade

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arlenwiebe/predictbot/internal/domain"
	"github.com/arlenwiebe/predictbot/internal/wallet"
)

// Quoter requests swap quotes from the trade venue.
type Quoter interface {
	GetQuote(ctx context.Context, outputMint string, amount decimal.Decimal, userPublicKey string, slippageBps int) (domain.Quote, error)
}

// CompletionWaiter polls an asynchronous order until it reaches a terminal
// state. Implemented by dflow.StatusPoller.
type CompletionWaiter interface {
	WaitForCompletion(ctx context.Context, orderID string) (domain.OrderStatus, error)
}

// TransactionConfirmer tracks a submitted transaction on chain until it is
// confirmed or its blockhash expires. Implemented by chain.Confirmer.
type TransactionConfirmer interface {
	ConfirmTransaction(ctx context.Context, signature string, lastValidBlockHeight uint64) error
}

// TradeRecorder journals completed attempts. Recording is best effort and
// must not fail a trade.
type TradeRecorder interface {
	Record(ctx context.Context, rec domain.TradeRecord)
}

// Emitter pushes human-readable trade events. Implemented by notify.Notifier.
type Emitter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Executor runs buy attempts through the quote, sign, confirm pipeline and
// exposes the current attempt as a State snapshot. One attempt at a time:
// a Buy while another is in flight fails with ErrTradeInFlight.
type Executor struct {
	quoter      Quoter
	signer      wallet.Signer
	orders      CompletionWaiter
	confirmer   TransactionConfirmer
	balance     *BalanceCache
	recorder    TradeRecorder
	emitter     Emitter
	slippageBps int
	logger      *slog.Logger

	mu       sync.Mutex
	state    State
	gen      uint64
	inFlight bool
}

func NewExecutor(quoter Quoter, signer wallet.Signer, orders CompletionWaiter, confirmer TransactionConfirmer, balance *BalanceCache, slippageBps int, logger *slog.Logger) *Executor {
	if slippageBps <= 0 {
		slippageBps = 100
	}
	return &Executor{
		quoter:      quoter,
		signer:      signer,
		orders:      orders,
		confirmer:   confirmer,
		balance:     balance,
		slippageBps: slippageBps,
		logger:      logger.With("component", "executor"),
		state:       State{Phase: PhaseIdle},
	}
}

// SetRecorder attaches a trade journal. Optional.
func (e *Executor) SetRecorder(r TradeRecorder) { e.recorder = r }

// SetEmitter attaches a notifier. Optional.
func (e *Executor) SetEmitter(em Emitter) { e.emitter = em }

// State returns a snapshot of the current attempt.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Balance returns the cache the executor refreshes after successful buys.
func (e *Executor) Balance() *BalanceCache { return e.balance }

// Reset returns the executor to idle and discards any writes still pending
// from an attempt that was in flight when Reset was called. The cached
// balance is unaffected.
func (e *Executor) Reset() {
	e.mu.Lock()
	e.gen++
	e.inFlight = false
	e.state = State{Phase: PhaseIdle}
	e.mu.Unlock()
}

// PreviewQuote fetches a quote for display without starting an attempt.
// It never mutates executor state; callers debounce and keep the latest
// response themselves.
func (e *Executor) PreviewQuote(ctx context.Context, outputMint string, amount decimal.Decimal) (domain.Quote, error) {
	if e.signer == nil || !e.signer.Ready() {
		return domain.Quote{}, domain.ErrNotReady
	}
	addr := e.signer.Address()
	if addr == "" {
		return domain.Quote{}, domain.ErrWalletNotConnected
	}
	return e.quoter.GetQuote(ctx, outputMint, amount, addr, e.slippageBps)
}

// Buy executes a full buy attempt and returns the transaction signature on
// success. Preconditions are checked before any network call; a new Buy
// replaces prior terminal state.
func (e *Executor) Buy(ctx context.Context, intent domain.TradeIntent) (string, error) {
	if e.signer == nil || !e.signer.Ready() {
		e.failFast(domain.ErrNotReady)
		return "", domain.ErrNotReady
	}
	addr := e.signer.Address()
	if addr == "" {
		e.failFast(domain.ErrWalletNotConnected)
		return "", domain.ErrWalletNotConnected
	}
	if intent.AmountUSDC.Sign() <= 0 {
		e.failFast(domain.ErrInvalidAmount)
		return "", domain.ErrInvalidAmount
	}

	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return "", domain.ErrTradeInFlight
	}
	e.inFlight = true
	e.gen++
	gen := e.gen
	e.state = State{Phase: PhaseQuoting}
	e.mu.Unlock()

	log := e.logger.With("market", intent.MarketID, "mint", intent.OutputMint, "usdc", intent.AmountUSDC.String())
	log.Info("buy started", "side", intent.Side)

	quote, err := e.quoter.GetQuote(ctx, intent.OutputMint, intent.AmountUSDC, addr, e.slippageBps)
	if err != nil {
		return "", e.fail(ctx, gen, intent, addr, domain.Quote{}, "", fmt.Errorf("trade: quote: %w", err))
	}

	e.transition(gen, func(s *State) {
		s.Phase = PhaseSigning
		s.LastQuote = &quote
	})

	sig, err := e.signer.SignAndSubmit(ctx, quote.RawTransaction)
	if err != nil {
		return "", e.fail(ctx, gen, intent, addr, quote, "", fmt.Errorf("trade: sign: %w", err))
	}
	log = log.With("signature", sig)

	e.transition(gen, func(s *State) {
		s.Phase = PhaseConfirming
		s.LastSignature = sig
	})

	var status domain.OrderStatus
	switch quote.ExecutionMode {
	case domain.ExecutionModeAsync:
		// The venue settles async orders server-side; the signature is
		// only a fallback identifier when the order id is missing.
		orderID := quote.OrderID
		if orderID == "" {
			orderID = sig
		}
		status, err = e.orders.WaitForCompletion(ctx, orderID)
		if err != nil {
			return "", e.fail(ctx, gen, intent, addr, quote, sig, fmt.Errorf("trade: order %s: %w", orderID, err))
		}
	default:
		if err := e.confirmer.ConfirmTransaction(ctx, sig, quote.LastValidBlockHeight); err != nil {
			return "", e.fail(ctx, gen, intent, addr, quote, sig, fmt.Errorf("trade: confirm: %w", err))
		}
	}

	e.transition(gen, func(s *State) {
		s.Phase = PhaseSucceeded
		s.LastError = ""
	})
	e.finish(gen)

	if e.balance != nil {
		e.balance.Refresh(ctx, addr)
	}
	e.record(ctx, intent, addr, quote, status, sig, domain.TradeOutcomeSucceeded, "")
	e.emit(ctx, "trade_succeeded", "Trade filled",
		fmt.Sprintf("%s %s for %s USDC (%s)", intent.Side, intent.MarketID, domain.FormatUSDC(intent.AmountUSDC), sig))

	log.Info("buy succeeded", "mode", quote.ExecutionMode)
	return sig, nil
}

// failFast records a precondition failure without entering the pipeline.
func (e *Executor) failFast(err error) {
	e.mu.Lock()
	if !e.inFlight {
		e.state = State{Phase: PhaseFailed, LastError: err.Error()}
	}
	e.mu.Unlock()
}

func (e *Executor) fail(ctx context.Context, gen uint64, intent domain.TradeIntent, addr string, quote domain.Quote, sig string, err error) error {
	e.transition(gen, func(s *State) {
		s.Phase = PhaseFailed
		s.LastError = err.Error()
	})
	e.finish(gen)

	e.record(ctx, intent, addr, quote, domain.OrderStatus{}, sig, domain.TradeOutcomeFailed, err.Error())
	e.emit(ctx, "trade_failed", "Trade failed",
		fmt.Sprintf("%s %s for %s USDC: %v", intent.Side, intent.MarketID, domain.FormatUSDC(intent.AmountUSDC), err))

	e.logger.Error("buy failed", "market", intent.MarketID, "error", err)
	return err
}

// transition applies a state mutation unless the attempt's generation was
// invalidated by Reset, in which case the write is discarded.
func (e *Executor) transition(gen uint64, apply func(*State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return
	}
	apply(&e.state)
}

func (e *Executor) finish(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return
	}
	e.inFlight = false
}

func (e *Executor) record(ctx context.Context, intent domain.TradeIntent, addr string, quote domain.Quote, status domain.OrderStatus, sig string, outcome domain.TradeOutcome, errMsg string) {
	if e.recorder == nil {
		return
	}
	rec := domain.TradeRecord{
		ID:         uuid.New().String(),
		Wallet:     addr,
		MarketID:   intent.MarketID,
		OutputMint: intent.OutputMint,
		Side:       intent.Side,
		Mode:       quote.ExecutionMode,
		InAmount:   quote.InAmount,
		OutAmount:  quote.OutAmount,
		Signature:  sig,
		OrderID:    quote.OrderID,
		Outcome:    outcome,
		Error:      errMsg,
		CreatedAt:  time.Now().UTC(),
	}
	if status.OutAmount > 0 {
		rec.OutAmount = status.OutAmount
	}
	if status.Signature != "" {
		rec.Signature = status.Signature
	}
	e.recorder.Record(ctx, rec)
}

func (e *Executor) emit(ctx context.Context, event, title, message string) {
	if e.emitter == nil {
		return
	}
	if err := e.emitter.Notify(ctx, event, title, message); err != nil {
		e.logger.Warn("notify failed", "event", event, "error", err)
	}
}
