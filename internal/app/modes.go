package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arlenwiebe/predictbot/internal/domain"
)

// BuyMode executes a single buy from the configured trade parameters and
// prints the outcome.
func (a *App) BuyMode(ctx context.Context, deps *Dependencies) error {
	intent, err := a.tradeIntent()
	if err != nil {
		return err
	}

	sig, err := deps.Executor.Buy(ctx, intent)
	if err != nil {
		st := deps.Executor.State()
		return fmt.Errorf("app: buy failed (%s): %w", st.Phase, err)
	}

	st := deps.Executor.State()
	fmt.Printf("trade confirmed\n")
	fmt.Printf("  market:    %s\n", intent.MarketID)
	fmt.Printf("  side:      %s\n", intent.Side)
	fmt.Printf("  spent:     %s USDC\n", domain.FormatUSDC(intent.AmountUSDC))
	if st.LastQuote != nil {
		fmt.Printf("  received:  %d units\n", st.LastQuote.OutAmount)
		fmt.Printf("  mode:      %s\n", st.LastQuote.ExecutionMode)
	}
	fmt.Printf("  signature: %s\n", sig)

	if balance, known := deps.Balance.Cached(); known {
		fmt.Printf("  balance:   %s USDC\n", domain.FormatUSDC(balance))
	}
	return nil
}

// QuoteMode fetches and prints a quote without trading.
func (a *App) QuoteMode(ctx context.Context, deps *Dependencies) error {
	intent, err := a.tradeIntent()
	if err != nil {
		return err
	}

	quote, err := deps.Executor.PreviewQuote(ctx, intent.OutputMint, intent.AmountUSDC)
	if err != nil {
		return fmt.Errorf("app: quote: %w", err)
	}

	fmt.Printf("quote for %s USDC of %s\n", domain.FormatUSDC(intent.AmountUSDC), intent.OutputMint)
	fmt.Printf("  in:           %d micro USDC\n", quote.InAmount)
	fmt.Printf("  out:          %d units\n", quote.OutAmount)
	fmt.Printf("  price impact: %.4f%%\n", quote.PriceImpact*100)
	fmt.Printf("  mode:         %s\n", quote.ExecutionMode)
	for _, hop := range quote.Route {
		fmt.Printf("  route:        %s (%s -> %s)\n", hop.Venue, hop.InputMint, hop.OutputMint)
	}
	return nil
}

// PositionsMode prints the wallet's open positions.
func (a *App) PositionsMode(ctx context.Context, deps *Dependencies) error {
	owner := deps.Signer.Address()
	list, err := deps.Matcher.Positions(ctx, owner)
	if err != nil {
		return fmt.Errorf("app: positions: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("no open positions")
		return nil
	}

	var total float64
	fmt.Printf("%-6s %-40s %12s %8s %10s\n", "SIDE", "MARKET", "SHARES", "PRICE", "VALUE")
	for _, p := range list {
		title := p.MarketTitle
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Printf("%-6s %-40s %12s %8.3f %10.2f\n",
			strings.ToUpper(string(p.Side)), title, p.Shares.StringFixed(4), p.MarkPrice, p.Value)
		total += p.Value
	}
	fmt.Printf("total value: %.2f USDC\n", total)
	return nil
}

// BalanceMode prints the wallet's USDC balance.
func (a *App) BalanceMode(ctx context.Context, deps *Dependencies) error {
	owner := deps.Signer.Address()
	deps.Balance.Refresh(ctx, owner)

	balance, known := deps.Balance.Cached()
	if !known {
		return fmt.Errorf("app: balance unavailable for %s", owner)
	}
	fmt.Printf("%s: %s USDC\n", owner, domain.FormatUSDC(balance))
	return nil
}

// SyncMode pages the market catalog into the Redis cache so position
// refreshes can resolve mints without scanning.
func (a *App) SyncMode(ctx context.Context, deps *Dependencies) error {
	if deps.MarketCache == nil {
		return fmt.Errorf("app: sync mode requires redis")
	}

	synced := 0
	for page := 0; page < a.cfg.Catalog.MaxPages; page++ {
		events, err := deps.Catalog.GetEvents(ctx, a.cfg.Catalog.PageSize, page*a.cfg.Catalog.PageSize)
		if err != nil {
			return fmt.Errorf("app: sync page %d: %w", page, err)
		}
		if len(events) == 0 {
			break
		}

		var markets []domain.Market
		for _, e := range events {
			markets = append(markets, e.ToDomainEvent(deps.Catalog.USDCMint()).Markets...)
		}
		if err := deps.MarketCache.SetBatch(ctx, markets); err != nil {
			return fmt.Errorf("app: sync page %d: %w", page, err)
		}
		synced += len(markets)

		if len(events) < a.cfg.Catalog.PageSize {
			break
		}
	}

	a.logger.InfoContext(ctx, "catalog synced", slog.Int("markets", synced))
	fmt.Printf("synced %d markets\n", synced)
	return nil
}

// ArchiveMode ships journal records older than the retention window to
// object storage.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Journal.RetentionDays)
	deleted, err := deps.Archiver.Archive(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("app: archive: %w", err)
	}
	fmt.Printf("archived %d records older than %s\n", deleted, cutoff.Format("2006-01-02"))
	return nil
}

// historyLimit caps how many journal rows HistoryMode prints.
const historyLimit = 50

// HistoryMode prints the wallet's most recent journaled trade attempts,
// newest first.
func (a *App) HistoryMode(ctx context.Context, deps *Dependencies) error {
	owner := deps.Signer.Address()
	recs, err := deps.Recorder.History(ctx, owner, historyLimit)
	if err != nil {
		return fmt.Errorf("app: history: %w", err)
	}

	if len(recs) == 0 {
		fmt.Println("no journaled trades")
		return nil
	}

	fmt.Printf("%-20s %-10s %-6s %12s %-9s %s\n", "TIME", "MARKET", "SIDE", "SPENT", "OUTCOME", "DETAIL")
	for _, r := range recs {
		detail := r.Signature
		if r.Outcome == domain.TradeOutcomeFailed {
			detail = r.Error
		}
		fmt.Printf("%-20s %-10s %-6s %12s %-9s %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.MarketID,
			strings.ToUpper(string(r.Side)),
			domain.FormatUSDC(domain.FromMicroUSDC(r.InAmount))+" USDC",
			r.Outcome,
			detail,
		)
	}
	return nil
}

// tradeIntent builds a TradeIntent from the configured trade section.
func (a *App) tradeIntent() (domain.TradeIntent, error) {
	t := a.cfg.Trade
	if t.OutputMint == "" {
		return domain.TradeIntent{}, fmt.Errorf("app: trade.output_mint is required")
	}
	amount, err := domain.ParseUSDC(t.AmountUSDC)
	if err != nil {
		return domain.TradeIntent{}, fmt.Errorf("app: trade.amount_usdc %q: %w", t.AmountUSDC, err)
	}

	side := domain.Side(strings.ToLower(t.Side))
	if side != domain.SideYes && side != domain.SideNo {
		side = domain.SideYes
	}
	return domain.TradeIntent{
		MarketID:   t.MarketID,
		OutputMint: t.OutputMint,
		AmountUSDC: amount,
		Side:       side,
	}, nil
}
