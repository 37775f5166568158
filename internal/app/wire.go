package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/arlenwiebe/predictbot/internal/blob/s3"
	"github.com/arlenwiebe/predictbot/internal/cache/redis"
	"github.com/arlenwiebe/predictbot/internal/chain"
	"github.com/arlenwiebe/predictbot/internal/config"
	"github.com/arlenwiebe/predictbot/internal/domain"
	"github.com/arlenwiebe/predictbot/internal/journal"
	"github.com/arlenwiebe/predictbot/internal/notify"
	"github.com/arlenwiebe/predictbot/internal/platform/catalog"
	"github.com/arlenwiebe/predictbot/internal/platform/dflow"
	"github.com/arlenwiebe/predictbot/internal/positions"
	"github.com/arlenwiebe/predictbot/internal/store/postgres"
	"github.com/arlenwiebe/predictbot/internal/trade"
	"github.com/arlenwiebe/predictbot/internal/wallet"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Signer   wallet.Signer
	DFlow    *dflow.Client
	Catalog  *catalog.Client
	Chain    *chain.HTTPClient
	Executor *trade.Executor
	Balance  *trade.BalanceCache
	Matcher  *positions.Matcher

	MarketCache domain.MarketCache
	TradeLog    domain.TradeLogStore
	Recorder    *journal.Recorder
	Archiver    *journal.Archiver
	Notifier    *notify.Notifier
}

// needsChain returns true for modes that talk to the ledger node.
func needsChain(mode string) bool {
	switch mode {
	case "buy", "quote", "balance", "positions":
		return true
	default:
		return false
	}
}

// needsWallet returns true for modes that need the signing key, either to
// sign or to derive the owner address.
func needsWallet(mode string) bool {
	return needsChain(mode) || mode == "history"
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()
	mode := strings.ToLower(cfg.Mode)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Chain clients ---
	if needsChain(mode) {
		var opts []chain.ClientOption
		if cfg.Chain.Timeout.Duration > 0 {
			opts = append(opts, chain.WithTimeout(cfg.Chain.Timeout.Duration))
		}
		if cfg.Chain.MaxRetries > 0 {
			opts = append(opts, chain.WithMaxRetries(cfg.Chain.MaxRetries))
		}
		deps.Chain = chain.NewHTTPClient(cfg.Chain.RPCEndpoint, opts...)
	}

	// --- Wallet ---
	if needsWallet(mode) {
		seed, err := wallet.LoadKey(wallet.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: wallet key: %w", err)
		}
		signer, err := wallet.NewLocalSigner(seed, deps.Chain)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: signer: %w", err)
		}
		deps.Signer = signer
	}

	// --- Venue clients ---
	deps.DFlow = dflow.NewClient(cfg.DFlow.BaseURL, chain.USDCMint)
	deps.Catalog = catalog.NewClient(cfg.Catalog.BaseURL, chain.USDCMint)

	// --- PostgreSQL trade journal ---
	if cfg.Journal.Enabled || mode == "archive" || mode == "history" {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.TradeLog = postgres.NewTradeLogStore(pgClient.Pool())
		deps.Recorder = journal.NewRecorder(deps.TradeLog, logger)
	}

	// --- Redis market cache ---
	if cfg.Redis.Enabled || mode == "sync" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.MarketCache = redis.NewMarketCache(redisClient)
	}

	// --- S3 archive storage ---
	if mode == "archive" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		writer := s3blob.NewWriter(s3Client)
		deps.Archiver = journal.NewArchiver(deps.TradeLog, writer, cfg.Journal.ArchiveBatchSize, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Trade executor ---
	if mode == "buy" || mode == "quote" || mode == "balance" {
		if deps.Chain != nil {
			deps.Balance = trade.NewBalanceCache(deps.Chain, chain.USDCMint, logger)
		}

		var confirmer trade.TransactionConfirmer
		var waiter trade.CompletionWaiter
		if deps.Chain != nil {
			ws := chain.NewWSClient(cfg.Chain.WSEndpoint, logger)
			confirmer = chain.NewConfirmer(deps.Chain, ws, logger)
		}
		waiter = dflow.NewStatusPoller(deps.DFlow, cfg.DFlow.PollMaxAttempts, cfg.DFlow.PollInterval.Duration, logger)

		deps.Executor = trade.NewExecutor(
			deps.DFlow, deps.Signer, waiter, confirmer,
			deps.Balance, cfg.DFlow.SlippageBps, logger,
		)
		if deps.Recorder != nil {
			deps.Executor.SetRecorder(deps.Recorder)
		}
		deps.Executor.SetEmitter(deps.Notifier)
	}

	// --- Position matcher ---
	if mode == "positions" {
		deps.Matcher = positions.NewMatcher(deps.Chain, deps.Catalog, positions.Config{
			MaxPages: cfg.Catalog.MaxPages,
			PageSize: cfg.Catalog.PageSize,
		}, logger)
		if deps.MarketCache != nil {
			deps.Matcher.SetCache(deps.MarketCache)
		}
	}

	return deps, cleanup, nil
}
