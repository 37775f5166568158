// Package config defines the top-level configuration for the trade client
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by PREDICTBOT_* environment
// variables.
type Config struct {
	Wallet   WalletConfig   `toml:"wallet"`
	DFlow    DFlowConfig    `toml:"dflow"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Chain    ChainConfig    `toml:"chain"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Journal  JournalConfig  `toml:"journal"`
	Trade    TradeConfig    `toml:"trade"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// WalletConfig holds the signing key. PrivateKey is a base58 ed25519 seed;
// alternatively an encrypted keyfile plus password can be used.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// DFlowConfig holds the quote and order status API parameters.
type DFlowConfig struct {
	BaseURL         string   `toml:"base_url"`
	SlippageBps     int      `toml:"slippage_bps"`
	PollMaxAttempts int      `toml:"poll_max_attempts"`
	PollInterval    duration `toml:"poll_interval"`
}

// CatalogConfig holds the market catalog API parameters and the paging
// bounds for position matching.
type CatalogConfig struct {
	BaseURL  string `toml:"base_url"`
	MaxPages int    `toml:"max_pages"`
	PageSize int    `toml:"page_size"`
}

// ChainConfig holds the RPC and websocket endpoints of the ledger node.
type ChainConfig struct {
	RPCEndpoint string   `toml:"rpc_endpoint"`
	WSEndpoint  string   `toml:"ws_endpoint"`
	Timeout     duration `toml:"timeout"`
	MaxRetries  int      `toml:"max_retries"`
}

// PostgresConfig holds connection parameters for the trade journal database.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the market cache.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the journal
// archive.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// JournalConfig controls trade journaling and archival.
type JournalConfig struct {
	Enabled          bool `toml:"enabled"`
	RetentionDays    int  `toml:"retention_days"`
	ArchiveBatchSize int  `toml:"archive_batch_size"`
}

// TradeConfig carries the default trade parameters for buy and quote modes.
// CLI flags override these per invocation.
type TradeConfig struct {
	MarketID   string `toml:"market_id"`
	OutputMint string `toml:"output_mint"`
	Side       string `toml:"side"`
	AmountUSDC string `toml:"amount_usdc"`
}

// NotifyConfig holds notification channel credentials and event filters.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration for TOML decoding of strings like "2s".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration. TOML and environment
// overrides are applied on top of this.
func Defaults() Config {
	return Config{
		DFlow: DFlowConfig{
			BaseURL:         "https://quote-api.dflow.net",
			SlippageBps:     100,
			PollMaxAttempts: 30,
			PollInterval:    duration{2 * time.Second},
		},
		Catalog: CatalogConfig{
			BaseURL:  "https://api.dflow.net/catalog",
			MaxPages: 10,
			PageSize: 100,
		},
		Chain: ChainConfig{
			RPCEndpoint: "https://api.mainnet-beta.solana.com",
			WSEndpoint:  "wss://api.mainnet-beta.solana.com",
			Timeout:     duration{30 * time.Second},
			MaxRetries:  3,
		},
		Postgres: PostgresConfig{
			Port:          5432,
			SSLMode:       "disable",
			PoolMaxConns:  4,
			PoolMinConns:  0,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Journal: JournalConfig{
			RetentionDays:    90,
			ArchiveBatchSize: 500,
		},
		Notify: NotifyConfig{
			Events: []string{"trade_succeeded", "trade_failed"},
		},
		Mode:     "positions",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"buy":       true,
	"quote":     true,
	"positions": true,
	"balance":   true,
	"sync":      true,
	"archive":   true,
	"history":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validSides enumerates the accepted values for TradeConfig.Side.
var validSides = map[string]bool{
	"":    true,
	"yes": true,
	"no":  true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: buy, quote, positions, balance, sync, archive, history)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Wallet — buy signs; quote, balance, positions, and history derive the
	// owner address from the same key.
	needsWallet := mode == "buy" || mode == "quote" || mode == "balance" || mode == "positions" || mode == "history"
	if needsWallet {
		if c.Wallet.PrivateKey == "" && c.Wallet.EncryptedKeyPath == "" {
			errs = append(errs, "wallet: either private_key or encrypted_key_path must be set for mode "+mode)
		}
		if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
			errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
		}
	}

	// DFlow
	if mode == "buy" || mode == "quote" {
		if c.DFlow.BaseURL == "" {
			errs = append(errs, "dflow: base_url must not be empty")
		}
	}
	if c.DFlow.SlippageBps <= 0 || c.DFlow.SlippageBps > 10_000 {
		errs = append(errs, fmt.Sprintf("dflow: slippage_bps must be 1-10000, got %d", c.DFlow.SlippageBps))
	}
	if c.DFlow.PollMaxAttempts < 1 {
		errs = append(errs, "dflow: poll_max_attempts must be >= 1")
	}
	if c.DFlow.PollInterval.Duration <= 0 {
		errs = append(errs, "dflow: poll_interval must be positive")
	}

	// Catalog
	if mode == "positions" || mode == "sync" {
		if c.Catalog.BaseURL == "" {
			errs = append(errs, "catalog: base_url must not be empty")
		}
	}
	if c.Catalog.MaxPages < 1 {
		errs = append(errs, "catalog: max_pages must be >= 1")
	}
	if c.Catalog.PageSize < 1 || c.Catalog.PageSize > 1000 {
		errs = append(errs, fmt.Sprintf("catalog: page_size must be 1-1000, got %d", c.Catalog.PageSize))
	}

	// Chain
	if mode == "buy" || mode == "balance" || mode == "positions" {
		if c.Chain.RPCEndpoint == "" {
			errs = append(errs, "chain: rpc_endpoint must not be empty")
		}
	}
	if c.Chain.MaxRetries < 0 {
		errs = append(errs, "chain: max_retries must be >= 0")
	}

	// Postgres — required when journaling is on and in the modes that read
	// or drain the journal.
	if c.Journal.Enabled || mode == "archive" || mode == "history" {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled || mode == "sync" {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if mode == "archive" {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	// Journal
	if c.Journal.RetentionDays < 1 {
		errs = append(errs, "journal: retention_days must be >= 1")
	}
	if c.Journal.ArchiveBatchSize < 1 {
		errs = append(errs, "journal: archive_batch_size must be >= 1")
	}

	// Trade
	if !validSides[strings.ToLower(c.Trade.Side)] {
		errs = append(errs, fmt.Sprintf("trade: side must be yes or no, got %q", c.Trade.Side))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
