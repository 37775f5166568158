package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PREDICTBOT_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PREDICTBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "PREDICTBOT_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "PREDICTBOT_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "PREDICTBOT_WALLET_KEY_PASSWORD")

	// ── DFlow ──
	setStr(&cfg.DFlow.BaseURL, "PREDICTBOT_DFLOW_BASE_URL")
	setInt(&cfg.DFlow.SlippageBps, "PREDICTBOT_DFLOW_SLIPPAGE_BPS")
	setInt(&cfg.DFlow.PollMaxAttempts, "PREDICTBOT_DFLOW_POLL_MAX_ATTEMPTS")
	setDuration(&cfg.DFlow.PollInterval, "PREDICTBOT_DFLOW_POLL_INTERVAL")

	// ── Catalog ──
	setStr(&cfg.Catalog.BaseURL, "PREDICTBOT_CATALOG_BASE_URL")
	setInt(&cfg.Catalog.MaxPages, "PREDICTBOT_CATALOG_MAX_PAGES")
	setInt(&cfg.Catalog.PageSize, "PREDICTBOT_CATALOG_PAGE_SIZE")

	// ── Chain ──
	setStr(&cfg.Chain.RPCEndpoint, "PREDICTBOT_CHAIN_RPC_ENDPOINT")
	setStr(&cfg.Chain.WSEndpoint, "PREDICTBOT_CHAIN_WS_ENDPOINT")
	setDuration(&cfg.Chain.Timeout, "PREDICTBOT_CHAIN_TIMEOUT")
	setInt(&cfg.Chain.MaxRetries, "PREDICTBOT_CHAIN_MAX_RETRIES")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "PREDICTBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PREDICTBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PREDICTBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PREDICTBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PREDICTBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PREDICTBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PREDICTBOT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PREDICTBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PREDICTBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PREDICTBOT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PREDICTBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PREDICTBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PREDICTBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PREDICTBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PREDICTBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PREDICTBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PREDICTBOT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "PREDICTBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PREDICTBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "PREDICTBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "PREDICTBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PREDICTBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PREDICTBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PREDICTBOT_S3_FORCE_PATH_STYLE")

	// ── Journal ──
	setBool(&cfg.Journal.Enabled, "PREDICTBOT_JOURNAL_ENABLED")
	setInt(&cfg.Journal.RetentionDays, "PREDICTBOT_JOURNAL_RETENTION_DAYS")
	setInt(&cfg.Journal.ArchiveBatchSize, "PREDICTBOT_JOURNAL_ARCHIVE_BATCH_SIZE")

	// ── Trade ──
	setStr(&cfg.Trade.MarketID, "PREDICTBOT_TRADE_MARKET_ID")
	setStr(&cfg.Trade.OutputMint, "PREDICTBOT_TRADE_OUTPUT_MINT")
	setStr(&cfg.Trade.Side, "PREDICTBOT_TRADE_SIDE")
	setStr(&cfg.Trade.AmountUSDC, "PREDICTBOT_TRADE_AMOUNT_USDC")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PREDICTBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PREDICTBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PREDICTBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PREDICTBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "PREDICTBOT_MODE")
	setStr(&cfg.LogLevel, "PREDICTBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
