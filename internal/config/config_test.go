package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "quote"
log_level = "debug"

[dflow]
base_url = "https://quotes.example.com"
poll_interval = "5s"

[trade]
output_mint = "YesMint111111111111111111111111111111111111"
amount_usdc = "25.50"
side = "yes"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "quote", cfg.Mode)
	assert.Equal(t, "https://quotes.example.com", cfg.DFlow.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.DFlow.PollInterval.Duration)
	// untouched sections keep their defaults
	assert.Equal(t, 100, cfg.DFlow.SlippageBps)
	assert.Equal(t, 30, cfg.DFlow.PollMaxAttempts)
	assert.Equal(t, 10, cfg.Catalog.MaxPages)
	assert.Equal(t, "25.50", cfg.Trade.AmountUSDC)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
mode = "balance"

[wallet]
private_key = "from-file"
`)
	t.Setenv("PREDICTBOT_WALLET_PRIVATE_KEY", "from-env")
	t.Setenv("PREDICTBOT_DFLOW_SLIPPAGE_BPS", "250")
	t.Setenv("PREDICTBOT_REDIS_ENABLED", "true")
	t.Setenv("PREDICTBOT_NOTIFY_EVENTS", "trade_failed, trade_succeeded")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Wallet.PrivateKey)
	assert.Equal(t, 250, cfg.DFlow.SlippageBps)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"trade_failed", "trade_succeeded"}, cfg.Notify.Events)
}

func TestValidateBuyModeRequiresWallet(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "buy"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet: either private_key or encrypted_key_path")
}

func TestValidateArchiveModeRequiresStorage(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "archive"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: host must not be empty")
	assert.Contains(t, err.Error(), "s3: bucket must not be empty")
}

func TestValidateHistoryModeRequiresJournal(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "history"
	cfg.Wallet.PrivateKey = "seed"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: host must not be empty")
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "buy"
	cfg.Wallet.PrivateKey = "seed"
	cfg.Trade.Side = "yes"

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "dance"
	cfg.LogLevel = "loud"
	cfg.DFlow.SlippageBps = 20_000
	cfg.Trade.Side = "maybe"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "dance"`)
	assert.Contains(t, err.Error(), `unknown log_level "loud"`)
	assert.Contains(t, err.Error(), "slippage_bps must be 1-10000")
	assert.Contains(t, err.Error(), "side must be yes or no")
}

func TestRedactedConfigMasksSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Wallet.PrivateKey = "super-secret-seed"
	cfg.Postgres.Password = "hunter2"
	cfg.Notify.TelegramToken = "123:abc"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Wallet.PrivateKey)
	assert.Equal(t, "***", red.Postgres.Password)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	// the original is untouched
	assert.Equal(t, "super-secret-seed", cfg.Wallet.PrivateKey)
}
