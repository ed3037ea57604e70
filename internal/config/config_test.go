package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "paper", cfg.Trading.Mode)
	assert.Equal(t, 0.001, cfg.Trading.Quantity)
	assert.Equal(t, "USDT", cfg.Trading.QuoteSuffix)
	assert.Equal(t, 20, cfg.Trading.Retention)
	assert.Equal(t, "./results", cfg.Trading.ResultsDir)
	assert.Equal(t, LedgerBackendFile, cfg.Ledger.Backend)
	assert.Equal(t, filepath.Join("./results", "ledger.db"), cfg.Ledger.SQLitePath)
	assert.Equal(t, "30m", cfg.Schedule.Interval)
	assert.Equal(t, 15, cfg.Binance.TimeoutSeconds)
	assert.False(t, cfg.Binance.Enabled())
}

func TestLoadIncludesAndOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
trading:
  quantity: 0.01
  retention: 50
schedule:
  symbols: [btc, eth]
`)
	path := writeFile(t, dir, "config.yaml", `
include:
  - base.yaml
trading:
  quantity: 0.02
  mode: LIVE
ledger:
  backend: sqlite
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.02, cfg.Trading.Quantity)
	assert.Equal(t, 50, cfg.Trading.Retention)
	assert.Equal(t, "live", cfg.Trading.Mode)
	assert.Equal(t, LedgerBackendSQLite, cfg.Ledger.Backend)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.Schedule.Symbols)
}

func TestLoadIncludeCycle(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include: [b.yaml]\n")
	writeFile(t, dir, "b.yaml", "include: [a.yaml]\n")
	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "schedule:\n  interval: 1h\n")
	t.Setenv("BINANCE_API_KEY", "key")
	t.Setenv("BINANCE_API_SECRET", "secret")
	t.Setenv("AUTO_TICKER", "sol,btc")
	t.Setenv("AUTO_INTERVAL", "15m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Binance.Enabled())
	assert.Equal(t, []string{"SOL", "BTC"}, cfg.Schedule.Symbols)
	assert.Equal(t, "15m", cfg.Schedule.Interval)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "notify:\n  telegram:\n    enabled: true\n")
	writeFile(t, dir, ".env", "TELEGRAM_BOT_TOKEN=abc\nTELEGRAM_CHAT_ID=42\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("TELEGRAM_BOT_TOKEN")
		_ = os.Unsetenv("TELEGRAM_CHAT_ID")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Notify.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Notify.Telegram.ChatID)
}

func TestValidation(t *testing.T) {
	cases := map[string]string{
		"bad mode":        "trading:\n  mode: margin\n",
		"bad backend":     "ledger:\n  backend: postgres\n",
		"bad interval":    "schedule:\n  interval: soon\n",
		"no symbols":      "schedule:\n  enabled: true\n",
		"negative qty":    "trading:\n  quantity: -1\n",
		"telegram no key": "notify:\n  telegram:\n    enabled: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			_, err := Load(writeFile(t, dir, "config.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestNormalizeSymbols(t *testing.T) {
	assert.Equal(t, []string{"BTC", "ETH"}, normalizeSymbols([]string{" btc,eth ", "BTC", ""}))
	assert.Nil(t, normalizeSymbols([]string{" , "}))
}
