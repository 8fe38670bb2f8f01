package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "quote"
log_level = "debug"

[blockfrost]
project_id = "mainnet123"

[fee]
amount = 1500000

[aggregator]
timeout = "45s"

[quote]
unit = "1d7f33bd.cafe"
amount = 10000000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "quote", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "mainnet123", cfg.Blockfrost.ProjectID)
	assert.Equal(t, int64(1_500_000), cfg.Fee.Amount)
	assert.Equal(t, 45*time.Second, cfg.Aggregator.Timeout.Duration)

	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultFeeAddress, cfg.Fee.Address)
	assert.Equal(t, "https://cardano-mainnet.blockfrost.io/api/v0", cfg.Blockfrost.BaseURL)
	assert.True(t, cfg.Saturn.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := writeConfig(t, `
[blockfrost]
project_id = "from-file"
`)

	t.Setenv("CARDEX_BLOCKFROST_PROJECT_ID", "from-env")
	t.Setenv("CARDEX_FEE_AMOUNT", "3000000")
	t.Setenv("CARDEX_SATURN_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Blockfrost.ProjectID)
	assert.Equal(t, int64(3_000_000), cfg.Fee.Amount)
	assert.False(t, cfg.Saturn.Enabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Mode = "yolo" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
		{"missing project id", func(c *Config) { c.Blockfrost.ProjectID = "" }},
		{"negative fee", func(c *Config) { c.Fee.Amount = -1 }},
		{"negative slippage", func(c *Config) { c.Swap.SlippagePercent = -0.5 }},
		{"quote mode without unit", func(c *Config) { c.Mode = "quote"; c.Quote.Amount = 1 }},
		{"redis enabled without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
	}
	for _, tc := range cases {
		cfg := Defaults()
		cfg.Blockfrost.ProjectID = "mainnet123"
		tc.mutate(&cfg)
		assert.Error(t, cfg.Validate(), tc.name)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "discover", cfg.Mode)
	assert.Equal(t, int64(2_000_000), cfg.Fee.Amount)
}
