// Package config defines the top-level configuration for the order
// construction toolkit and provides validation helpers.
package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by CARDEX_* environment variables.
type Config struct {
	Blockfrost BlockfrostConfig `toml:"blockfrost"`
	Saturn     SaturnConfig     `toml:"saturn"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	Fee        FeeConfig        `toml:"fee"`
	Aggregator AggregatorConfig `toml:"aggregator"`
	Swap       SwapConfig       `toml:"swap"`
	Quote      QuoteConfig      `toml:"quote"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// BlockfrostConfig holds chain data provider credentials.
type BlockfrostConfig struct {
	BaseURL   string `toml:"base_url"`
	ProjectID string `toml:"project_id"`
}

// SaturnConfig holds the SaturnSwap backend endpoint.
type SaturnConfig struct {
	BaseURL string `toml:"base_url"`
	Enabled bool   `toml:"enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
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

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// FeeConfig holds the platform fee the toolkit appends to built orders.
// Amount is in lovelace; an empty address disables the fee.
type FeeConfig struct {
	Address string `toml:"address"`
	Amount  int64  `toml:"amount"`
}

// FeeAmount returns the configured fee amount as a big integer.
func (f FeeConfig) FeeAmount() *big.Int {
	return big.NewInt(f.Amount)
}

// AggregatorConfig holds discovery fan-out parameters.
type AggregatorConfig struct {
	Timeout duration `toml:"timeout"`
}

// SwapConfig holds order-construction defaults.
type SwapConfig struct {
	SlippagePercent float64 `toml:"slippage_percent"`
}

// QuoteConfig describes the trade priced in quote mode. Unit is "lovelace"
// or "policyId.assetNameHex"; Amount is the native-unit input size.
type QuoteConfig struct {
	Unit   string `toml:"unit"`
	Amount int64  `toml:"amount"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
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

// DefaultFeeAddress receives the toolkit's platform fee unless overridden.
const DefaultFeeAddress = "addr1q9s6m9d8yedfcf53yhq5j5zsg0s58wpzamwexrxpfelgz2wgk0s9l9fqc93tyc8zu4z7hp9dlska2kew9trdg8nscjcq3sk5s3"

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Blockfrost: BlockfrostConfig{
			BaseURL: "https://cardano-mainnet.blockfrost.io/api/v0",
		},
		Saturn: SaturnConfig{
			BaseURL: "https://api.saturnswap.io/v1",
			Enabled: true,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "cardex",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		Fee: FeeConfig{
			Address: DefaultFeeAddress,
			Amount:  2_000_000,
		},
		Aggregator: AggregatorConfig{
			Timeout: duration{30 * time.Second},
		},
		Swap: SwapConfig{
			SlippagePercent: 1.0,
		},
		Mode:     "discover",
		LogLevel: "info",
	}
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	var problems []string

	switch c.Mode {
	case "discover", "quote":
	default:
		problems = append(problems, fmt.Sprintf("mode %q is not one of discover, quote", c.Mode))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.Blockfrost.ProjectID == "" {
		problems = append(problems, "blockfrost.project_id is required")
	}
	if c.Saturn.Enabled && c.Saturn.BaseURL == "" {
		problems = append(problems, "saturn.base_url is required when saturn is enabled")
	}
	if c.Fee.Amount < 0 {
		problems = append(problems, "fee.amount must not be negative")
	}
	if c.Swap.SlippagePercent < 0 {
		problems = append(problems, "swap.slippage_percent must not be negative")
	}
	if c.Mode == "quote" {
		if c.Quote.Unit == "" {
			problems = append(problems, "quote.unit is required in quote mode")
		}
		if c.Quote.Amount <= 0 {
			problems = append(problems, "quote.amount must be positive in quote mode")
		}
	}
	if c.Postgres.Enabled && c.Postgres.DSN == "" && c.Postgres.Host == "" {
		problems = append(problems, "postgres.dsn or postgres.host is required when postgres is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, "redis.addr is required when redis is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
