package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CARDEX_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. An empty path skips the
// file and uses defaults plus environment overrides.
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

// applyEnvOverrides reads well-known CARDEX_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Blockfrost.BaseURL, "CARDEX_BLOCKFROST_BASE_URL")
	setStr(&cfg.Blockfrost.ProjectID, "CARDEX_BLOCKFROST_PROJECT_ID")

	setStr(&cfg.Saturn.BaseURL, "CARDEX_SATURN_BASE_URL")
	setBool(&cfg.Saturn.Enabled, "CARDEX_SATURN_ENABLED")

	setBool(&cfg.Postgres.Enabled, "CARDEX_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "CARDEX_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "CARDEX_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "CARDEX_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "CARDEX_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "CARDEX_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "CARDEX_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "CARDEX_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "CARDEX_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "CARDEX_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "CARDEX_POSTGRES_RUN_MIGRATIONS")

	setBool(&cfg.Redis.Enabled, "CARDEX_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "CARDEX_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "CARDEX_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CARDEX_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "CARDEX_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "CARDEX_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "CARDEX_REDIS_TLS_ENABLED")

	setStr(&cfg.Fee.Address, "CARDEX_FEE_ADDRESS")
	setInt64(&cfg.Fee.Amount, "CARDEX_FEE_AMOUNT")

	setDuration(&cfg.Aggregator.Timeout, "CARDEX_AGGREGATOR_TIMEOUT")

	setFloat64(&cfg.Swap.SlippagePercent, "CARDEX_SWAP_SLIPPAGE_PERCENT")

	setStr(&cfg.Quote.Unit, "CARDEX_QUOTE_UNIT")
	setInt64(&cfg.Quote.Amount, "CARDEX_QUOTE_AMOUNT")

	setStr(&cfg.Mode, "CARDEX_MODE")
	setStr(&cfg.LogLevel, "CARDEX_LOG_LEVEL")
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

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
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
