package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardexlab/cardex/internal/aggregator"
	"github.com/cardexlab/cardex/internal/cache/redis"
	"github.com/cardexlab/cardex/internal/config"
	"github.com/cardexlab/cardex/internal/dex"
	"github.com/cardexlab/cardex/internal/dex/cswap"
	"github.com/cardexlab/cardex/internal/dex/saturn"
	"github.com/cardexlab/cardex/internal/domain"
	"github.com/cardexlab/cardex/internal/fees"
	"github.com/cardexlab/cardex/internal/provider/blockfrost"
	"github.com/cardexlab/cardex/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Provider   domain.DataProvider
	Venues     []dex.Dex
	Aggregator *aggregator.Aggregator
	Composer   *fees.Composer

	// Optional; nil when the backing service is disabled.
	PoolStore domain.PoolStore
	PoolCache domain.PoolCache
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Provider: blockfrost.NewClient(cfg.Blockfrost.BaseURL, cfg.Blockfrost.ProjectID),
		Composer: fees.NewComposer(cfg.Fee.Address, cfg.Fee.FeeAmount()),
	}

	// --- Venues ---
	deps.Venues = append(deps.Venues, cswap.New(logger))
	if cfg.Saturn.Enabled {
		deps.Venues = append(deps.Venues, saturn.New(saturn.NewClient(cfg.Saturn.BaseURL), logger))
	}
	deps.Aggregator = aggregator.New(deps.Venues, logger,
		aggregator.WithTimeout(cfg.Aggregator.Timeout.Duration))

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
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
			return nil, nil, fmt.Errorf("app: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("app: migrations: %w", err)
			}
		}
		deps.PoolStore = postgres.NewPoolStore(pgClient.Pool())
	}

	// --- Redis ---
	if cfg.Redis.Enabled {
		poolCache, err := redis.NewPoolCache(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: redis: %w", err)
		}
		closers = append(closers, func() { _ = poolCache.Close() })
		deps.PoolCache = poolCache
	}

	return deps, cleanup, nil
}
