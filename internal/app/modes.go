package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/cardexlab/cardex/internal/aggregator"
	"github.com/cardexlab/cardex/internal/domain"
	"github.com/cardexlab/cardex/internal/swap"
)

// DiscoverMode runs one aggregated pool discovery pass, persists the result
// to the configured store and cache, and exits.
func (a *App) DiscoverMode(ctx context.Context, deps *Dependencies) error {
	pools, err := deps.Aggregator.LiquidityPools(ctx, deps.Provider)
	if err != nil {
		return fmt.Errorf("app: discover: %w", err)
	}
	a.logger.InfoContext(ctx, "discovery complete", slog.Int("pools", len(pools)))

	if deps.PoolStore != nil {
		if err := deps.PoolStore.UpsertBatch(ctx, pools); err != nil {
			return fmt.Errorf("app: persist pools: %w", err)
		}
		count, err := deps.PoolStore.Count(ctx)
		if err != nil {
			return fmt.Errorf("app: count pools: %w", err)
		}
		a.logger.InfoContext(ctx, "pools persisted", slog.Int64("total", count))
	}

	if deps.PoolCache != nil {
		cached := 0
		for _, pool := range pools {
			if err := deps.PoolCache.Set(ctx, pool); err != nil {
				a.logger.Warn("app: cache pool failed",
					slog.String("pool", pool.Identifier),
					slog.String("error", err.Error()),
				)
				continue
			}
			cached++
		}
		a.logger.InfoContext(ctx, "pools cached", slog.Int("cached", cached))
	}

	return nil
}

// QuoteMode prices the configured native-to-token trade on every venue that
// has a matching pool and logs the quotes side by side.
func (a *App) QuoteMode(ctx context.Context, deps *Dependencies) error {
	token, err := parseUnit(a.cfg.Quote.Unit)
	if err != nil {
		return fmt.Errorf("app: quote: %w", err)
	}
	amount := big.NewInt(a.cfg.Quote.Amount)

	pools, err := deps.Aggregator.LiquidityPools(ctx, deps.Provider)
	if err != nil {
		return fmt.Errorf("app: quote discovery: %w", err)
	}
	matching := aggregator.PoolsForPair(pools, domain.Lovelace, token)
	if len(matching) == 0 {
		return fmt.Errorf("app: no pools for %s: %w", a.cfg.Quote.Unit, domain.ErrNotFound)
	}

	venuesByID := make(map[string]int, len(deps.Venues))
	for i, v := range deps.Venues {
		venuesByID[v.Identifier()] = i
	}

	for _, pool := range matching {
		idx, ok := venuesByID[pool.Dex]
		if !ok {
			continue
		}
		req := swap.NewRequest(deps.Venues[idx], deps.Composer).
			ForLiquidityPool(pool).
			WithSwapInToken(domain.Lovelace).
			WithSwapInAmount(amount).
			WithSlippagePercent(a.cfg.Swap.SlippagePercent)

		est, err := req.EstimatedReceive()
		if err != nil {
			a.logger.Warn("app: quote failed",
				slog.String("venue", pool.Dex),
				slog.String("pool", pool.Identifier),
				slog.String("error", err.Error()),
			)
			continue
		}
		min, err := req.MinimumReceive()
		if err != nil {
			return fmt.Errorf("app: minimum receive: %w", err)
		}
		impact, err := req.PriceImpactPercent()
		if err != nil {
			return fmt.Errorf("app: price impact: %w", err)
		}

		a.logger.InfoContext(ctx, "quote",
			slog.String("venue", pool.Dex),
			slog.String("pool", pool.Identifier),
			slog.Float64("mid_price", pool.Price()),
			slog.String("swap_in", amount.String()),
			slog.String("estimated_receive", est.String()),
			slog.String("minimum_receive", min.String()),
			slog.Float64("price_impact_percent", impact),
		)
	}
	return nil
}

// parseUnit converts "lovelace" or "policyId.assetNameHex" into a Token.
func parseUnit(unit string) (domain.Token, error) {
	if unit == domain.LovelaceUnit {
		return domain.Lovelace, nil
	}
	policy, name, ok := strings.Cut(unit, ".")
	if !ok || policy == "" {
		return domain.Token{}, fmt.Errorf("unit %q is not lovelace or policyId.assetNameHex", unit)
	}
	return domain.NewAsset(policy, name, 0), nil
}
