// Package aggregator fans pool discovery out across venues and merges the
// results. One venue failing or timing out never hides the others' pools.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cardexlab/cardex/internal/dex"
	"github.com/cardexlab/cardex/internal/domain"
)

// Aggregator queries a fixed set of venues concurrently.
type Aggregator struct {
	venues  []dex.Dex
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTimeout bounds each discovery fan-out. Zero means no per-call bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

// New creates an Aggregator over venues. logger may be nil.
func New(venues []dex.Dex, logger *slog.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{venues: venues, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Venues returns the configured venue set.
func (a *Aggregator) Venues() []dex.Dex { return a.venues }

// LiquidityPools queries every venue concurrently and merges the results.
// Per-venue failures are logged and swallowed; the merged set deduplicates on
// (venue, pool identifier), first writer wins. The error return is reserved
// for context cancellation.
func (a *Aggregator) LiquidityPools(ctx context.Context, provider domain.DataProvider) ([]*domain.LiquidityPool, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var (
		mu    sync.Mutex
		pools []*domain.LiquidityPool
		seen  = make(map[string]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, venue := range a.venues {
		venue := venue
		g.Go(func() error {
			start := time.Now()
			found, err := venue.LiquidityPools(gctx, provider)
			if err != nil {
				a.logger.Warn("aggregator: venue discovery failed",
					slog.String("venue", venue.Identifier()),
					slog.String("error", err.Error()),
				)
				return nil
			}
			a.logger.Info("aggregator: venue discovery complete",
				slog.String("venue", venue.Identifier()),
				slog.Int("pools", len(found)),
				slog.Duration("elapsed", time.Since(start)),
			)

			mu.Lock()
			defer mu.Unlock()
			for _, pool := range found {
				key := pool.Dex + "/" + pool.Identifier
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				pools = append(pools, pool)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil && len(pools) == 0 {
		return nil, err
	}
	return pools, nil
}

// PoolsForPair filters a merged discovery down to pools containing both
// tokens.
func PoolsForPair(pools []*domain.LiquidityPool, a, b domain.Token) []*domain.LiquidityPool {
	var out []*domain.LiquidityPool
	for _, pool := range pools {
		if pool.Contains(a) && pool.Contains(b) {
			out = append(out, pool)
		}
	}
	return out
}
