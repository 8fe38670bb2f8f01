// Package redis caches discovered liquidity pools so quote paths can resolve
// a trading pair without a fresh discovery pass against every venue.
package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cardexlab/cardex/internal/domain"
	"github.com/redis/go-redis/v9"
)

const poolTTL = 2 * time.Minute

// ClientConfig holds connection parameters for the cache's Redis backend.
type ClientConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	TLSEnabled bool
}

// PoolCache implements domain.PoolCache using JSON-serialized pools with a
// secondary pair index.
//
// Key schema:
//
//	pool:{dex}:{identifier} - JSON-encoded LiquidityPool
//	pool:pair:{pair}        - set of "dex:identifier" members
type PoolCache struct {
	rdb *redis.Client
}

// NewPoolCache dials Redis with the given parameters, verifies connectivity,
// and returns the cache. Close releases the connection.
func NewPoolCache(ctx context.Context, cfg ClientConfig) (*PoolCache, error) {
	opts := &redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &PoolCache{rdb: rdb}, nil
}

// Close closes the underlying Redis connection.
func (pc *PoolCache) Close() error {
	return pc.rdb.Close()
}

func poolKey(dex, identifier string) string { return "pool:" + dex + ":" + identifier }
func pairKey(pair string) string            { return "pool:pair:" + pair }

// Set stores a pool with a short TTL and indexes it under its pair. Reserves
// go stale quickly, so the TTL is deliberately tight.
func (pc *PoolCache) Set(ctx context.Context, pool *domain.LiquidityPool) error {
	data, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("redis: marshal pool %s: %w", pool.Identifier, err)
	}

	key := poolKey(pool.Dex, pool.Identifier)
	pk := pairKey(pool.Pair())

	pipe := pc.rdb.TxPipeline()
	pipe.Set(ctx, key, data, poolTTL)
	pipe.SAdd(ctx, pk, pool.Dex+":"+pool.Identifier)
	pipe.Expire(ctx, pk, poolTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set pool %s: %w", pool.Identifier, err)
	}
	return nil
}

// Get retrieves a pool by venue and identifier. It returns domain.ErrNotFound
// when the key does not exist.
func (pc *PoolCache) Get(ctx context.Context, dex, identifier string) (*domain.LiquidityPool, error) {
	data, err := pc.rdb.Get(ctx, poolKey(dex, identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get pool %s: %w", identifier, err)
	}

	var pool domain.LiquidityPool
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("redis: unmarshal pool %s: %w", identifier, err)
	}
	return &pool, nil
}

// GetByPair returns every cached pool on the given pair across venues.
// Members whose pool entry already expired are skipped.
func (pc *PoolCache) GetByPair(ctx context.Context, pair string) ([]*domain.LiquidityPool, error) {
	members, err := pc.rdb.SMembers(ctx, pairKey(pair)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get pools for pair %s: %w", pair, err)
	}

	pools := make([]*domain.LiquidityPool, 0, len(members))
	for _, member := range members {
		data, err := pc.rdb.Get(ctx, "pool:"+member).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("redis: get pool member %s: %w", member, err)
		}
		var pool domain.LiquidityPool
		if err := json.Unmarshal(data, &pool); err != nil {
			return nil, fmt.Errorf("redis: unmarshal pool member %s: %w", member, err)
		}
		pools = append(pools, &pool)
	}
	return pools, nil
}

// Invalidate removes a pool and its pair index entry.
func (pc *PoolCache) Invalidate(ctx context.Context, dex, identifier string) error {
	pool, err := pc.Get(ctx, dex, identifier)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("redis: invalidate pool %s: %w", identifier, err)
	}

	pipe := pc.rdb.TxPipeline()
	pipe.Del(ctx, poolKey(dex, identifier))
	if err == nil {
		pipe.SRem(ctx, pairKey(pool.Pair()), dex+":"+identifier)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: invalidate pool %s: %w", identifier, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.PoolCache = (*PoolCache)(nil)
