package domain

import "context"

// PoolCache is short-lived storage for discovered pools, keyed by venue and
// pool identifier with a secondary pair index.
type PoolCache interface {
	Set(ctx context.Context, pool *LiquidityPool) error
	Get(ctx context.Context, dex, identifier string) (*LiquidityPool, error)
	GetByPair(ctx context.Context, pair string) ([]*LiquidityPool, error)
	Invalidate(ctx context.Context, dex, identifier string) error
}

// PoolStore is durable storage for discovered pools.
type PoolStore interface {
	Upsert(ctx context.Context, pool *LiquidityPool) error
	UpsertBatch(ctx context.Context, pools []*LiquidityPool) error
	GetByIdentifier(ctx context.Context, dex, identifier string) (*LiquidityPool, error)
	ListByVenue(ctx context.Context, dex string, limit int) ([]*LiquidityPool, error)
	Count(ctx context.Context) (int64, error)
}
