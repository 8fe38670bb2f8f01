package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardexlab/cardex/internal/domain"
)

// PoolStore implements domain.PoolStore using PostgreSQL. Reserves are
// NUMERIC columns moved as decimal strings so arbitrary-precision amounts
// survive the round trip.
type PoolStore struct {
	pool *pgxpool.Pool
}

// NewPoolStore creates a new PoolStore backed by the given connection pool.
func NewPoolStore(pool *pgxpool.Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

const upsertPoolQuery = `
	INSERT INTO liquidity_pools (
		dex, identifier,
		asset_a_policy, asset_a_name, asset_a_decimals,
		asset_b_policy, asset_b_name, asset_b_decimals,
		reserve_a, reserve_b,
		pool_address, order_address, fee_percent,
		lp_token_policy, lp_token_name, total_lp_tokens,
		updated_at
	) VALUES (
		$1, $2,
		$3, $4, $5,
		$6, $7, $8,
		$9::numeric, $10::numeric,
		$11, $12, $13,
		$14, $15, $16::numeric,
		NOW()
	)
	ON CONFLICT (dex, identifier) DO UPDATE SET
		asset_a_policy   = EXCLUDED.asset_a_policy,
		asset_a_name     = EXCLUDED.asset_a_name,
		asset_a_decimals = EXCLUDED.asset_a_decimals,
		asset_b_policy   = EXCLUDED.asset_b_policy,
		asset_b_name     = EXCLUDED.asset_b_name,
		asset_b_decimals = EXCLUDED.asset_b_decimals,
		reserve_a        = EXCLUDED.reserve_a,
		reserve_b        = EXCLUDED.reserve_b,
		pool_address     = EXCLUDED.pool_address,
		order_address    = EXCLUDED.order_address,
		fee_percent      = EXCLUDED.fee_percent,
		lp_token_policy  = EXCLUDED.lp_token_policy,
		lp_token_name    = EXCLUDED.lp_token_name,
		total_lp_tokens  = EXCLUDED.total_lp_tokens,
		updated_at       = NOW()`

func upsertArgs(p *domain.LiquidityPool) []any {
	var lpPolicy, lpName *string
	var totalLp *string
	if p.LpToken != nil {
		lpPolicy = &p.LpToken.PolicyID
		lpName = &p.LpToken.AssetNameHex
	}
	if p.TotalLpTokens != nil {
		s := p.TotalLpTokens.String()
		totalLp = &s
	}
	return []any{
		p.Dex, p.Identifier,
		p.AssetA.PolicyID, p.AssetA.AssetNameHex, p.AssetA.Decimals,
		p.AssetB.PolicyID, p.AssetB.AssetNameHex, p.AssetB.Decimals,
		p.ReserveA.String(), p.ReserveB.String(),
		p.PoolAddress, p.OrderAddress, p.FeePercent,
		lpPolicy, lpName, totalLp,
	}
}

// Upsert inserts or updates a single pool.
func (s *PoolStore) Upsert(ctx context.Context, p *domain.LiquidityPool) error {
	if _, err := s.pool.Exec(ctx, upsertPoolQuery, upsertArgs(p)...); err != nil {
		return fmt.Errorf("postgres: upsert pool %s/%s: %w", p.Dex, p.Identifier, err)
	}
	return nil
}

// UpsertBatch inserts or updates multiple pools in a single batch operation.
func (s *PoolStore) UpsertBatch(ctx context.Context, pools []*domain.LiquidityPool) error {
	if len(pools) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range pools {
		batch.Queue(upsertPoolQuery, upsertArgs(p)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range pools {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert pool batch item %d: %w", i, err)
		}
	}
	return nil
}

const selectPoolColumns = `
	dex, identifier,
	asset_a_policy, asset_a_name, asset_a_decimals,
	asset_b_policy, asset_b_name, asset_b_decimals,
	reserve_a::text, reserve_b::text,
	pool_address, order_address, fee_percent,
	lp_token_policy, lp_token_name, total_lp_tokens::text`

// scanPool scans a single pool row into a domain.LiquidityPool.
func scanPool(row pgx.Row) (*domain.LiquidityPool, error) {
	var (
		p                  domain.LiquidityPool
		reserveA, reserveB string
		lpPolicy, lpName   *string
		totalLp            *string
	)
	err := row.Scan(
		&p.Dex, &p.Identifier,
		&p.AssetA.PolicyID, &p.AssetA.AssetNameHex, &p.AssetA.Decimals,
		&p.AssetB.PolicyID, &p.AssetB.AssetNameHex, &p.AssetB.Decimals,
		&reserveA, &reserveB,
		&p.PoolAddress, &p.OrderAddress, &p.FeePercent,
		&lpPolicy, &lpName, &totalLp,
	)
	if err != nil {
		return nil, err
	}

	var ok bool
	if p.ReserveA, ok = new(big.Int).SetString(reserveA, 10); !ok {
		return nil, fmt.Errorf("reserve_a %q: %w", reserveA, domain.ErrMalformedRecord)
	}
	if p.ReserveB, ok = new(big.Int).SetString(reserveB, 10); !ok {
		return nil, fmt.Errorf("reserve_b %q: %w", reserveB, domain.ErrMalformedRecord)
	}
	if lpPolicy != nil && lpName != nil {
		lp := domain.NewAsset(*lpPolicy, *lpName, 0)
		p.LpToken = &lp
	}
	if totalLp != nil {
		if p.TotalLpTokens, ok = new(big.Int).SetString(*totalLp, 10); !ok {
			return nil, fmt.Errorf("total_lp_tokens %q: %w", *totalLp, domain.ErrMalformedRecord)
		}
	}
	return &p, nil
}

// GetByIdentifier fetches one pool by venue and identifier. It returns
// domain.ErrNotFound when no row matches.
func (s *PoolStore) GetByIdentifier(ctx context.Context, dex, identifier string) (*domain.LiquidityPool, error) {
	query := "SELECT " + selectPoolColumns + `
		FROM liquidity_pools
		WHERE dex = $1 AND identifier = $2`

	p, err := scanPool(s.pool.QueryRow(ctx, query, dex, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get pool %s/%s: %w", dex, identifier, err)
	}
	return p, nil
}

// ListByVenue returns up to limit pools for one venue, most recently updated
// first. limit <= 0 means no limit.
func (s *PoolStore) ListByVenue(ctx context.Context, dex string, limit int) ([]*domain.LiquidityPool, error) {
	query := "SELECT " + selectPoolColumns + `
		FROM liquidity_pools
		WHERE dex = $1
		ORDER BY updated_at DESC`
	args := []any{dex}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list pools for %s: %w", dex, err)
	}
	defer rows.Close()

	var pools []*domain.LiquidityPool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan pool: %w", err)
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list pools for %s: %w", dex, err)
	}
	return pools, nil
}

// Count returns the total number of stored pools.
func (s *PoolStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM liquidity_pools").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count pools: %w", err)
	}
	return count, nil
}

// Compile-time interface check.
var _ domain.PoolStore = (*PoolStore)(nil)
