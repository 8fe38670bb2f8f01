package domain

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// LiquidityPool is the normalized in-memory view of one trading pair's
// reserves on a single venue. Pools are immutable once constructed; adapters
// may retag Identifier or Dex after construction but must never mutate the
// reserves.
type LiquidityPool struct {
	// UUID is a process-local handle, unique per constructed instance.
	UUID string `json:"uuid"`
	// Dex is the venue identifier, e.g. "CSwap".
	Dex string `json:"dex"`

	AssetA   Token    `json:"asset_a"`
	AssetB   Token    `json:"asset_b"`
	ReserveA *big.Int `json:"reserve_a"`
	ReserveB *big.Int `json:"reserve_b"`

	PoolAddress  string `json:"pool_address"`
	OrderAddress string `json:"order_address"`

	// FeePercent is the pool's swap fee in percent, within [0, 100).
	FeePercent float64 `json:"fee_percent"`

	LpToken       *Token   `json:"lp_token,omitempty"`
	TotalLpTokens *big.Int `json:"total_lp_tokens,omitempty"`

	// Identifier is the venue-unique stable pool id.
	Identifier string `json:"identifier"`

	// Extra carries opaque venue metadata.
	Extra map[string]any `json:"extra,omitempty"`
}

// NewLiquidityPool constructs a pool for the given venue and pair. Reserves
// are copied so later mutation of the arguments cannot affect the pool.
func NewLiquidityPool(dex string, assetA, assetB Token, reserveA, reserveB *big.Int, poolAddress, orderAddress string) *LiquidityPool {
	return &LiquidityPool{
		UUID:         uuid.NewString(),
		Dex:          dex,
		AssetA:       assetA,
		AssetB:       assetB,
		ReserveA:     new(big.Int).Set(reserveA),
		ReserveB:     new(big.Int).Set(reserveB),
		PoolAddress:  poolAddress,
		OrderAddress: orderAddress,
	}
}

// Pair returns a human-readable pair name, e.g. "lovelace/policyIdAssetName".
func (p *LiquidityPool) Pair() string {
	return p.AssetA.Identifier() + "/" + p.AssetB.Identifier()
}

// Contains reports whether token is one side of the pool.
func (p *LiquidityPool) Contains(token Token) bool {
	return p.AssetA.Equals(token) || p.AssetB.Equals(token)
}

// OtherToken returns the opposite side of the pool relative to token.
func (p *LiquidityPool) OtherToken(token Token) (Token, error) {
	switch {
	case p.AssetA.Equals(token):
		return p.AssetB, nil
	case p.AssetB.Equals(token):
		return p.AssetA, nil
	default:
		return Token{}, fmt.Errorf("pool %s: token %s not in pair: %w", p.Identifier, token, ErrNotFound)
	}
}

// CorrespondingReserves orients the pool's reserves to the given token,
// returning (reserve of token, reserve of the other side).
func (p *LiquidityPool) CorrespondingReserves(token Token) (*big.Int, *big.Int, error) {
	switch {
	case p.AssetA.Equals(token):
		return p.ReserveA, p.ReserveB, nil
	case p.AssetB.Equals(token):
		return p.ReserveB, p.ReserveA, nil
	default:
		return nil, nil, fmt.Errorf("pool %s: token %s not in pair: %w", p.Identifier, token, ErrNotFound)
	}
}

// Price returns the decimal-adjusted mid price of one assetB unit quoted in
// assetA. Display use only; settlement math uses raw reserves.
func (p *LiquidityPool) Price() float64 {
	decA := p.AssetA.Decimals
	if p.AssetA.IsLovelace() {
		decA = 6
	}
	decB := p.AssetB.Decimals
	if p.AssetB.IsLovelace() {
		decB = 6
	}
	a, _ := new(big.Float).SetInt(p.ReserveA).Float64()
	b, _ := new(big.Float).SetInt(p.ReserveB).Float64()
	if b == 0 {
		return 0
	}
	return (a / pow10(decA)) / (b / pow10(decB))
}

func pow10(n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}
