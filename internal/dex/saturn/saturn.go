// Package saturn adapts the SaturnSwap AMM venue. Pools come from the
// venue's backend API rather than chain datums, and orders are assembled
// server-side: the backend returns an unsigned transaction the caller signs
// locally, so the generic payment-building entry points are unsupported.
package saturn

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/cardexlab/cardex/internal/dex"
	"github.com/cardexlab/cardex/internal/domain"
	"github.com/cardexlab/cardex/internal/pricing"
)

// Identifier is the stable venue name.
const Identifier = "SaturnSwap-AMM"

// Saturn implements dex.Dex. Price impact uses the pre/post marginal
// convention.
type Saturn struct {
	api    *Client
	venue  pricing.Venue
	logger *slog.Logger
}

// New creates the adapter. logger may be nil.
func New(api *Client, logger *slog.Logger) *Saturn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saturn{
		api:    api,
		venue:  pricing.DefaultVenue(pricing.ImpactPrePostMarginal),
		logger: logger,
	}
}

// Identifier returns the venue name.
func (s *Saturn) Identifier() string { return Identifier }

// LiquidityPools lists the backend's AMM pools. Records that fail to map are
// counted and skipped; the provider argument is unused because discovery is
// API-based.
func (s *Saturn) LiquidityPools(ctx context.Context, _ domain.DataProvider) ([]*domain.LiquidityPool, error) {
	dtos, err := s.api.GetAmmPools(ctx)
	if err != nil {
		return nil, err
	}

	pools := make([]*domain.LiquidityPool, 0, len(dtos))
	skipped := 0
	for _, dto := range dtos {
		pool, err := poolFromDTO(dto)
		if err != nil {
			skipped++
			s.logger.Debug("saturn: skipping pool record",
				slog.String("pool_id", dto.PoolID),
				slog.String("error", err.Error()),
			)
			continue
		}
		pools = append(pools, pool)
	}
	if skipped > 0 {
		s.logger.Info("saturn: pool discovery complete",
			slog.Int("pools", len(pools)),
			slog.Int("skipped", skipped),
		)
	}
	return pools, nil
}

func poolFromDTO(dto AmmPoolDTO) (*domain.LiquidityPool, error) {
	tokenA, err := unitToToken(dto.AssetA)
	if err != nil {
		return nil, fmt.Errorf("asset a: %w", err)
	}
	tokenB, err := unitToToken(dto.AssetB)
	if err != nil {
		return nil, fmt.Errorf("asset b: %w", err)
	}

	reserveA, ok := new(big.Int).SetString(zeroIfEmpty(dto.ReserveA), 10)
	if !ok {
		return nil, fmt.Errorf("reserve a %q: %w", dto.ReserveA, domain.ErrMalformedRecord)
	}
	reserveB, ok := new(big.Int).SetString(zeroIfEmpty(dto.ReserveB), 10)
	if !ok {
		return nil, fmt.Errorf("reserve b %q: %w", dto.ReserveB, domain.ErrMalformedRecord)
	}
	if reserveA.Sign() < 0 || reserveB.Sign() < 0 {
		return nil, fmt.Errorf("negative reserves: %w", domain.ErrMalformedRecord)
	}

	pool := domain.NewLiquidityPool(Identifier, tokenA, tokenB, reserveA, reserveB, "", "")
	pool.FeePercent = dto.FeePercent
	// The backend provides both id and poolId; poolId is the real one.
	pool.Identifier = dto.PoolID
	if pool.Identifier == "" {
		pool.Identifier = dto.ID
	}
	if pool.Identifier == "" {
		return nil, fmt.Errorf("missing pool identifier: %w", domain.ErrMalformedRecord)
	}
	return pool, nil
}

// unitToToken parses "lovelace" or "policyId.assetNameHex".
func unitToToken(unit string) (domain.Token, error) {
	if unit == "" || unit == domain.LovelaceUnit {
		return domain.Lovelace, nil
	}
	policy, name, ok := strings.Cut(unit, ".")
	if !ok || policy == "" {
		return domain.Token{}, fmt.Errorf("unit %q: %w", unit, domain.ErrMalformedRecord)
	}
	return domain.NewAsset(policy, name, 0), nil
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// EstimatedReceive prices amountIn of swapInToken through pool.
func (s *Saturn) EstimatedReceive(pool *domain.LiquidityPool, swapInToken domain.Token, amountIn *big.Int) (*big.Int, error) {
	reserveIn, reserveOut, err := pool.CorrespondingReserves(swapInToken)
	if err != nil {
		return nil, err
	}
	return s.venue.EstimatedReceive(reserveIn, reserveOut, amountIn, pool.FeePercent), nil
}

// EstimatedGive returns the ceiling-rounded input required to withdraw
// amountOut of swapOutToken.
func (s *Saturn) EstimatedGive(pool *domain.LiquidityPool, swapOutToken domain.Token, amountOut *big.Int) (*big.Int, error) {
	reserveOut, reserveIn, err := pool.CorrespondingReserves(swapOutToken)
	if err != nil {
		return nil, err
	}
	return s.venue.EstimatedGive(reserveIn, reserveOut, amountOut, pool.FeePercent)
}

// PriceImpactPercent uses the pre/post marginal convention.
func (s *Saturn) PriceImpactPercent(pool *domain.LiquidityPool, swapInToken domain.Token, amountIn *big.Int) (float64, error) {
	reserveIn, reserveOut, err := pool.CorrespondingReserves(swapInToken)
	if err != nil {
		return 0, err
	}
	return s.venue.PriceImpactPercent(reserveIn, reserveOut, amountIn, pool.FeePercent), nil
}

// BuildSwapOrder is unsupported: Saturn orders are assembled by the backend
// via BuildUnsignedOrder and signed locally.
func (s *Saturn) BuildSwapOrder(_ *domain.LiquidityPool, _ dex.SwapParams) ([]domain.Payment, error) {
	return nil, fmt.Errorf("saturn: use BuildUnsignedOrder and sign locally: %w", domain.ErrUnsupported)
}

// BuildCancelSwapOrder is unsupported for the AMM; cancels go through the
// venue's CLOB flow.
func (s *Saturn) BuildCancelSwapOrder(_ []domain.UTxO, _ string) ([]domain.Payment, error) {
	return nil, fmt.Errorf("saturn: cancel via the venue's CLOB flow: %w", domain.ErrUnsupported)
}

// SwapOrderFees: the backend folds its fees into the built transaction.
func (s *Saturn) SwapOrderFees() []dex.SwapFee {
	return nil
}

// BuildUnsignedOrder asks the backend for an unsigned AMM order transaction.
// direction is "in" (spend an exact input) or "out" (target an exact
// output); the returned CBOR hex is signed and submitted by the caller's
// wallet provider.
func (s *Saturn) BuildUnsignedOrder(ctx context.Context, poolID, direction string, amount int64, changeAddress string, slippageBps int64, partnerAddress string) (string, error) {
	req := BuildOrderRequest{
		PoolID:         poolID,
		Direction:      direction,
		SlippageBps:    slippageBps,
		ChangeAddress:  changeAddress,
		PartnerAddress: partnerAddress,
	}
	switch direction {
	case "in":
		req.SwapInAmount = amount
	case "out":
		req.SwapOutAmount = amount
	default:
		return "", fmt.Errorf("saturn: unknown direction %q", direction)
	}

	resp, err := s.api.BuildOrder(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.UnsignedCborHex, nil
}

var _ dex.Dex = (*Saturn)(nil)
