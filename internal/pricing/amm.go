// Package pricing implements constant-product swap math. All amounts are
// on-chain integer units; rounding always favors the pool: receive estimates
// round down, give estimates round up.
package pricing

import (
	"fmt"
	"math"
	"math/big"

	"github.com/cardexlab/cardex/internal/domain"
)

// BpsDenominator is the basis-point resolution used for slippage tolerances.
const BpsDenominator = 10_000

// ImpactConvention selects how price impact is measured. Venues disagree on
// this, so it is per-venue configuration, not a universal rule.
type ImpactConvention int

const (
	// ImpactRealizedVsMarginal compares the realized average execution price
	// against the pre-trade marginal price, as a symmetric relative
	// difference.
	ImpactRealizedVsMarginal ImpactConvention = iota
	// ImpactPrePostMarginal compares the pre-trade and post-trade marginal
	// prices.
	ImpactPrePostMarginal
)

// Venue holds the per-venue pricing constants. The zero value is not usable;
// construct with DefaultVenue or set fields explicitly.
type Venue struct {
	// FeeDenominator is the resolution of the venue's fee rate. Most venues
	// quote fees in basis points (10_000).
	FeeDenominator int64
	Impact         ImpactConvention
}

// DefaultVenue returns basis-point fee resolution with the given impact
// convention.
func DefaultVenue(impact ImpactConvention) Venue {
	return Venue{FeeDenominator: BpsDenominator, Impact: impact}
}

// feeParts converts a fee percentage into (denominator - feeNumerator,
// denominator) at the venue's resolution.
func (v Venue) feeParts(feePercent float64) (feeModifier, feeDenom *big.Int) {
	denom := v.FeeDenominator
	if denom <= 0 {
		denom = BpsDenominator
	}
	feeNumerator := int64(math.Round(feePercent / 100 * float64(denom)))
	return big.NewInt(denom - feeNumerator), big.NewInt(denom)
}

// EstimatedReceive returns the output amount the pool will release for
// amountIn of the input-side token, after the proportional fee is removed
// from the input leg. The result is floored so the pool is never over-paid.
//
//	floor(amountIn * (D - fee) * Rout / (Rin * D + amountIn * (D - fee)))
func (v Venue) EstimatedReceive(reserveIn, reserveOut, amountIn *big.Int, feePercent float64) *big.Int {
	if amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return big.NewInt(0)
	}
	feeMul, feeDenom := v.feeParts(feePercent)

	numerator := new(big.Int).Mul(amountIn, feeMul)
	numerator.Mul(numerator, reserveOut)

	denominator := new(big.Int).Mul(reserveIn, feeDenom)
	denominator.Add(denominator, new(big.Int).Mul(amountIn, feeMul))

	return numerator.Quo(numerator, denominator)
}

// EstimatedGive returns the input amount required to withdraw at least
// amountOut from the output side, ceiling-rounded so the computed input
// always suffices. Asking for the whole output reserve (or more) fails with
// domain.ErrInsufficientLiquidity.
func (v Venue) EstimatedGive(reserveIn, reserveOut, amountOut *big.Int, feePercent float64) (*big.Int, error) {
	if amountOut.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("pricing: amount out %s >= reserve %s: %w", amountOut, reserveOut, domain.ErrInsufficientLiquidity)
	}
	feeMul, feeDenom := v.feeParts(feePercent)

	numerator := new(big.Int).Mul(amountOut, reserveIn)
	numerator.Mul(numerator, feeDenom)

	denominator := new(big.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, feeMul)
	if denominator.Sign() <= 0 {
		return nil, fmt.Errorf("pricing: non-positive denominator: %w", domain.ErrInsufficientLiquidity)
	}

	// Ceiling division.
	numerator.Add(numerator, new(big.Int).Sub(denominator, big.NewInt(1)))
	return numerator.Quo(numerator, denominator), nil
}

// PriceImpactPercent estimates how far the trade moves the price, in percent,
// using the venue's configured convention. Zero input or an empty reserve
// yields zero impact.
func (v Venue) PriceImpactPercent(reserveIn, reserveOut, amountIn *big.Int, feePercent float64) float64 {
	if amountIn.Sign() == 0 || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return 0
	}
	out := v.EstimatedReceive(reserveIn, reserveOut, amountIn, feePercent)
	if out.Sign() == 0 {
		return 0
	}

	rIn := toFloat(reserveIn)
	rOut := toFloat(reserveOut)
	in := toFloat(amountIn)
	received := toFloat(out)

	switch v.Impact {
	case ImpactPrePostMarginal:
		p0 := rOut / rIn
		p1 := (rOut - received) / (rIn + in)
		return (p0 - p1) / p0 * 100
	default:
		realized := in / received
		marginal := rIn / rOut
		return math.Abs(realized-marginal) / ((realized + marginal) / 2) * 100
	}
}

// MinimumReceive applies a slippage tolerance to an estimated receive:
// floor(estimated / (1 + slippagePercent/100)), computed with integer
// rationals at basis-point resolution.
func MinimumReceive(estimated *big.Int, slippagePercent float64) (*big.Int, error) {
	if slippagePercent < 0 {
		return nil, fmt.Errorf("pricing: negative slippage %.4f%%", slippagePercent)
	}
	slipBps := int64(math.Round(slippagePercent * 100))
	num := new(big.Int).Mul(estimated, big.NewInt(BpsDenominator))
	return num.Quo(num, big.NewInt(BpsDenominator+slipBps)), nil
}

// SlippageBps re-derives the discrete on-chain slippage tolerance from the
// estimated and minimum receive amounts:
// round((1 - minimum/estimated) * 10_000), clamped to [0, 10_000].
func SlippageBps(estimated, minimum *big.Int) int64 {
	if estimated.Sign() <= 0 {
		return BpsDenominator
	}
	diff := new(big.Int).Sub(estimated, minimum)
	n := diff.Mul(diff, big.NewInt(BpsDenominator))

	// round(n / estimated) = floor((2n + estimated) / (2 * estimated))
	r := new(big.Int).Lsh(n, 1)
	r.Add(r, estimated)
	r.Quo(r, new(big.Int).Lsh(estimated, 1))

	bps := r.Int64()
	if bps < 0 {
		return 0
	}
	if bps > BpsDenominator {
		return BpsDenominator
	}
	return bps
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
