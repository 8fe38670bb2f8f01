// Package swap provides the fluent order-construction entry point. A Request
// accumulates the trade description step by step; configuration mistakes are
// recorded and surface on the first terminal call instead of panicking
// mid-chain.
package swap

import (
	"fmt"
	"math/big"

	"github.com/cardexlab/cardex/internal/dex"
	"github.com/cardexlab/cardex/internal/domain"
	"github.com/cardexlab/cardex/internal/fees"
	"github.com/cardexlab/cardex/internal/pricing"
)

// DefaultSlippagePercent is applied when the caller never sets a tolerance.
const DefaultSlippagePercent = 1.0

// Credentials identifies the order's sender and optional distinct receiver,
// plus the wallet inputs that fund it.
type Credentials struct {
	SenderKeyHash          string
	SenderStakingKeyHash   string
	ReceiverKeyHash        string
	ReceiverStakingKeyHash string

	SpendUTxOs []domain.SpendUTxO
}

// Request builds one swap order against one venue. Not safe for concurrent
// use; build one Request per order.
type Request struct {
	venue    dex.Dex
	composer *fees.Composer

	pool            *domain.LiquidityPool
	swapInToken     domain.Token
	swapOutToken    domain.Token
	tokensSet       bool
	swapInAmount    *big.Int
	slippagePercent float64

	err error
}

// NewRequest starts a request against venue. composer may be nil to skip the
// platform fee.
func NewRequest(venue dex.Dex, composer *fees.Composer) *Request {
	return &Request{
		venue:           venue,
		composer:        composer,
		swapInAmount:    big.NewInt(0),
		slippagePercent: DefaultSlippagePercent,
	}
}

// ForLiquidityPool selects the pool to trade against.
func (r *Request) ForLiquidityPool(pool *domain.LiquidityPool) *Request {
	r.pool = pool
	return r
}

// WithSwapInToken sets the input side; the output side becomes the pool's
// other token. A token the pool does not contain records an error.
func (r *Request) WithSwapInToken(token domain.Token) *Request {
	if r.err != nil {
		return r
	}
	if r.pool == nil {
		r.err = fmt.Errorf("swap: set a liquidity pool before the swap-in token")
		return r
	}
	other, err := r.pool.OtherToken(token)
	if err != nil {
		r.err = fmt.Errorf("swap: swap-in token: %w", err)
		return r
	}
	r.swapInToken = token
	r.swapOutToken = other
	r.tokensSet = true
	return r
}

// WithSwapOutToken sets the output side; the input side becomes the pool's
// other token.
func (r *Request) WithSwapOutToken(token domain.Token) *Request {
	if r.err != nil {
		return r
	}
	if r.pool == nil {
		r.err = fmt.Errorf("swap: set a liquidity pool before the swap-out token")
		return r
	}
	other, err := r.pool.OtherToken(token)
	if err != nil {
		r.err = fmt.Errorf("swap: swap-out token: %w", err)
		return r
	}
	r.swapOutToken = token
	r.swapInToken = other
	r.tokensSet = true
	return r
}

// WithSwapInAmount sets the exact input. Negative amounts clamp to zero.
func (r *Request) WithSwapInAmount(amount *big.Int) *Request {
	if r.err != nil {
		return r
	}
	if amount == nil || amount.Sign() < 0 {
		r.swapInAmount = big.NewInt(0)
		return r
	}
	r.swapInAmount = new(big.Int).Set(amount)
	return r
}

// WithSwapOutAmount targets an exact output: the input is set to the venue's
// ceiling-rounded EstimatedGive so the pool releases at least amount.
func (r *Request) WithSwapOutAmount(amount *big.Int) *Request {
	if r.err != nil {
		return r
	}
	if !r.tokensSet {
		r.err = fmt.Errorf("swap: set swap tokens before the swap-out amount")
		return r
	}
	if amount == nil || amount.Sign() < 0 {
		r.swapInAmount = big.NewInt(0)
		return r
	}
	give, err := r.venue.EstimatedGive(r.pool, r.swapOutToken, amount)
	if err != nil {
		r.err = fmt.Errorf("swap: swap-out amount: %w", err)
		return r
	}
	r.swapInAmount = give
	return r
}

// WithSlippagePercent sets the slippage tolerance. Negative values record an
// error.
func (r *Request) WithSlippagePercent(percent float64) *Request {
	if r.err != nil {
		return r
	}
	if percent < 0 {
		r.err = fmt.Errorf("swap: negative slippage %.4f%%", percent)
		return r
	}
	r.slippagePercent = percent
	return r
}

// Flip reverses the trade direction. The current input amount is re-expressed
// on the other side: the new input is the amount needed to receive what the
// old direction would have spent.
func (r *Request) Flip() *Request {
	if r.err != nil {
		return r
	}
	if !r.tokensSet {
		r.err = fmt.Errorf("swap: set swap tokens before flipping")
		return r
	}
	oldIn := r.swapInToken
	oldAmount := r.swapInAmount
	r.swapInToken, r.swapOutToken = r.swapOutToken, r.swapInToken

	if oldAmount.Sign() > 0 {
		give, err := r.venue.EstimatedGive(r.pool, oldIn, oldAmount)
		if err != nil {
			r.err = fmt.Errorf("swap: flip: %w", err)
			return r
		}
		r.swapInAmount = give
	}
	return r
}

// SwapInToken returns the configured input token.
func (r *Request) SwapInToken() domain.Token { return r.swapInToken }

// SwapOutToken returns the configured output token.
func (r *Request) SwapOutToken() domain.Token { return r.swapOutToken }

// SwapInAmount returns a copy of the configured input amount.
func (r *Request) SwapInAmount() *big.Int { return new(big.Int).Set(r.swapInAmount) }

// SlippagePercent returns the configured tolerance.
func (r *Request) SlippagePercent() float64 { return r.slippagePercent }

// Err returns the first configuration error recorded, if any.
func (r *Request) Err() error { return r.err }

func (r *Request) ready() error {
	if r.err != nil {
		return r.err
	}
	if r.pool == nil {
		return fmt.Errorf("swap: no liquidity pool selected")
	}
	if !r.tokensSet {
		return fmt.Errorf("swap: no swap tokens selected")
	}
	return nil
}

// EstimatedReceive prices the configured trade.
func (r *Request) EstimatedReceive() (*big.Int, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.venue.EstimatedReceive(r.pool, r.swapInToken, r.swapInAmount)
}

// MinimumReceive applies the slippage tolerance to the estimate.
func (r *Request) MinimumReceive() (*big.Int, error) {
	est, err := r.EstimatedReceive()
	if err != nil {
		return nil, err
	}
	return pricing.MinimumReceive(est, r.slippagePercent)
}

// PriceImpactPercent estimates the trade's impact under the venue's
// convention.
func (r *Request) PriceImpactPercent() (float64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	return r.venue.PriceImpactPercent(r.pool, r.swapInToken, r.swapInAmount)
}

// Payments assembles the order's payment set for the given credentials,
// including the platform fee when a composer is configured.
func (r *Request) Payments(creds Credentials) ([]domain.Payment, error) {
	min, err := r.MinimumReceive()
	if err != nil {
		return nil, err
	}

	params := dex.SwapParams{
		SenderKeyHash:          creds.SenderKeyHash,
		SenderStakingKeyHash:   creds.SenderStakingKeyHash,
		ReceiverKeyHash:        creds.ReceiverKeyHash,
		ReceiverStakingKeyHash: creds.ReceiverStakingKeyHash,
		SwapInToken:            r.swapInToken,
		SwapOutToken:           r.swapOutToken,
		SwapInAmount:           r.swapInAmount,
		MinReceive:             min,
		SpendUTxOs:             creds.SpendUTxOs,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	payments, err := r.venue.BuildSwapOrder(r.pool, params)
	if err != nil {
		return nil, err
	}
	if r.composer != nil {
		payments = r.composer.AppendPlatformFeeIfMissing(payments)
	}
	return payments, nil
}

// Cancel assembles the refund payments for an outstanding order whose
// transaction outputs are given.
func Cancel(venue dex.Dex, outputs []domain.UTxO, returnAddress string) ([]domain.Payment, error) {
	if returnAddress == "" {
		return nil, fmt.Errorf("swap: cancel: return address required")
	}
	return venue.BuildCancelSwapOrder(outputs, returnAddress)
}
