// Package dex defines the capability interface every venue adapter
// implements, plus the parameter and fee types shared between the swap
// request layer and the adapters.
package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cardexlab/cardex/internal/domain"
)

// SwapParams carries everything a venue needs to assemble one swap order.
// MinReceive is the already slippage-adjusted target; adapters apply their
// own platform take-rate and deposits on top of it.
type SwapParams struct {
	SenderKeyHash          string
	SenderStakingKeyHash   string
	ReceiverKeyHash        string
	ReceiverStakingKeyHash string

	SwapInToken  domain.Token
	SwapOutToken domain.Token
	SwapInAmount *big.Int
	MinReceive   *big.Int

	SpendUTxOs []domain.SpendUTxO
}

// Validate checks the fields every venue requires.
func (p SwapParams) Validate() error {
	if p.SenderKeyHash == "" {
		return fmt.Errorf("dex: sender key hash: %w", domain.ErrMissingCredentials)
	}
	if p.SwapInAmount == nil || p.SwapInAmount.Sign() <= 0 {
		return fmt.Errorf("dex: swap-in amount must be positive")
	}
	if p.MinReceive == nil || p.MinReceive.Sign() <= 0 {
		return fmt.Errorf("dex: minimum receive must be positive")
	}
	return nil
}

// SwapFee describes one fixed fee a venue attaches to every order.
type SwapFee struct {
	ID          string
	Title       string
	Description string
	Value       *big.Int
	// IsReturned is true for deposits refunded on settlement or cancel,
	// false for consumed fees such as the batcher fee.
	IsReturned bool
}

// Dex is implemented once per venue. Implementations are stateless and safe
// for concurrent use; all chain access goes through the supplied provider.
type Dex interface {
	// Identifier returns the stable venue name.
	Identifier() string

	// LiquidityPools discovers the venue's pools. A single malformed record
	// must be skipped, never escalated to an error.
	LiquidityPools(ctx context.Context, provider domain.DataProvider) ([]*domain.LiquidityPool, error)

	// EstimatedReceive prices a swap of amountIn of swapInToken through pool.
	EstimatedReceive(pool *domain.LiquidityPool, swapInToken domain.Token, amountIn *big.Int) (*big.Int, error)

	// EstimatedGive returns the input required to withdraw amountOut of
	// swapOutToken from pool.
	EstimatedGive(pool *domain.LiquidityPool, swapOutToken domain.Token, amountOut *big.Int) (*big.Int, error)

	// PriceImpactPercent estimates the trade's price impact using the
	// venue's convention.
	PriceImpactPercent(pool *domain.LiquidityPool, swapInToken domain.Token, amountIn *big.Int) (float64, error)

	// BuildSwapOrder assembles the payments that place a swap order.
	BuildSwapOrder(pool *domain.LiquidityPool, params SwapParams) ([]domain.Payment, error)

	// BuildCancelSwapOrder assembles the refund payment cancelling an
	// outstanding order found among outputs.
	BuildCancelSwapOrder(outputs []domain.UTxO, returnAddress string) ([]domain.Payment, error)

	// SwapOrderFees discloses the venue's fixed per-order fees.
	SwapOrderFees() []SwapFee
}

// AddSwapInBalance folds the swap-in amount into a payment's balances: native
// input tops up the lovelace leg, token input is appended as its own balance.
func AddSwapInBalance(payment domain.Payment, token domain.Token, amount *big.Int) domain.Payment {
	if token.IsLovelace() {
		for i, b := range payment.AssetBalances {
			if b.Token.IsLovelace() {
				payment.AssetBalances[i].Quantity = new(big.Int).Add(b.Quantity, amount)
				return payment
			}
		}
	}
	payment.AssetBalances = append(payment.AssetBalances, domain.AssetBalance{
		Token:    token,
		Quantity: new(big.Int).Set(amount),
	})
	return payment
}
