// Package fees appends the toolkit's flat platform fee to assembled payment
// sets. The fee address and amount are explicit construction-time
// configuration, never read from ambient process state.
package fees

import (
	"math/big"

	"github.com/cardexlab/cardex/internal/domain"
)

// Composer appends a flat native-unit platform fee to payment lists.
type Composer struct {
	address string
	amount  *big.Int
}

// NewComposer creates a Composer. An empty address or non-positive amount
// yields a no-op composer.
func NewComposer(address string, amount *big.Int) *Composer {
	c := &Composer{address: address}
	if amount != nil {
		c.amount = new(big.Int).Set(amount)
	}
	return c
}

// Enabled reports whether the composer will ever append a fee.
func (c *Composer) Enabled() bool {
	return c.address != "" && c.amount != nil && c.amount.Sign() > 0
}

// AppendPlatformFeeIfMissing appends the fee payment unless one already
// targets the fee address with at least the fee amount of the native unit.
// Applying it twice yields exactly one fee payment.
func (c *Composer) AppendPlatformFeeIfMissing(payments []domain.Payment) []domain.Payment {
	if !c.Enabled() {
		return payments
	}

	for _, p := range payments {
		if p.Address != c.address {
			continue
		}
		if domain.LovelaceBalance(p.AssetBalances).Cmp(c.amount) >= 0 {
			return payments
		}
	}

	return append(payments, domain.Payment{
		Address:     c.address,
		AddressType: domain.AddressTypeBase,
		AssetBalances: []domain.AssetBalance{{
			Token:    domain.Lovelace,
			Quantity: new(big.Int).Set(c.amount),
		}},
		IsInlineDatum: false,
	})
}
