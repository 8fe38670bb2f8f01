package fees

import (
	"math/big"
	"testing"

	"github.com/cardexlab/cardex/internal/domain"
)

const feeAddress = "addr1qxplatformfee"

func orderPayments() []domain.Payment {
	return []domain.Payment{{
		Address: "addr1qxorderbook",
		AssetBalances: []domain.AssetBalance{
			{Token: domain.Lovelace, Quantity: big.NewInt(12_690_000)},
		},
	}}
}

func TestAppendPlatformFee(t *testing.T) {
	c := NewComposer(feeAddress, big.NewInt(2_000_000))

	payments := c.AppendPlatformFeeIfMissing(orderPayments())
	if len(payments) != 2 {
		t.Fatalf("got %d payments, want 2", len(payments))
	}
	fee := payments[1]
	if fee.Address != feeAddress {
		t.Errorf("fee address: got %s", fee.Address)
	}
	if domain.LovelaceBalance(fee.AssetBalances).Cmp(big.NewInt(2_000_000)) != 0 {
		t.Errorf("fee amount: got %s", domain.LovelaceBalance(fee.AssetBalances))
	}
}

func TestAppendPlatformFeeIdempotent(t *testing.T) {
	c := NewComposer(feeAddress, big.NewInt(2_000_000))

	payments := c.AppendPlatformFeeIfMissing(orderPayments())
	payments = c.AppendPlatformFeeIfMissing(payments)

	count := 0
	for _, p := range payments {
		if p.Address == feeAddress {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("got %d fee payments, want exactly 1", count)
	}
}

func TestAppendPlatformFeeTopsUpUnderpayment(t *testing.T) {
	c := NewComposer(feeAddress, big.NewInt(2_000_000))

	// An existing payment to the fee address below the fee amount does not
	// satisfy the fee.
	payments := []domain.Payment{{
		Address: feeAddress,
		AssetBalances: []domain.AssetBalance{
			{Token: domain.Lovelace, Quantity: big.NewInt(1_000_000)},
		},
	}}
	payments = c.AppendPlatformFeeIfMissing(payments)
	if len(payments) != 2 {
		t.Fatalf("got %d payments, want 2", len(payments))
	}
}

func TestDisabledComposer(t *testing.T) {
	for _, c := range []*Composer{
		NewComposer("", big.NewInt(2_000_000)),
		NewComposer(feeAddress, big.NewInt(0)),
		NewComposer(feeAddress, big.NewInt(-5)),
		NewComposer(feeAddress, nil),
	} {
		if c.Enabled() {
			t.Errorf("composer %+v reports enabled", c)
		}
		payments := c.AppendPlatformFeeIfMissing(orderPayments())
		if len(payments) != 1 {
			t.Errorf("disabled composer appended a payment")
		}
	}
}
