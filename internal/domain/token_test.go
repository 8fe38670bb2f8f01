package domain

import (
	"math/big"
	"testing"
)

func TestTokenIdentity(t *testing.T) {
	if !Lovelace.IsLovelace() {
		t.Fatal("zero token must be the native unit")
	}
	if Lovelace.Identifier() != LovelaceUnit {
		t.Errorf("native identifier: got %s", Lovelace.Identifier())
	}

	token := NewAsset("1d7f33bd", "cafe", 6)
	if token.IsLovelace() {
		t.Error("asset reported as native")
	}
	if token.Identifier() != "1d7f33bdcafe" {
		t.Errorf("identifier: got %s", token.Identifier())
	}

	// Decimals are display metadata; identity ignores them.
	same := NewAsset("1d7f33bd", "cafe", 0)
	if !token.Equals(same) {
		t.Error("decimals must not affect equality")
	}
	if token.Equals(NewAsset("1d7f33bd", "beef", 6)) {
		t.Error("distinct asset names compare equal")
	}
}

func TestPoolOrientation(t *testing.T) {
	token := NewAsset("1d7f33bd", "cafe", 6)
	pool := NewLiquidityPool("CSwap", Lovelace, token,
		big.NewInt(1_000), big.NewInt(2_000), "", "")

	other, err := pool.OtherToken(Lovelace)
	if err != nil {
		t.Fatalf("other token: %v", err)
	}
	if !other.Equals(token) {
		t.Errorf("other side: got %s", other)
	}

	rIn, rOut, err := pool.CorrespondingReserves(token)
	if err != nil {
		t.Fatalf("corresponding reserves: %v", err)
	}
	if rIn.Cmp(big.NewInt(2_000)) != 0 || rOut.Cmp(big.NewInt(1_000)) != 0 {
		t.Errorf("reserves oriented wrong: %s / %s", rIn, rOut)
	}

	foreign := NewAsset("ff", "ee", 0)
	if _, err := pool.OtherToken(foreign); err == nil {
		t.Error("foreign token accepted")
	}
	if !pool.Contains(token) || pool.Contains(foreign) {
		t.Error("contains misreports pair membership")
	}
}

func TestPoolCopiesReserves(t *testing.T) {
	reserve := big.NewInt(1_000)
	pool := NewLiquidityPool("CSwap", Lovelace, NewAsset("aa", "bb", 0),
		reserve, big.NewInt(1), "", "")

	reserve.SetInt64(999_999)
	if pool.ReserveA.Cmp(big.NewInt(1_000)) != 0 {
		t.Error("pool shares caller's reserve value")
	}
}

func TestPoolPrice(t *testing.T) {
	// 30 ADA against 10 whole tokens: each token is worth 3 ADA.
	pool := NewLiquidityPool("CSwap", Lovelace, NewAsset("aa", "bb", 0),
		big.NewInt(30_000_000), big.NewInt(10), "", "")
	if got := pool.Price(); got != 3.0 {
		t.Errorf("price: got %f, want 3.0", got)
	}

	// Token-side decimals scale the quote the same way lovelace does.
	scaled := NewLiquidityPool("CSwap", Lovelace, NewAsset("aa", "bb", 6),
		big.NewInt(30_000_000), big.NewInt(10_000_000), "", "")
	if got := scaled.Price(); got != 3.0 {
		t.Errorf("scaled price: got %f, want 3.0", got)
	}

	empty := NewLiquidityPool("CSwap", Lovelace, NewAsset("aa", "bb", 0),
		big.NewInt(1), big.NewInt(0), "", "")
	if got := empty.Price(); got != 0 {
		t.Errorf("drained pool price: got %f, want 0", got)
	}
}

func TestBalanceHelpers(t *testing.T) {
	token := NewAsset("aa", "bb", 0)
	balances := []AssetBalance{
		{Token: Lovelace, Quantity: big.NewInt(5_000_000)},
		{Token: token, Quantity: big.NewInt(42)},
	}

	if got := LovelaceBalance(balances); got.Cmp(big.NewInt(5_000_000)) != 0 {
		t.Errorf("lovelace balance: got %s", got)
	}
	if got := BalanceOf(balances, token); got.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("token balance: got %s", got)
	}
	if got := BalanceOf(balances, NewAsset("ff", "ee", 0)); got.Sign() != 0 {
		t.Errorf("absent token balance: got %s", got)
	}
}
