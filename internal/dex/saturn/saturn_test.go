package saturn

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cardexlab/cardex/internal/dex"
	"github.com/cardexlab/cardex/internal/domain"
)

func poolServer(t *testing.T, pools []AmmPoolDTO) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/amm/pools":
			_ = json.NewEncoder(w).Encode(pools)
		case r.Method == http.MethodPost && r.URL.Path == "/amm/orders/build":
			var req BuildOrderRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if req.PoolID == "" || req.ChangeAddress == "" {
				http.Error(w, "missing fields", http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(BuildOrderResponse{UnsignedCborHex: "84a300d90102"})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestLiquidityPoolsFromBackend(t *testing.T) {
	srv := poolServer(t, []AmmPoolDTO{
		{
			PoolID:     "pool-1",
			AssetA:     "lovelace",
			AssetB:     "1d7f33bd.cafe",
			ReserveA:   "30817255371488",
			ReserveB:   "349805856622734",
			FeePercent: 0.3,
		},
		// Malformed reserve: skipped, not escalated.
		{PoolID: "pool-2", AssetA: "lovelace", AssetB: "aa.bb", ReserveA: "not-a-number", ReserveB: "1"},
		// Missing identifier: skipped.
		{AssetA: "lovelace", AssetB: "aa.bb", ReserveA: "1", ReserveB: "1"},
	})
	defer srv.Close()

	venue := New(NewClient(srv.URL), nil)
	pools, err := venue.LiquidityPools(context.Background(), nil)
	if err != nil {
		t.Fatalf("discovery: %v", err)
	}
	if len(pools) != 1 {
		t.Fatalf("got %d pools, want 1", len(pools))
	}

	pool := pools[0]
	if pool.Dex != Identifier {
		t.Errorf("dex: got %s", pool.Dex)
	}
	if pool.Identifier != "pool-1" {
		t.Errorf("identifier: got %s", pool.Identifier)
	}
	if !pool.AssetA.IsLovelace() {
		t.Errorf("asset A must be the native unit")
	}
	if pool.AssetB.PolicyID != "1d7f33bd" || pool.AssetB.AssetNameHex != "cafe" {
		t.Errorf("asset B: got %+v", pool.AssetB)
	}
	if pool.ReserveA.Cmp(big.NewInt(30_817_255_371_488)) != 0 {
		t.Errorf("reserve A: got %s", pool.ReserveA)
	}
	if pool.FeePercent != 0.3 {
		t.Errorf("fee: got %f", pool.FeePercent)
	}
}

func TestEstimatedGiveMatchesSharedMath(t *testing.T) {
	venue := New(nil, nil)
	pool := domain.NewLiquidityPool(Identifier, domain.Lovelace,
		domain.NewAsset("1d7f33bd", "cafe", 6),
		big.NewInt(30_817_255_371_488), big.NewInt(349_805_856_622_734), "", "")
	pool.FeePercent = 0.3

	give, err := venue.EstimatedGive(pool, domain.Lovelace, big.NewInt(10_000_000_000000))
	if err != nil {
		t.Fatalf("estimated give: %v", err)
	}
	if give.Cmp(big.NewInt(168_542_118_380_811)) != 0 {
		t.Errorf("estimated give: got %s", give)
	}
}

func TestBuildUnsignedOrder(t *testing.T) {
	srv := poolServer(t, nil)
	defer srv.Close()

	venue := New(NewClient(srv.URL), nil)
	cbor, err := venue.BuildUnsignedOrder(context.Background(),
		"pool-1", "in", 10_000_000, "addr1qxchange", 100, "")
	if err != nil {
		t.Fatalf("build unsigned order: %v", err)
	}
	if cbor != "84a300d90102" {
		t.Errorf("unsigned cbor: got %s", cbor)
	}

	if _, err := venue.BuildUnsignedOrder(context.Background(),
		"pool-1", "sideways", 1, "addr1qxchange", 0, ""); err == nil {
		t.Error("invalid direction accepted")
	}
}

func TestGenericOrderBuildingUnsupported(t *testing.T) {
	venue := New(nil, nil)
	if _, err := venue.BuildSwapOrder(nil, dex.SwapParams{}); !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("BuildSwapOrder: got %v, want ErrUnsupported", err)
	}
	if _, err := venue.BuildCancelSwapOrder(nil, "addr1qx"); !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("BuildCancelSwapOrder: got %v, want ErrUnsupported", err)
	}
}
