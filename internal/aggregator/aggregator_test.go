package aggregator

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/cardexlab/cardex/internal/dex"
	"github.com/cardexlab/cardex/internal/domain"
)

type fakeVenue struct {
	id    string
	pools []*domain.LiquidityPool
	err   error
	delay time.Duration
}

func (f *fakeVenue) Identifier() string { return f.id }

func (f *fakeVenue) LiquidityPools(ctx context.Context, _ domain.DataProvider) ([]*domain.LiquidityPool, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.pools, f.err
}

func (f *fakeVenue) EstimatedReceive(*domain.LiquidityPool, domain.Token, *big.Int) (*big.Int, error) {
	return nil, domain.ErrUnsupported
}

func (f *fakeVenue) EstimatedGive(*domain.LiquidityPool, domain.Token, *big.Int) (*big.Int, error) {
	return nil, domain.ErrUnsupported
}

func (f *fakeVenue) PriceImpactPercent(*domain.LiquidityPool, domain.Token, *big.Int) (float64, error) {
	return 0, domain.ErrUnsupported
}

func (f *fakeVenue) BuildSwapOrder(*domain.LiquidityPool, dex.SwapParams) ([]domain.Payment, error) {
	return nil, domain.ErrUnsupported
}

func (f *fakeVenue) BuildCancelSwapOrder([]domain.UTxO, string) ([]domain.Payment, error) {
	return nil, domain.ErrUnsupported
}

func (f *fakeVenue) SwapOrderFees() []dex.SwapFee { return nil }

var _ dex.Dex = (*fakeVenue)(nil)

func pool(venue, identifier string) *domain.LiquidityPool {
	p := domain.NewLiquidityPool(venue, domain.Lovelace,
		domain.NewAsset("aa", "bb", 0), big.NewInt(1), big.NewInt(1), "", "")
	p.Identifier = identifier
	return p
}

func TestLiquidityPoolsMergesVenues(t *testing.T) {
	agg := New([]dex.Dex{
		&fakeVenue{id: "A", pools: []*domain.LiquidityPool{pool("A", "p1"), pool("A", "p2")}},
		&fakeVenue{id: "B", pools: []*domain.LiquidityPool{pool("B", "p1")}},
	}, nil)

	pools, err := agg.LiquidityPools(context.Background(), nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	// Same pool identifier on different venues is not a duplicate.
	if len(pools) != 3 {
		t.Fatalf("got %d pools, want 3", len(pools))
	}
}

func TestLiquidityPoolsSwallowsVenueFailure(t *testing.T) {
	agg := New([]dex.Dex{
		&fakeVenue{id: "A", err: errors.New("backend down")},
		&fakeVenue{id: "B", pools: []*domain.LiquidityPool{pool("B", "p1")}},
	}, nil)

	pools, err := agg.LiquidityPools(context.Background(), nil)
	if err != nil {
		t.Fatalf("one venue failing must not fail the merge: %v", err)
	}
	if len(pools) != 1 {
		t.Fatalf("got %d pools, want 1", len(pools))
	}
	if pools[0].Dex != "B" {
		t.Errorf("surviving pool from %s", pools[0].Dex)
	}
}

func TestLiquidityPoolsDeduplicates(t *testing.T) {
	// Two adapters reporting the same venue and pool id: first writer wins.
	agg := New([]dex.Dex{
		&fakeVenue{id: "A", pools: []*domain.LiquidityPool{pool("A", "p1"), pool("A", "p1")}},
	}, nil)

	pools, err := agg.LiquidityPools(context.Background(), nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(pools) != 1 {
		t.Fatalf("got %d pools, want 1", len(pools))
	}
}

func TestLiquidityPoolsTimeout(t *testing.T) {
	agg := New([]dex.Dex{
		&fakeVenue{id: "fast", pools: []*domain.LiquidityPool{pool("fast", "p1")}},
		&fakeVenue{id: "slow", delay: 5 * time.Second},
	}, nil, WithTimeout(50*time.Millisecond))

	start := time.Now()
	pools, err := agg.LiquidityPools(context.Background(), nil)
	if err != nil {
		t.Fatalf("timed-out venue must be swallowed: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout not applied")
	}
	if len(pools) != 1 {
		t.Fatalf("got %d pools, want the fast venue's 1", len(pools))
	}
}

func TestPoolsForPair(t *testing.T) {
	token := domain.NewAsset("aa", "bb", 0)
	other := domain.NewAsset("cc", "dd", 0)

	all := []*domain.LiquidityPool{
		pool("A", "p1"),
		domain.NewLiquidityPool("B", domain.Lovelace, other, big.NewInt(1), big.NewInt(1), "", ""),
	}
	matched := PoolsForPair(all, domain.Lovelace, token)
	if len(matched) != 1 {
		t.Fatalf("got %d pools, want 1", len(matched))
	}
	if matched[0].Dex != "A" {
		t.Errorf("matched pool from %s", matched[0].Dex)
	}
}
