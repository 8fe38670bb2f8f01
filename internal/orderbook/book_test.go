package orderbook

import (
	"context"
	"math/big"
	"testing"

	"github.com/cardexlab/cardex/internal/domain"
	"github.com/cardexlab/cardex/internal/plutus"
	"github.com/cardexlab/cardex/internal/provider/memory"
)

const bookAddress = "addr1qxorderbook"

var bookToken = domain.NewAsset("aa00", "bb11", 6)

// testParse reads the minimal intent datum used by these tests:
// constr 0 [inPolicy, inName, outPolicy, outName, minOut].
func testParse(d plutus.Data) (Intent, error) {
	if d.Kind() != plutus.KindConstr || len(d.Items()) != 5 {
		return Intent{}, domain.ErrShapeMismatch
	}
	f := d.Items()
	toToken := func(policy, name string) domain.Token {
		if policy == "" && name == "" {
			return domain.Lovelace
		}
		return domain.NewAsset(policy, name, 0)
	}
	return Intent{
		InToken:  toToken(f[0].BytesHex(), f[1].BytesHex()),
		OutToken: toToken(f[2].BytesHex(), f[3].BytesHex()),
		MinOut:   f[4].Int(),
	}, nil
}

func intentDatum(t *testing.T, inPolicy, inName, outPolicy, outName string, minOut int64) []byte {
	t.Helper()
	d := plutus.NewConstr(0,
		plutus.NewBytesHex(inPolicy), plutus.NewBytesHex(inName),
		plutus.NewBytesHex(outPolicy), plutus.NewBytesHex(outName),
		plutus.NewInt(minOut),
	)
	raw, err := plutus.Encode(d)
	if err != nil {
		t.Fatalf("encode intent: %v", err)
	}
	return raw
}

func addOrder(t *testing.T, p *memory.Provider, hash string, raw []byte, balances []domain.AssetBalance) {
	t.Helper()
	p.AddDatum(hash, raw)
	p.AddUTxO(domain.UTxO{
		TxHash:        hash,
		Address:       bookAddress,
		DatumHash:     hash,
		AssetBalances: balances,
	})
}

func bookConfig() Config {
	return Config{
		OrderAddress: bookAddress,
		Deposit:      big.NewInt(2_000_000),
		BatcherFee:   big.NewInt(690_000),
		Parse:        testParse,
	}
}

func TestReconstructBid(t *testing.T) {
	provider := memory.NewProvider()

	// 2_000_000 deposit + 690_000 batcher + 1_000_000 swap-in, buying at
	// least 1_000_000 token units: a bid at exactly 1 native unit per token
	// unit.
	addOrder(t, provider, "h1",
		intentDatum(t, "", "", bookToken.PolicyID, bookToken.AssetNameHex, 1_000_000),
		[]domain.AssetBalance{
			{Token: domain.Lovelace, Quantity: big.NewInt(3_690_000)},
		})

	book, err := Reconstruct(context.Background(), provider, bookToken, bookConfig())
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if !book.HasBid {
		t.Fatal("no bid found")
	}
	if book.BestBid != 1.0 {
		t.Errorf("best bid: got %f, want 1.0", book.BestBid)
	}
	if book.HasAsk {
		t.Errorf("unexpected ask %f", book.BestAsk)
	}
}

func TestReconstructBestOfSeveral(t *testing.T) {
	provider := memory.NewProvider()

	// Bid at 1.0 and a better bid at 2.0.
	addOrder(t, provider, "h1",
		intentDatum(t, "", "", bookToken.PolicyID, bookToken.AssetNameHex, 1_000_000),
		[]domain.AssetBalance{{Token: domain.Lovelace, Quantity: big.NewInt(3_690_000)}})
	addOrder(t, provider, "h2",
		intentDatum(t, "", "", bookToken.PolicyID, bookToken.AssetNameHex, 1_000_000),
		[]domain.AssetBalance{{Token: domain.Lovelace, Quantity: big.NewInt(4_690_000)}})

	// Asks at 1.5 and a better (lower) one at 1.25. The datum's native
	// target includes the deposit.
	addOrder(t, provider, "h3",
		intentDatum(t, bookToken.PolicyID, bookToken.AssetNameHex, "", "", 2_000_000+1_500_000),
		[]domain.AssetBalance{
			{Token: domain.Lovelace, Quantity: big.NewInt(2_690_000)},
			{Token: bookToken, Quantity: big.NewInt(1_000_000)},
		})
	addOrder(t, provider, "h4",
		intentDatum(t, bookToken.PolicyID, bookToken.AssetNameHex, "", "", 2_000_000+2_500_000),
		[]domain.AssetBalance{
			{Token: domain.Lovelace, Quantity: big.NewInt(2_690_000)},
			{Token: bookToken, Quantity: big.NewInt(2_000_000)},
		})

	book, err := Reconstruct(context.Background(), provider, bookToken, bookConfig())
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if !book.HasBid || book.BestBid != 2.0 {
		t.Errorf("best bid: got %v %f, want 2.0", book.HasBid, book.BestBid)
	}
	if !book.HasAsk || book.BestAsk != 1.25 {
		t.Errorf("best ask: got %v %f, want 1.25", book.HasAsk, book.BestAsk)
	}
}

func TestReconstructSkipsForeignRecords(t *testing.T) {
	provider := memory.NewProvider()

	// Undecodable datum.
	addOrder(t, provider, "h1", []byte{0xff},
		[]domain.AssetBalance{{Token: domain.Lovelace, Quantity: big.NewInt(3_690_000)}})

	// Order on a different token.
	other := domain.NewAsset("cc22", "dd33", 0)
	addOrder(t, provider, "h2",
		intentDatum(t, "", "", other.PolicyID, other.AssetNameHex, 1_000_000),
		[]domain.AssetBalance{{Token: domain.Lovelace, Quantity: big.NewInt(3_690_000)}})

	// Output with no datum hash at all.
	provider.AddUTxO(domain.UTxO{
		TxHash:  "h3",
		Address: bookAddress,
		AssetBalances: []domain.AssetBalance{
			{Token: domain.Lovelace, Quantity: big.NewInt(3_690_000)},
		},
	})

	book, err := Reconstruct(context.Background(), provider, bookToken, bookConfig())
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if book.HasBid || book.HasAsk {
		t.Errorf("foreign records classified: %+v", book)
	}
}
