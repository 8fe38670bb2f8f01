// Package orderbook synthesizes top-of-book prices from the outstanding
// order UTxOs sitting at a venue's order address. The venue supplies the
// datum parser; the scan itself is venue-independent.
package orderbook

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/cardexlab/cardex/internal/domain"
	"github.com/cardexlab/cardex/internal/plutus"
)

// Intent is the venue-independent view of one outstanding order: what goes
// in, what must come out at minimum.
type Intent struct {
	InToken  domain.Token
	OutToken domain.Token
	MinOut   *big.Int
}

// ParseFunc decodes a venue's order datum into an Intent. Return an error
// for records the venue does not recognize; the scan skips them.
type ParseFunc func(plutus.Data) (Intent, error)

// Config describes the venue being scanned.
type Config struct {
	OrderAddress string
	// Deposit and BatcherFee are stripped from the native-unit legs: the
	// deposit rides along with every order (and is included in ADA-out
	// targets), the batcher fee is consumed.
	Deposit    *big.Int
	BatcherFee *big.Int
	Parse      ParseFunc
	Logger     *slog.Logger
}

// TopOfBook holds the best bid and ask found, quoted in native units per
// on-chain token unit, pre-decimal-scaling. Callers scale by the token's
// decimals for display.
type TopOfBook struct {
	BestBid float64
	HasBid  bool
	BestAsk float64
	HasAsk  bool
}

// Reconstruct scans the order address and classifies each decodable order on
// the given token: native→token orders are bids, token→native orders are
// asks. Undecodable or foreign records are skipped.
func Reconstruct(ctx context.Context, provider domain.DataProvider, token domain.Token, cfg Config) (TopOfBook, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	utxos, err := provider.UTxOs(ctx, cfg.OrderAddress)
	if err != nil {
		return TopOfBook{}, fmt.Errorf("orderbook: order utxos: %w", err)
	}

	var book TopOfBook
	for _, utxo := range utxos {
		if utxo.DatumHash == "" {
			continue
		}
		raw, err := provider.DatumValue(ctx, utxo.DatumHash)
		if err != nil {
			cfg.Logger.Debug("orderbook: datum fetch failed",
				slog.String("datum_hash", utxo.DatumHash),
				slog.String("error", err.Error()),
			)
			continue
		}
		datum, err := plutus.Decode(raw)
		if err != nil {
			continue
		}
		intent, err := cfg.Parse(datum)
		if err != nil {
			continue
		}
		classify(&book, utxo, token, intent, cfg)
	}
	return book, nil
}

func classify(book *TopOfBook, utxo domain.UTxO, token domain.Token, intent Intent, cfg Config) {
	lovelace := domain.LovelaceBalance(utxo.AssetBalances)
	tokenBalance := domain.BalanceOf(utxo.AssetBalances, token)

	inputIsNative := intent.InToken.IsLovelace()
	outputIsNative := intent.OutToken.IsLovelace()

	// The effective native input excludes the deposit and batcher fee that
	// ride along with every order.
	nativeIn := new(big.Int).Sub(lovelace, cfg.Deposit)
	nativeIn.Sub(nativeIn, cfg.BatcherFee)

	switch {
	case inputIsNative && !outputIsNative && intent.OutToken.Equals(token):
		// native → token: a bid for the token.
		if nativeIn.Sign() > 0 && intent.MinOut.Sign() > 0 {
			bid := toFloat(nativeIn) / toFloat(intent.MinOut)
			if !book.HasBid || bid > book.BestBid {
				book.BestBid = bid
				book.HasBid = true
			}
		}
	case !inputIsNative && outputIsNative && intent.InToken.Equals(token):
		// token → native: an ask. The datum's target includes the deposit.
		minNativeOut := new(big.Int).Sub(intent.MinOut, cfg.Deposit)
		if tokenBalance.Sign() > 0 && minNativeOut.Sign() > 0 {
			ask := toFloat(minNativeOut) / toFloat(tokenBalance)
			if !book.HasAsk || ask < book.BestAsk {
				book.BestAsk = ask
				book.HasAsk = true
			}
		}
	}
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
