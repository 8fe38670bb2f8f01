package cswap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cardexlab/cardex/internal/domain"
	"github.com/cardexlab/cardex/internal/orderbook"
	"github.com/cardexlab/cardex/internal/plutus"
)

// ParseOrderIntent decodes a CSWAP order datum into the venue-independent
// intent form. The datum shape varies (the target list grows a deposit row
// on token-out orders), so this walks the structure directly instead of
// pulling through a fixed template.
func ParseOrderIntent(datum plutus.Data) (orderbook.Intent, error) {
	if datum.Kind() != plutus.KindConstr || len(datum.Items()) < 3 {
		return orderbook.Intent{}, fmt.Errorf("cswap: order datum shape: %w", domain.ErrShapeMismatch)
	}
	fields := datum.Items()

	inPolicy, inName, err := inputAsset(fields[2])
	if err != nil {
		return orderbook.Intent{}, err
	}
	outPolicy, outName, minOut, err := targetAsset(fields[1])
	if err != nil {
		return orderbook.Intent{}, err
	}

	return orderbook.Intent{
		InToken:  tokenFromParts(inPolicy, inName),
		OutToken: tokenFromParts(outPolicy, outName),
		MinOut:   minOut,
	}, nil
}

// inputAsset reads the first row of the input asset list.
func inputAsset(field plutus.Data) (policy, name string, err error) {
	if field.Kind() != plutus.KindList || len(field.Items()) == 0 {
		return "", "", fmt.Errorf("cswap: input asset list: %w", domain.ErrShapeMismatch)
	}
	row := field.Items()[0]
	if row.Kind() != plutus.KindList || len(row.Items()) < 3 {
		return "", "", fmt.Errorf("cswap: input asset row: %w", domain.ErrShapeMismatch)
	}
	return row.Items()[0].BytesHex(), row.Items()[1].BytesHex(), nil
}

// targetAsset picks the primary target row: the first non-ADA row if one
// exists (token-out orders carry an extra ADA deposit row), otherwise the
// first row.
func targetAsset(field plutus.Data) (policy, name string, minOut *big.Int, err error) {
	if field.Kind() != plutus.KindList || len(field.Items()) == 0 {
		return "", "", nil, fmt.Errorf("cswap: target list: %w", domain.ErrShapeMismatch)
	}

	rows := field.Items()
	chosen := rows[0]
	for _, row := range rows {
		if row.Kind() != plutus.KindList || len(row.Items()) < 3 {
			continue
		}
		if row.Items()[0].BytesHex() != "" || row.Items()[1].BytesHex() != "" {
			chosen = row
			break
		}
	}
	if chosen.Kind() != plutus.KindList || len(chosen.Items()) < 3 {
		return "", "", nil, fmt.Errorf("cswap: target row: %w", domain.ErrShapeMismatch)
	}
	items := chosen.Items()
	return items[0].BytesHex(), items[1].BytesHex(), items[2].Int(), nil
}

func tokenFromParts(policy, name string) domain.Token {
	if policy == "" && name == "" {
		return domain.Lovelace
	}
	return domain.NewAsset(policy, name, 0)
}

// TopOfBook reconstructs the best bid and ask for token from the orderbook
// address.
func TopOfBook(ctx context.Context, provider domain.DataProvider, token domain.Token) (orderbook.TopOfBook, error) {
	return orderbook.Reconstruct(ctx, provider, token, orderbook.Config{
		OrderAddress: orderAddress,
		Deposit:      big.NewInt(contractLovelace),
		BatcherFee:   big.NewInt(batcherFee),
		Parse:        ParseOrderIntent,
	})
}
