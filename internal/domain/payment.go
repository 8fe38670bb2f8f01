package domain

import "math/big"

// AddressType distinguishes regular base addresses from script addresses.
type AddressType string

const (
	AddressTypeBase     AddressType = "base"
	AddressTypeContract AddressType = "contract"
)

// AssetBalance is a quantity of one token.
type AssetBalance struct {
	Token    Token    `json:"token"`
	Quantity *big.Int `json:"quantity"`
}

// Script references an on-chain validator script by language and CBOR body.
type Script struct {
	Type    string `json:"type"` // e.g. "PlutusV3"
	CborHex string `json:"cbor_hex"`
}

// UTxO is an unspent transaction output as reported by the data provider.
type UTxO struct {
	TxHash        string         `json:"tx_hash"`
	OutputIndex   int            `json:"output_index"`
	Address       string         `json:"address"`
	DatumHash     string         `json:"datum_hash,omitempty"`
	AssetBalances []AssetBalance `json:"asset_balances"`
}

// SpendUTxO authorizes spending an output as part of a payment, carrying the
// redeemer and validator needed to unlock it.
type SpendUTxO struct {
	UTxO      UTxO    `json:"utxo"`
	Redeemer  string  `json:"redeemer,omitempty"` // CBOR hex
	Validator *Script `json:"validator,omitempty"`
	Signer    string  `json:"signer,omitempty"`
}

// Payment is one output of the transaction a wallet provider will assemble:
// an address, the value to send there, and an optional serialized datum.
type Payment struct {
	Address       string         `json:"address"`
	AddressType   AddressType    `json:"address_type"`
	AssetBalances []AssetBalance `json:"asset_balances"`
	// Datum is the canonical CBOR hex of the attached structured value.
	Datum         string      `json:"datum,omitempty"`
	IsInlineDatum bool        `json:"is_inline_datum"`
	SpendUTxOs    []SpendUTxO `json:"spend_utxos,omitempty"`
}

// LovelaceBalance returns the native-unit quantity in balances, or zero.
func LovelaceBalance(balances []AssetBalance) *big.Int {
	for _, b := range balances {
		if b.Token.IsLovelace() {
			return b.Quantity
		}
	}
	return big.NewInt(0)
}

// BalanceOf returns the quantity of token in balances, or zero.
func BalanceOf(balances []AssetBalance, token Token) *big.Int {
	for _, b := range balances {
		if b.Token.Equals(token) {
			return b.Quantity
		}
	}
	return big.NewInt(0)
}
