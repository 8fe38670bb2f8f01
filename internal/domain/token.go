// Package domain defines the venue-independent data model shared by every
// part of the toolkit: tokens, liquidity pools, payments, UTxOs, and the
// collaborator ports (data provider, wallet provider).
package domain

// LovelaceUnit is the identifier of the chain's native unit.
const LovelaceUnit = "lovelace"

// Token identifies either the native unit (the zero value) or a user-issued
// asset by its minting policy and hex-encoded asset name. Decimals is a
// display hint only and never participates in equality or settlement math.
type Token struct {
	PolicyID     string `json:"policy_id"`
	AssetNameHex string `json:"asset_name_hex"`
	Decimals     int    `json:"decimals"`
}

// Lovelace is the native-unit sentinel token.
var Lovelace = Token{}

// NewAsset creates a user-issued asset token.
func NewAsset(policyID, assetNameHex string, decimals int) Token {
	return Token{PolicyID: policyID, AssetNameHex: assetNameHex, Decimals: decimals}
}

// IsLovelace reports whether t is the native unit.
func (t Token) IsLovelace() bool {
	return t.PolicyID == "" && t.AssetNameHex == ""
}

// Identifier returns the stable string form of the token: "lovelace" for the
// native unit, otherwise policyID + assetNameHex.
func (t Token) Identifier() string {
	if t.IsLovelace() {
		return LovelaceUnit
	}
	return t.PolicyID + t.AssetNameHex
}

// Equals compares tokens by (policyID, assetNameHex), ignoring decimals.
func (t Token) Equals(other Token) bool {
	return t.PolicyID == other.PolicyID && t.AssetNameHex == other.AssetNameHex
}

func (t Token) String() string {
	return t.Identifier()
}
