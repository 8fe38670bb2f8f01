package cswap

import "github.com/cardexlab/cardex/internal/plutus"

// poolTemplate describes the CSwap pool datum:
//
//	{ lp, lp_fee_10k, token_a_id, token_a_name, token_b_id, token_b_name,
//	  lp_id, lp_name }
var poolTemplate = plutus.TConstr(0,
	plutus.TInt(plutus.ParamTotalLpTokens),
	plutus.TInt(plutus.ParamLpFee),
	plutus.TBytes(plutus.ParamPoolAssetAPolicyID),
	plutus.TBytes(plutus.ParamPoolAssetAAssetName),
	plutus.TBytes(plutus.ParamPoolAssetBPolicyID),
	plutus.TBytes(plutus.ParamPoolAssetBAssetName),
	plutus.TBytes(plutus.ParamLpTokenPolicyID),
	plutus.TBytes(plutus.ParamLpTokenAssetName),
)

// Order datum: owner credentials, target min-value rows, input asset row,
// order type (Swap = constructor 0), slippage bps, platform fee bps. Orders
// buying a token carry a second target row returning the ADA deposit.

func ownerTemplate() plutus.Template {
	return plutus.TConstr(0,
		plutus.TConstr(0, plutus.TBytes(plutus.ParamSenderKeyHash)),
		plutus.TConstr(0, plutus.TConstr(0, plutus.TBytes(plutus.ParamSenderStakingKeyHash))),
	)
}

func inputAssetTemplate() plutus.Template {
	return plutus.TList(
		plutus.TList(
			plutus.TBytes(plutus.ParamSwapInTokenPolicyID),
			plutus.TBytes(plutus.ParamSwapInTokenAssetName),
			plutus.TLit(plutus.NewInt(0)),
		),
	)
}

func targetRowTemplate() plutus.Template {
	return plutus.TList(
		plutus.TBytes(plutus.ParamSwapOutTokenPolicyID),
		plutus.TBytes(plutus.ParamSwapOutTokenAssetName),
		plutus.TInt(plutus.ParamMinReceive),
	)
}

// depositRow is the literal ADA row returning the contract deposit on
// token-out orders.
func depositRow() plutus.Template {
	return plutus.TList(
		plutus.TLit(plutus.NewBytes(nil)),
		plutus.TLit(plutus.NewBytes(nil)),
		plutus.TLit(plutus.NewInt(contractLovelace)),
	)
}

// orderToAdaTemplate is the order datum shape when the swap output is the
// native unit: a single target row already containing the deposit.
var orderToAdaTemplate = plutus.TConstr(0,
	ownerTemplate(),
	plutus.TList(targetRowTemplate()),
	inputAssetTemplate(),
	plutus.TConstr(0),
	plutus.TInt(plutus.ParamSlippageBps),
	plutus.TInt(plutus.ParamPlatformFeeBps),
)

// orderToTokenTemplate is the shape when the output is a token: the deposit
// comes back as a separate ADA row.
var orderToTokenTemplate = plutus.TConstr(0,
	ownerTemplate(),
	plutus.TList(targetRowTemplate(), depositRow()),
	inputAssetTemplate(),
	plutus.TConstr(0),
	plutus.TInt(plutus.ParamSlippageBps),
	plutus.TInt(plutus.ParamPlatformFeeBps),
)
