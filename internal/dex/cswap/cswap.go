// Package cswap adapts the CSWAP orderbook venue: pools live in UTxOs at a
// known address and are described by datums, orders are placed by paying the
// orderbook validator with an inline order datum.
package cswap

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/cardexlab/cardex/internal/dex"
	"github.com/cardexlab/cardex/internal/domain"
	"github.com/cardexlab/cardex/internal/plutus"
	"github.com/cardexlab/cardex/internal/pricing"
)

// Identifier is the stable venue name.
const Identifier = "CSwap"

// On-chain constants.
const (
	// minPoolAda is the locked minimum ADA every pool UTxO carries; it is
	// not tradable liquidity and is subtracted from the ADA reserve.
	minPoolAda = 2_000_000
	// contractLovelace is the deposit bundled with every order, returned on
	// settlement or cancellation.
	contractLovelace = 2_000_000
	// batcherFee is the off-chain executor fee, consumed per order.
	batcherFee = 690_000
	// platformTakeBps is the venue's take-rate applied to the minimum
	// receive before it is encoded on-chain.
	platformTakeBps = 15

	orderAddress = "addr1z8d9k3aw6w24eyfjacy809h68dv2rwnpw0arrfau98jk6nhv88awp8sgxk65d6kry0mar3rd0dlkfljz7dv64eu39vfs38yd9p"
	poolAddress  = "addr1z8ke0c9p89rjfwmuh98jpt8ky74uy5mffjft3zlcld9h7ml3lmln3mwk0y3zsh3gs3dzqlwa9rjzrxawkwm4udw9axhs6fuu6e"

	// cancelRedeemer is the CBOR hex of the orderbook's cancel redeemer.
	cancelRedeemer = "d87a80"
)

// orderbookScriptCbor is the PlutusV3 orderbook validator body.
const orderbookScriptCbor = "5905fb0101003333232323232323223223223225333008323232323253323300e3001300f37540042646644646464a66602860060022a66602e602c6ea80240085854ccc050c01c0044c8c8c8c94ccc06cc07800801858dd6980e000980e0011bad301a001301637540122a66602866e1d20040011323232323232533301d302000200816375a603c002603c0046eb4c070004c070008dd6980d000980b1baa0091630143754010264646464646464646464646464a66603e601c00226464a666042602060446ea80044c94ccc088c044c08cdd5009099192999812180998129baa00113253330253322323300100100322533302c00114a026644a66605666e3c0080145288998020020009bae302e001302f0013758605460566056605660566056605660566056604e6ea806cdd7181518139baa0021301800114a06601c0204a66604a66ebcc040c09cdd5000980818139baa00313375e6014604e6ea8004c028c09cdd5180518139baa00414a02c601c604a6ea8c038c094dd5000981398121baa01210033026302337540022c646600200201c44a66604a002298103d87a80001332253330243375e601e604c6ea80080544c034cc0a00092f5c0266008008002604e00260500026666004900080600e80d8a99980f98090008991991250375a604a0026eb4c094c098004c084dd500a099191999112999812180998129baa014132325333026323253330283371000e90000980d9980900a1299981499baf3014302b3754002602860566ea80144cc008dd6180718159baa0052337126eb4c010004ccc040dd5980798161baa002375c602a0026eb8c03c0045280992999814992999815180c98159baa0011323300f02523375e602e605c6ea8c044c0b8dd5001000981798161baa00114a06602002c00e20022940c94ccc0a4c060c0a8dd5000899198019bac300f302c375400c466e24dd698028009998089bab3010302d37540046eb8c058004dd71808000981718159baa00114a06601e02800e44646600200200644a66605c00229444cc894ccc0b4c0140084cc0100100045281bac303000130310012302c302d302d001100114a066660100040240460426052604c6ea805058dd698130011bad3026001375a604c604e002604c00260426ea8050c07cdd50099111299981099b89480000104c94ccc088c044c08cdd5000899b8948008ccc020dd5980398121baa300730243754604e60486ea800400c00852819804001802099802801919b8948008ccc020dd5980398121baa30073024375400200600444646600200200644a66604600229404cc894ccc088c0140085288998020020009812800981300091810981100091119299980f1808980f9baa0011480004dd6981198101baa00132533301e3011301f37540022980103d87a8000132330010013756604860426ea8008894ccc08c004530103d87a80001323332225333024337220100062a66604866e3c02000c4c034cc0a0dd400125eb80530103d87a8000133006006001375c60440026eb4c08c004c09c008c094004c8cc004004010894ccc0880045300103d87a80001323332225333023337220100062a66604666e3c02000c4c030cc09cdd300125eb80530103d87a8000133006006001375c60420026eacc088004c098008c090004c0040048894ccc078008530103d87a800013322533301d300c00313006330210024bd70099980280280099b8000348004c080008c084008dd2a400044646600200200644a66603a0022900009991299980e1802801099b80001480084004c07c004cc008008c0800048c06c004dd6180c980d180d0011bac3018001301437540106e1d2000301400130143015001301037540046e1d200216301130120033010002300f002300f001300a375400229309b2b1bac001375c0026eb80055cd2ab9d5573caae7d5d02ba1574498011e581cc11604bc944b14c293b7ea6ad6583f0efedab38bbadebe2f5af4c09b004c0103424342004c01529fd8799fd87a9f581ced97e0a1394724bb7cb94f20acf627abc253694c92b88bf8fb4b7f6fffd8799fd8799fd8799f581cf1feff38edd67922285e28845a207ddd2"

// CSwap implements dex.Dex. CSwap officially lists ADA pairs only, with ADA
// as token A. Price impact uses the realized-vs-marginal convention.
type CSwap struct {
	venue  pricing.Venue
	logger *slog.Logger
}

// New creates the adapter. logger may be nil.
func New(logger *slog.Logger) *CSwap {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSwap{
		venue:  pricing.DefaultVenue(pricing.ImpactRealizedVsMarginal),
		logger: logger,
	}
}

// Identifier returns the venue name.
func (c *CSwap) Identifier() string { return Identifier }

// OrderAddress returns the orderbook validator address.
func (c *CSwap) OrderAddress() string { return orderAddress }

// OrderScript returns the orderbook validator script.
func (c *CSwap) OrderScript() domain.Script {
	return domain.Script{Type: "PlutusV3", CborHex: orderbookScriptCbor}
}

// LiquidityPools walks the pool address UTxOs and maps each well-formed pool
// datum to a LiquidityPool. Records that fail to decode or fail template pull
// are skipped, never escalated.
func (c *CSwap) LiquidityPools(ctx context.Context, provider domain.DataProvider) ([]*domain.LiquidityPool, error) {
	utxos, err := provider.UTxOs(ctx, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("cswap: pool utxos: %w", err)
	}

	pools := make([]*domain.LiquidityPool, 0, len(utxos))
	skipped := 0
	for _, utxo := range utxos {
		pool, err := c.liquidityPoolFromUTxO(ctx, provider, utxo)
		if err != nil {
			skipped++
			c.logger.Debug("cswap: skipping pool utxo",
				slog.String("tx_hash", utxo.TxHash),
				slog.Int("output_index", utxo.OutputIndex),
				slog.String("error", err.Error()),
			)
			continue
		}
		if pool != nil {
			pools = append(pools, pool)
		}
	}
	if skipped > 0 {
		c.logger.Info("cswap: pool discovery complete",
			slog.Int("pools", len(pools)),
			slog.Int("skipped", skipped),
		)
	}
	return pools, nil
}

// liquidityPoolFromUTxO maps one pool UTxO. A nil pool with nil error means
// the UTxO is valid but not a supported pool (non-ADA pair, empty side).
func (c *CSwap) liquidityPoolFromUTxO(ctx context.Context, provider domain.DataProvider, utxo domain.UTxO) (*domain.LiquidityPool, error) {
	if utxo.DatumHash == "" {
		return nil, nil
	}

	raw, err := provider.DatumValue(ctx, utxo.DatumHash)
	if err != nil {
		return nil, fmt.Errorf("datum %s: %w", utxo.DatumHash, err)
	}
	datum, err := plutus.Decode(raw)
	if err != nil {
		return nil, err
	}
	params, err := plutus.Pull(poolTemplate, datum)
	if err != nil {
		return nil, err
	}

	tokenAPolicy, _ := params.Hex(plutus.ParamPoolAssetAPolicyID)
	tokenAName, _ := params.Hex(plutus.ParamPoolAssetAAssetName)
	if tokenAPolicy != "" || tokenAName != "" {
		// Only ADA pairs supported, with ADA as token A.
		return nil, nil
	}

	tokenBPolicy, err := params.Hex(plutus.ParamPoolAssetBPolicyID)
	if err != nil {
		return nil, err
	}
	tokenBName, err := params.Hex(plutus.ParamPoolAssetBAssetName)
	if err != nil {
		return nil, err
	}
	assetB := domain.NewAsset(tokenBPolicy, tokenBName, 0)

	adaBalance := domain.LovelaceBalance(utxo.AssetBalances)
	tokenBBalance := domain.BalanceOf(utxo.AssetBalances, assetB)
	if adaBalance.Sign() == 0 || tokenBBalance.Sign() == 0 {
		return nil, nil
	}

	reserveAda := new(big.Int).Sub(adaBalance, big.NewInt(minPoolAda))
	if reserveAda.Sign() < 0 {
		reserveAda.SetInt64(0)
	}

	pool := domain.NewLiquidityPool(Identifier, domain.Lovelace, assetB, reserveAda, tokenBBalance, utxo.Address, orderAddress)
	pool.Identifier = assetB.Identifier()

	lpFee, err := params.Int(plutus.ParamLpFee)
	if err != nil {
		return nil, err
	}
	pool.FeePercent = float64(lpFee.Int64()) / 100.0

	lpPolicy, _ := params.Hex(plutus.ParamLpTokenPolicyID)
	lpName, _ := params.Hex(plutus.ParamLpTokenAssetName)
	if lpPolicy != "" {
		lp := domain.NewAsset(lpPolicy, lpName, 0)
		pool.LpToken = &lp
	}
	if total, err := params.Int(plutus.ParamTotalLpTokens); err == nil {
		pool.TotalLpTokens = total
	}

	return pool, nil
}

// EstimatedReceive prices amountIn of swapInToken through pool.
func (c *CSwap) EstimatedReceive(pool *domain.LiquidityPool, swapInToken domain.Token, amountIn *big.Int) (*big.Int, error) {
	reserveIn, reserveOut, err := pool.CorrespondingReserves(swapInToken)
	if err != nil {
		return nil, err
	}
	return c.venue.EstimatedReceive(reserveIn, reserveOut, amountIn, pool.FeePercent), nil
}

// EstimatedGive returns the input required to withdraw amountOut of
// swapOutToken.
func (c *CSwap) EstimatedGive(pool *domain.LiquidityPool, swapOutToken domain.Token, amountOut *big.Int) (*big.Int, error) {
	reserveOut, reserveIn, err := pool.CorrespondingReserves(swapOutToken)
	if err != nil {
		return nil, err
	}
	return c.venue.EstimatedGive(reserveIn, reserveOut, amountOut, pool.FeePercent)
}

// PriceImpactPercent uses the realized-vs-marginal convention.
func (c *CSwap) PriceImpactPercent(pool *domain.LiquidityPool, swapInToken domain.Token, amountIn *big.Int) (float64, error) {
	reserveIn, reserveOut, err := pool.CorrespondingReserves(swapInToken)
	if err != nil {
		return 0, err
	}
	return c.venue.PriceImpactPercent(reserveIn, reserveOut, amountIn, pool.FeePercent), nil
}

// BuildSwapOrder assembles one payment to the orderbook address: deposit +
// batcher fee + the swap-in value, carrying the inline order datum.
func (c *CSwap) BuildSwapOrder(pool *domain.LiquidityPool, params dex.SwapParams) ([]domain.Payment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	estimated, err := c.EstimatedReceive(pool, params.SwapInToken, params.SwapInAmount)
	if err != nil {
		return nil, err
	}
	if estimated.Sign() <= 0 {
		return nil, fmt.Errorf("cswap: pool %s cannot fill the order: %w", pool.Identifier, domain.ErrInsufficientLiquidity)
	}
	slippageBps := pricing.SlippageBps(estimated, params.MinReceive)

	// The platform take is applied to the target before encoding; when the
	// output is ADA, the datum's target also carries the deposit.
	target := new(big.Int).Mul(params.MinReceive, big.NewInt(pricing.BpsDenominator-platformTakeBps))
	target.Quo(target, big.NewInt(pricing.BpsDenominator))
	template := orderToTokenTemplate
	if params.SwapOutToken.IsLovelace() {
		target.Add(target, big.NewInt(contractLovelace))
		template = orderToAdaTemplate
	}

	datum, err := plutus.Push(template, plutus.Params{
		plutus.ParamSenderKeyHash:         params.SenderKeyHash,
		plutus.ParamSenderStakingKeyHash:  params.SenderStakingKeyHash,
		plutus.ParamSwapOutTokenPolicyID:  params.SwapOutToken.PolicyID,
		plutus.ParamSwapOutTokenAssetName: params.SwapOutToken.AssetNameHex,
		plutus.ParamMinReceive:            target,
		plutus.ParamSwapInTokenPolicyID:   params.SwapInToken.PolicyID,
		plutus.ParamSwapInTokenAssetName:  params.SwapInToken.AssetNameHex,
		plutus.ParamSlippageBps:           big.NewInt(slippageBps),
		plutus.ParamPlatformFeeBps:        big.NewInt(platformTakeBps),
	})
	if err != nil {
		return nil, fmt.Errorf("cswap: order datum: %w", err)
	}
	datumHex, err := plutus.EncodeHex(datum)
	if err != nil {
		return nil, fmt.Errorf("cswap: order datum: %w", err)
	}

	payment := domain.Payment{
		Address:     orderAddress,
		AddressType: domain.AddressTypeContract,
		AssetBalances: []domain.AssetBalance{{
			Token:    domain.Lovelace,
			Quantity: big.NewInt(contractLovelace + batcherFee),
		}},
		Datum:         datumHex,
		IsInlineDatum: true,
		SpendUTxOs:    params.SpendUTxOs,
	}
	payment = dex.AddSwapInBalance(payment, params.SwapInToken, params.SwapInAmount)

	return []domain.Payment{payment}, nil
}

// BuildCancelSwapOrder refunds the outstanding order UTxO at the orderbook
// address back to returnAddress, spending it with the cancel redeemer.
func (c *CSwap) BuildCancelSwapOrder(outputs []domain.UTxO, returnAddress string) ([]domain.Payment, error) {
	var relevant *domain.UTxO
	for i := range outputs {
		if outputs[i].Address == orderAddress {
			relevant = &outputs[i]
			break
		}
	}
	if relevant == nil {
		return nil, fmt.Errorf("cswap: no output at order address: %w", domain.ErrOrderNotFound)
	}

	script := c.OrderScript()
	return []domain.Payment{{
		Address:       returnAddress,
		AddressType:   domain.AddressTypeBase,
		AssetBalances: relevant.AssetBalances,
		IsInlineDatum: false,
		SpendUTxOs: []domain.SpendUTxO{{
			UTxO:      *relevant,
			Redeemer:  cancelRedeemer,
			Validator: &script,
			Signer:    returnAddress,
		}},
	}}, nil
}

// SwapOrderFees discloses the fixed per-order fees.
func (c *CSwap) SwapOrderFees() []dex.SwapFee {
	return []dex.SwapFee{
		{
			ID:          "batcherFee",
			Title:       "Batcher Fee",
			Description: "CSWAP batcher fee required by the orderbook.",
			Value:       big.NewInt(batcherFee),
			IsReturned:  false,
		},
		{
			ID:          "deposit",
			Title:       "Deposit ADA",
			Description: "Minimum ADA bundled with the order; returned on completion or cancel.",
			Value:       big.NewInt(contractLovelace),
			IsReturned:  true,
		},
	}
}

var _ dex.Dex = (*CSwap)(nil)
