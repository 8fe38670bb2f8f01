package plutus

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/cardexlab/cardex/internal/domain"
)

// ParamKey names a placeholder leaf inside a Template. The set of well-known
// keys below covers the pool and order datums of the shipped venues; venue
// packages may introduce their own keys, the engine treats them as opaque.
type ParamKey string

const (
	ParamTotalLpTokens          ParamKey = "TotalLpTokens"
	ParamLpFee                  ParamKey = "LpFee"
	ParamPoolAssetAPolicyID     ParamKey = "PoolAssetAPolicyId"
	ParamPoolAssetAAssetName    ParamKey = "PoolAssetAAssetName"
	ParamPoolAssetBPolicyID     ParamKey = "PoolAssetBPolicyId"
	ParamPoolAssetBAssetName    ParamKey = "PoolAssetBAssetName"
	ParamLpTokenPolicyID        ParamKey = "LpTokenPolicyId"
	ParamLpTokenAssetName       ParamKey = "LpTokenAssetName"
	ParamSenderKeyHash          ParamKey = "SenderPubKeyHash"
	ParamSenderStakingKeyHash   ParamKey = "SenderStakingKeyHash"
	ParamReceiverKeyHash        ParamKey = "ReceiverPubKeyHash"
	ParamReceiverStakingKeyHash ParamKey = "ReceiverStakingKeyHash"
	ParamSwapInTokenPolicyID    ParamKey = "SwapInTokenPolicyId"
	ParamSwapInTokenAssetName   ParamKey = "SwapInTokenAssetName"
	ParamSwapOutTokenPolicyID   ParamKey = "SwapOutTokenPolicyId"
	ParamSwapOutTokenAssetName  ParamKey = "SwapOutTokenAssetName"
	ParamSwapInAmount           ParamKey = "SwapInAmount"
	ParamMinReceive             ParamKey = "MinReceive"
	ParamSlippageBps            ParamKey = "SlippageBps"
	ParamPlatformFeeBps         ParamKey = "PlatformFeeBps"
	ParamDepositLovelace        ParamKey = "DepositLovelace"
)

// Params maps parameter keys to concrete scalars: *big.Int for integer
// leaves, hex strings for byte-string leaves. Insertion order is irrelevant.
type Params map[ParamKey]any

// Int returns the integer parameter under key.
func (p Params) Int(key ParamKey) (*big.Int, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("plutus: parameter %s: %w", key, domain.ErrMissingParameter)
	}
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("plutus: parameter %s holds %T, want *big.Int: %w", key, v, domain.ErrMissingParameter)
	}
	return n, nil
}

// Hex returns the byte-string parameter under key as hex.
func (p Params) Hex(key ParamKey) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("plutus: parameter %s: %w", key, domain.ErrMissingParameter)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("plutus: parameter %s holds %T, want string: %w", key, v, domain.ErrMissingParameter)
	}
	return s, nil
}

// Template is a structural skeleton of one datum: the same shape as Data, but
// Int/Bytes leaves may hold a ParamKey instead of a literal value.
type Template struct {
	kind  Kind
	param ParamKey // non-empty marks a parameterized leaf
	lit   Data     // literal leaf when param is empty
	items []Template
	tag   uint64
}

// TInt creates a parameterized integer leaf.
func TInt(key ParamKey) Template {
	return Template{kind: KindInt, param: key}
}

// TBytes creates a parameterized byte-string leaf.
func TBytes(key ParamKey) Template {
	return Template{kind: KindBytes, param: key}
}

// TLit creates a literal node that must match the concrete datum exactly.
// Structural literals expand recursively, so a fixed list or constructor
// subtree can be embedded without spelling out each child.
func TLit(d Data) Template {
	t := Template{kind: d.kind, lit: d, tag: d.tag}
	for _, item := range d.items {
		t.items = append(t.items, TLit(item))
	}
	return t
}

// TList creates a list node.
func TList(items ...Template) Template {
	return Template{kind: KindList, items: items}
}

// TConstr creates a tagged-constructor node.
func TConstr(tag uint64, fields ...Template) Template {
	return Template{kind: KindConstr, tag: tag, items: fields}
}

// Pull walks template and value in lock-step and collects the concrete scalar
// under every parameterized leaf. Structural disagreement (kind, constructor
// tag, length, or literal-leaf inequality) fails with domain.ErrShapeMismatch.
func Pull(t Template, value Data) (Params, error) {
	params := Params{}
	if err := pull(t, value, "$", params); err != nil {
		return nil, err
	}
	return params, nil
}

func pull(t Template, value Data, path string, params Params) error {
	if t.kind != value.kind {
		return fmt.Errorf("plutus: %s: template %s vs value %s: %w", path, t.kind, value.kind, domain.ErrShapeMismatch)
	}

	switch t.kind {
	case KindInt:
		if t.param != "" {
			params[t.param] = value.Int()
			return nil
		}
		if !t.lit.Equal(value) {
			return fmt.Errorf("plutus: %s: literal int %s != %s: %w", path, t.lit, value, domain.ErrShapeMismatch)
		}
		return nil
	case KindBytes:
		if t.param != "" {
			params[t.param] = value.BytesHex()
			return nil
		}
		if !t.lit.Equal(value) {
			return fmt.Errorf("plutus: %s: literal bytes %s != %s: %w", path, t.lit, value, domain.ErrShapeMismatch)
		}
		return nil
	case KindList, KindConstr:
		if t.kind == KindConstr && t.tag != value.tag {
			return fmt.Errorf("plutus: %s: constructor %d != %d: %w", path, t.tag, value.tag, domain.ErrShapeMismatch)
		}
		if len(t.items) != len(value.items) {
			return fmt.Errorf("plutus: %s: %d children != %d: %w", path, len(t.items), len(value.items), domain.ErrShapeMismatch)
		}
		for i := range t.items {
			if err := pull(t.items[i], value.items[i], fmt.Sprintf("%s.%d", path, i), params); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("plutus: %s: unknown template kind %d: %w", path, t.kind, domain.ErrShapeMismatch)
	}
}

// Push substitutes params into template's parameterized leaves and returns
// the concrete structured value. An absent key fails with
// domain.ErrMissingParameter; literal leaves pass through unchanged.
func Push(t Template, params Params) (Data, error) {
	switch t.kind {
	case KindInt:
		if t.param == "" {
			return t.lit, nil
		}
		n, err := params.Int(t.param)
		if err != nil {
			return Data{}, err
		}
		return NewBigInt(n), nil
	case KindBytes:
		if t.param == "" {
			return t.lit, nil
		}
		h, err := params.Hex(t.param)
		if err != nil {
			return Data{}, err
		}
		raw, err := hex.DecodeString(h)
		if err != nil {
			return Data{}, fmt.Errorf("plutus: parameter %s: invalid hex %q: %w", t.param, h, domain.ErrMissingParameter)
		}
		return NewBytes(raw), nil
	case KindList, KindConstr:
		items := make([]Data, len(t.items))
		for i := range t.items {
			child, err := Push(t.items[i], params)
			if err != nil {
				return Data{}, err
			}
			items[i] = child
		}
		if t.kind == KindList {
			return Data{kind: KindList, items: items}, nil
		}
		return Data{kind: KindConstr, tag: t.tag, items: items}, nil
	default:
		return Data{}, fmt.Errorf("plutus: push: unknown template kind %d", t.kind)
	}
}

