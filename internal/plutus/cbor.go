package plutus

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/cardexlab/cardex/internal/domain"
)

// Plutus data maps constructor alternatives onto CBOR tags: alternatives 0-6
// use tags 121-127, 7-127 use 1280-1400, and anything beyond rides on the
// general tag 102 as [alternative, fields].
const (
	constrTagBase     = 121
	constrTagBaseHigh = 1280
	constrTagGeneral  = 102
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.BigIntConvert = cbor.BigIntConvertShortest
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("plutus: encode mode: %v", err))
	}
	decMode, err = cbor.DecOptions{MaxNestedLevels: 64}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("plutus: decode mode: %v", err))
	}
}

// Encode serializes d to its canonical CBOR form. Canonical here means
// definite-length encodings with shortest-form integers, so the same logical
// value always yields the same bytes.
func Encode(d Data) ([]byte, error) {
	v, err := toWire(d)
	if err != nil {
		return nil, err
	}
	out, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("plutus: encode: %w", err)
	}
	return out, nil
}

// EncodeHex is Encode with hex output, the form payments and providers carry.
func EncodeHex(d Data) (string, error) {
	raw, err := Encode(d)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Decode parses canonical CBOR bytes into a structured value. Truncated,
// trailing, or ill-tagged input yields domain.ErrMalformedRecord.
func Decode(raw []byte) (Data, error) {
	var v any
	if err := decMode.Unmarshal(raw, &v); err != nil {
		return Data{}, fmt.Errorf("plutus: decode: %v: %w", err, domain.ErrMalformedRecord)
	}
	return fromWire(v)
}

// DecodeHex is Decode for hex-encoded input.
func DecodeHex(h string) (Data, error) {
	raw, err := hex.DecodeString(h)
	if err != nil {
		return Data{}, fmt.Errorf("plutus: decode hex: %v: %w", err, domain.ErrMalformedRecord)
	}
	return Decode(raw)
}

// DatumHash returns the hex blake2b-256 hash of d's canonical encoding, the
// datum hash by which outputs reference chain-stored values.
func DatumHash(d Data) (string, error) {
	raw, err := Encode(d)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func toWire(d Data) (any, error) {
	switch d.kind {
	case KindInt:
		return d.Int(), nil
	case KindBytes:
		if d.b == nil {
			return []byte{}, nil
		}
		return d.b, nil
	case KindList:
		return itemsToWire(d.items)
	case KindConstr:
		fields, err := itemsToWire(d.items)
		if err != nil {
			return nil, err
		}
		switch {
		case d.tag <= 6:
			return cbor.Tag{Number: constrTagBase + d.tag, Content: fields}, nil
		case d.tag <= 127:
			return cbor.Tag{Number: constrTagBaseHigh + d.tag - 7, Content: fields}, nil
		default:
			return cbor.Tag{Number: constrTagGeneral, Content: []any{d.tag, fields}}, nil
		}
	default:
		return nil, fmt.Errorf("plutus: encode: unknown kind %d", d.kind)
	}
}

func itemsToWire(items []Data) ([]any, error) {
	out := make([]any, len(items))
	for i, it := range items {
		v, err := toWire(it)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func fromWire(v any) (Data, error) {
	switch t := v.(type) {
	case uint64:
		return Data{kind: KindInt, i: new(big.Int).SetUint64(t)}, nil
	case int64:
		return Data{kind: KindInt, i: big.NewInt(t)}, nil
	case big.Int:
		return Data{kind: KindInt, i: new(big.Int).Set(&t)}, nil
	case *big.Int:
		return Data{kind: KindInt, i: new(big.Int).Set(t)}, nil
	case []byte:
		return Data{kind: KindBytes, b: t}, nil
	case []any:
		items, err := itemsFromWire(t)
		if err != nil {
			return Data{}, err
		}
		return Data{kind: KindList, items: items}, nil
	case cbor.Tag:
		return constrFromTag(t)
	default:
		return Data{}, fmt.Errorf("plutus: decode: unexpected CBOR item %T: %w", v, domain.ErrMalformedRecord)
	}
}

func itemsFromWire(vs []any) ([]Data, error) {
	items := make([]Data, len(vs))
	for i, v := range vs {
		d, err := fromWire(v)
		if err != nil {
			return nil, err
		}
		items[i] = d
	}
	return items, nil
}

func constrFromTag(t cbor.Tag) (Data, error) {
	var alt uint64
	content := t.Content
	switch {
	case t.Number >= constrTagBase && t.Number <= constrTagBase+6:
		alt = t.Number - constrTagBase
	case t.Number >= constrTagBaseHigh && t.Number <= constrTagBaseHigh+120:
		alt = t.Number - constrTagBaseHigh + 7
	case t.Number == constrTagGeneral:
		pair, ok := t.Content.([]any)
		if !ok || len(pair) != 2 {
			return Data{}, fmt.Errorf("plutus: decode: malformed tag 102 payload: %w", domain.ErrMalformedRecord)
		}
		switch n := pair[0].(type) {
		case uint64:
			alt = n
		case int64:
			if n < 0 {
				return Data{}, fmt.Errorf("plutus: decode: negative constructor alternative: %w", domain.ErrMalformedRecord)
			}
			alt = uint64(n)
		default:
			return Data{}, fmt.Errorf("plutus: decode: non-integer constructor alternative: %w", domain.ErrMalformedRecord)
		}
		content = pair[1]
	default:
		return Data{}, fmt.Errorf("plutus: decode: unsupported CBOR tag %d: %w", t.Number, domain.ErrMalformedRecord)
	}

	fieldsRaw, ok := content.([]any)
	if !ok {
		return Data{}, fmt.Errorf("plutus: decode: constructor fields are not a list: %w", domain.ErrMalformedRecord)
	}
	fields, err := itemsFromWire(fieldsRaw)
	if err != nil {
		return Data{}, err
	}
	return Data{kind: KindConstr, tag: alt, items: fields}, nil
}
