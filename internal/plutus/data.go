// Package plutus models Plutus-style structured data (integers, byte
// strings, lists, and tagged constructors), its canonical CBOR encoding, and
// a template engine for pulling typed parameters out of concrete datums and
// pushing parameters back into datum skeletons.
package plutus

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Kind enumerates the node types of a structured value.
type Kind uint8

const (
	KindInt Kind = iota
	KindBytes
	KindList
	KindConstr
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindConstr:
		return "constructor"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Data is one node of a structured value. The zero value is the integer 0.
type Data struct {
	kind  Kind
	i     *big.Int
	b     []byte
	items []Data
	tag   uint64
}

// NewInt creates an integer node.
func NewInt(v int64) Data {
	return Data{kind: KindInt, i: big.NewInt(v)}
}

// NewBigInt creates an integer node from an arbitrary-precision value.
func NewBigInt(v *big.Int) Data {
	return Data{kind: KindInt, i: new(big.Int).Set(v)}
}

// NewBytes creates a byte-string node.
func NewBytes(v []byte) Data {
	return Data{kind: KindBytes, b: append([]byte(nil), v...)}
}

// NewBytesHex creates a byte-string node from hex. It panics on invalid hex;
// use it for literals and pre-validated input only.
func NewBytesHex(h string) Data {
	v, err := hex.DecodeString(h)
	if err != nil {
		panic(fmt.Sprintf("plutus: invalid hex literal %q: %v", h, err))
	}
	return Data{kind: KindBytes, b: v}
}

// NewList creates a list node.
func NewList(items ...Data) Data {
	return Data{kind: KindList, items: items}
}

// NewConstr creates a tagged-constructor node.
func NewConstr(tag uint64, fields ...Data) Data {
	return Data{kind: KindConstr, tag: tag, items: fields}
}

// Kind returns the node type.
func (d Data) Kind() Kind { return d.kind }

// Int returns the integer value of a KindInt node. The result is a copy.
func (d Data) Int() *big.Int {
	if d.i == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(d.i)
}

// Bytes returns the byte-string value of a KindBytes node.
func (d Data) Bytes() []byte { return append([]byte(nil), d.b...) }

// BytesHex returns the byte-string value as lowercase hex.
func (d Data) BytesHex() string { return hex.EncodeToString(d.b) }

// Items returns the children of a list node or the fields of a constructor.
func (d Data) Items() []Data { return d.items }

// Tag returns the constructor alternative of a KindConstr node.
func (d Data) Tag() uint64 { return d.tag }

// Equal reports deep structural equality.
func (d Data) Equal(other Data) bool {
	if d.kind != other.kind {
		return false
	}
	switch d.kind {
	case KindInt:
		return d.Int().Cmp(other.Int()) == 0
	case KindBytes:
		return bytes.Equal(d.b, other.b)
	case KindList, KindConstr:
		if d.kind == KindConstr && d.tag != other.tag {
			return false
		}
		if len(d.items) != len(other.items) {
			return false
		}
		for i := range d.items {
			if !d.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (d Data) String() string {
	switch d.kind {
	case KindInt:
		return d.Int().String()
	case KindBytes:
		return "0x" + d.BytesHex()
	case KindList:
		return "[" + joinData(d.items) + "]"
	case KindConstr:
		return fmt.Sprintf("constr<%d>(%s)", d.tag, joinData(d.items))
	default:
		return "?"
	}
}

func joinData(items []Data) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}
