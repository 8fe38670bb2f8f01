package plutus

import (
	"errors"
	"math/big"
	"testing"

	"github.com/cardexlab/cardex/internal/domain"
)

func TestEncodeConstructorTags(t *testing.T) {
	cases := []struct {
		name string
		in   Data
		hex  string
	}{
		{"alt 0", NewConstr(0), "d87980"},
		{"alt 1", NewConstr(1), "d87a80"},
		{"alt 6", NewConstr(6), "d87f80"},
		{"alt 7 jumps to tag 1280", NewConstr(7), "d9050080"},
		{"alt 127 is tag 1400", NewConstr(127), "d9057880"},
		{"alt 128 uses general tag 102", NewConstr(128), "d86682188080"},
		{"fields encode in order", NewConstr(0, NewInt(1_000_000)), "d879811a000f4240"},
	}
	for _, tc := range cases {
		got, err := EncodeHex(tc.in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if got != tc.hex {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.hex)
		}
	}
}

func TestEncodeIntegers(t *testing.T) {
	cases := []struct {
		name string
		in   Data
		hex  string
	}{
		{"zero", NewInt(0), "00"},
		{"small", NewInt(23), "17"},
		{"negative", NewInt(-1), "20"},
		{"uint32 boundary", NewInt(4_294_967_295), "1affffffff"},
	}
	for _, tc := range cases {
		got, err := EncodeHex(tc.in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}
		if got != tc.hex {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.hex)
		}
	}
}

func TestRoundTripNested(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	neg := new(big.Int).Neg(huge)

	values := []Data{
		NewInt(0),
		NewBigInt(huge),
		NewBigInt(neg),
		NewBytes(nil),
		NewBytesHex("deadbeef"),
		NewList(NewInt(1), NewBytesHex("00ff"), NewList()),
		NewConstr(0,
			NewConstr(3, NewBigInt(huge)),
			NewList(NewConstr(9), NewConstr(200, NewInt(-5))),
			NewBytesHex("aa"),
		),
	}
	for _, v := range values {
		raw, err := Encode(v)
		if err != nil {
			t.Fatalf("encode %s: %v", v, err)
		}
		back, err := Decode(raw)
		if err != nil {
			t.Fatalf("decode %s: %v", v, err)
		}
		if !back.Equal(v) {
			t.Errorf("round trip changed value: %s -> %s", v, back)
		}

		// Canonical form: re-encoding the decoded value reproduces the bytes.
		again, err := Encode(back)
		if err != nil {
			t.Fatalf("re-encode %s: %v", v, err)
		}
		if string(again) != string(raw) {
			t.Errorf("%s: re-encode not byte-identical: %x vs %x", v, again, raw)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		hex  string
	}{
		{"truncated array", "d87982"},
		{"trailing bytes", "d8798000"},
		{"unsupported tag", "d903e780"},
		{"tag 102 without pair", "d86680"},
		{"constructor fields not a list", "d87900"},
	}
	for _, tc := range cases {
		if _, err := DecodeHex(tc.hex); !errors.Is(err, domain.ErrMalformedRecord) {
			t.Errorf("%s: got %v, want ErrMalformedRecord", tc.name, err)
		}
	}

	if _, err := DecodeHex("zz"); !errors.Is(err, domain.ErrMalformedRecord) {
		t.Errorf("non-hex input: got %v, want ErrMalformedRecord", err)
	}
}

func TestDatumHash(t *testing.T) {
	a := NewConstr(0, NewInt(42), NewBytesHex("beef"))
	b := NewConstr(0, NewInt(42), NewBytesHex("beef"))
	c := NewConstr(0, NewInt(43), NewBytesHex("beef"))

	ha, err := DatumHash(a)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(ha) != 64 {
		t.Fatalf("hash length %d, want 64 hex chars", len(ha))
	}
	hb, _ := DatumHash(b)
	hc, _ := DatumHash(c)
	if ha != hb {
		t.Errorf("equal values hash differently: %s vs %s", ha, hb)
	}
	if ha == hc {
		t.Errorf("distinct values share hash %s", ha)
	}
}
