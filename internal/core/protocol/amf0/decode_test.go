// If you are AI: This file tests AMF0 decoding: round-trips across the
// full supported value set, truncation errors, and strict-mode behavior.

package amf0

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// TestRoundTrip_AllValueKinds encodes then decodes one value of every
// supported kind and checks the result compares equal, object property
// order included.
func TestRoundTrip_AllValueKinds(t *testing.T) {
	cases := map[string]Value{
		"number":       float64(3.14159),
		"negative":     float64(-1e9),
		"bool true":    true,
		"bool false":   false,
		"string":       "hello, rtmp",
		"empty string": "",
		"null":         nil,
		"object": NewObject().
			Set("first", float64(1)).
			Set("second", "two").
			Set("third", true),
		"nested object": NewObject().
			Set("inner", NewObject().Set("k", "v")),
		"strict array": Array{float64(1), "two", nil, true},
		"empty array":  Array{},
		"date":         Date{MillisSinceEpoch: 1234567890123, TimezoneMinutes: 0},
	}

	for name, want := range cases {
		var buf bytes.Buffer
		if err := Encode(&buf, want); err != nil {
			t.Fatalf("%s: Encode: %v", name, err)
		}
		got, err := Decode(&buf)
		if err != nil {
			t.Fatalf("%s: Decode: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: round trip mismatch: want %#v, got %#v", name, want, got)
		}
	}
}

// TestDecode_ECMAArray checks that an ECMA array decodes as an Object,
// ignoring its associative-count prefix.
func TestDecode_ECMAArray(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(TypeECMAArray)
	buf.Write([]byte{0x00, 0x00, 0x00, 0x63}) // count 99, intentionally wrong
	buf.Write([]byte{0x00, 0x03})
	buf.WriteString("key")
	buf.WriteByte(TypeString)
	buf.Write([]byte{0x00, 0x05})
	buf.WriteString("value")
	buf.Write([]byte{0x00, 0x00}) // empty key
	buf.WriteByte(TypeObjectEnd)

	val, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	obj, ok := val.(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", val)
	}
	if v, _ := obj.Get("key"); v != "value" {
		t.Fatalf("expected key=value, got %v", v)
	}
}

// TestDecode_LongString checks the u32-length string form decodes to
// an ordinary Go string.
func TestDecode_LongString(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(TypeLongString)
	buf.Write([]byte{0x00, 0x00, 0x00, 0x05})
	buf.WriteString("lange")

	val, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if val != "lange" {
		t.Fatalf("expected %q, got %v", "lange", val)
	}
}

// TestDecode_TruncatedValue checks that a value cut off mid-read fails
// with ErrTruncated rather than a bare EOF.
func TestDecode_TruncatedValue(t *testing.T) {
	cases := map[string][]byte{
		"string cut mid-body":   {TypeString, 0x00, 0x10, 'h', 'i'},
		"number cut mid-double": {TypeNumber, 0x3F, 0xF0},
		"object cut mid-key":    {TypeObject, 0x00, 0x04, 'a', 'b'},
	}
	for name, wire := range cases {
		if _, err := Decode(bytes.NewReader(wire)); !errors.Is(err, ErrTruncated) {
			t.Errorf("%s: expected ErrTruncated, got %v", name, err)
		}
	}
}

// TestDecode_StrictModeRejectsUnknownMarkers checks that strict mode
// turns the lenient decode-as-Null markers into hard errors.
func TestDecode_StrictModeRejectsUnknownMarkers(t *testing.T) {
	wire := []byte{TypeReference, 0x00, 0x05}

	dec := NewDecoder(bytes.NewReader(wire))
	dec.Strict = true
	if _, err := dec.Decode(); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("strict mode: expected ErrUnknownType, got %v", err)
	}

	if val, err := Decode(bytes.NewReader(wire)); err != nil || val != nil {
		t.Fatalf("lenient mode: expected nil value and no error, got %v, %v", val, err)
	}
}
