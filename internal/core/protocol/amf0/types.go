// If you are AI: This file defines AMF0 type constants and value types.
// Object preserves insertion order (a plain map does not), which the RTMP
// command encoder relies on to reproduce wire-identical property sequences.

package amf0

// AMF0 type markers, per the Action Message Format 0 specification.
const (
	TypeNumber      = 0x00
	TypeBoolean     = 0x01
	TypeString      = 0x02
	TypeObject      = 0x03
	TypeMovieClip   = 0x04
	TypeNull        = 0x05
	TypeUndefined   = 0x06
	TypeReference   = 0x07
	TypeECMAArray   = 0x08
	TypeObjectEnd   = 0x09
	TypeStrictArray = 0x0A
	TypeDate        = 0x0B
	TypeLongString  = 0x0C
	TypeUnsupported = 0x0D
	TypeRecordSet   = 0x0E
	TypeXMLDocument = 0x0F
	TypeTypedObject = 0x10
	TypeAVMPlus     = 0x11
)

// Value represents a decoded AMF0 value. Concrete dynamic types are:
// float64, bool, string, *Object, Array, Date, or nil (Null/Undefined/
// and the lenient fallback for the unsupported marker types above).
type Value interface{}

// Property is one (key, value) pair of an Object, in wire order.
type Property struct {
	Key   string
	Value Value
}

// Object is an ordered sequence of properties, matching AMF0's wire
// representation (and that of ECMA-Array, which shares the same body).
// Insertion order is preserved through encode/decode round-trips.
type Object struct {
	props []Property
}

// NewObject returns an empty, ready-to-use Object.
func NewObject() *Object {
	return &Object{}
}

// Set appends a new property, or overwrites the value of an existing
// one in place without disturbing its position.
func (o *Object) Set(key string, value Value) *Object {
	for i := range o.props {
		if o.props[i].Key == key {
			o.props[i].Value = value
			return o
		}
	}
	o.props = append(o.props, Property{Key: key, Value: value})
	return o
}

// Get returns the value stored under key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	for _, p := range o.props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Properties returns the ordered (key, value) pairs backing the object.
// Callers must not mutate the returned slice.
func (o *Object) Properties() []Property {
	if o == nil {
		return nil
	}
	return o.props
}

// Len returns the number of properties in the object.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.props)
}

// Array represents an AMF0 strict array (0x0A): a fixed-count sequence
// of arbitrary AMF0 values.
type Array []Value

// Date represents an AMF0 date (0x0B): milliseconds since epoch, plus
// a timezone offset in minutes that RTMP publishers always set to zero.
// This codec does not interpret the offset: decode keeps it as read and
// encode writes TimezoneMinutes back out unchanged.
type Date struct {
	MillisSinceEpoch float64
	TimezoneMinutes  int16
}
