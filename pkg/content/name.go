package content

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ZentaChain/zentalk-content/pkg/wire"
	"github.com/fxamacker/cbor/v2"
)

// Name is an extension map key: a signed integer or a text string
type Name struct {
	text   Text
	num    int64
	isText bool
}

// IntName returns an integer key
func IntName(n int64) Name {
	return Name{num: n}
}

// TextName returns a text key
func TextName(s string) Name {
	return Name{text: Text(s), isText: true}
}

// Standard extension keys
var (
	SenderURIKey = IntName(SenderURIExtensionKey)
	RoomURIKey   = IntName(RoomURIExtensionKey)
)

// Int returns the integer key, if n is one
func (n Name) Int() (int64, bool) {
	return n.num, !n.isText
}

// Text returns the text key, if n is one
func (n Name) Text() (Text, bool) {
	return n.text, n.isText
}

// IsText reports whether n is a text key
func (n Name) IsText() bool {
	return n.isText
}

func (n Name) String() string {
	if n.isText {
		return strconv.Quote(string(n.text))
	}
	return strconv.FormatInt(n.num, 10)
}

// View returns a borrowed view of n
func (n *Name) View() NameRef {
	return NameRef{p: n}
}

// MarshalCBOR encodes n as an integer or text string
func (n Name) MarshalCBOR() ([]byte, error) {
	return n.View().MarshalCBOR()
}

// UnmarshalCBOR decodes an integer or text key; anything else is rejected
func (n *Name) UnmarshalCBOR(data []byte) error {
	switch {
	case wire.IsInt(data):
		var num int64
		if err := wire.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidName, err)
		}
		*n = IntName(num)
	case wire.IsText(data):
		var s string
		if err := wire.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidName, err)
		}
		*n = TextName(s)
	default:
		return ErrInvalidName
	}
	return nil
}

// NameRef is a borrowed view of a Name
type NameRef struct {
	p *Name
}

// MarshalCBOR encodes the viewed key
func (r NameRef) MarshalCBOR() ([]byte, error) {
	if r.p.isText {
		return r.p.text.View().MarshalCBOR()
	}
	return wire.Marshal(r.p.num)
}

// Value is an arbitrary CBOR data item held in canonical form
type Value struct {
	raw cbor.RawMessage
}

var nullValue = []byte{0xf6}

// NewValue encodes v canonically. A cbor.RawMessage is re-canonicalized.
func NewValue(v any) (Value, error) {
	if raw, ok := v.(cbor.RawMessage); ok {
		return ValueFromCBOR(raw)
	}

	raw, err := wire.Marshal(v)
	if err != nil {
		return Value{}, encodeError(err)
	}
	return Value{raw: raw}, nil
}

// MustValue is NewValue for values known to encode
func MustValue(v any) Value {
	val, err := NewValue(v)
	if err != nil {
		panic(err)
	}
	return val
}

// ValueFromCBOR parses one data item and rewrites it in canonical form.
// The item is rewritten in place, so map keys of any type, tags and
// undefined keep their meaning.
func ValueFromCBOR(data []byte) (Value, error) {
	return valueFromCBOR(nil, data)
}

func valueFromCBOR(dm cbor.DecMode, data []byte) (Value, error) {
	raw, err := wire.Canonical(dm, data)
	if err != nil {
		return Value{}, decodeError(err)
	}
	return Value{raw: raw}, nil
}

// Raw returns a copy of the canonical encoding. The zero Value is null.
func (v Value) Raw() []byte {
	return bytes.Clone(v.encoded())
}

func (v Value) encoded() []byte {
	if len(v.raw) == 0 {
		return nullValue
	}
	return v.raw
}

// Decode unmarshals the value into out
func (v Value) Decode(out any) error {
	return wire.Unmarshal(v.encoded(), out)
}

// Equal compares canonical encodings
func (v Value) Equal(other Value) bool {
	return bytes.Equal(v.encoded(), other.encoded())
}

func (v Value) String() string {
	s, err := wire.Diagnose(v.encoded())
	if err != nil {
		return fmt.Sprintf("%x", v.encoded())
	}
	return s
}

// View returns a borrowed view of v
func (v *Value) View() ValueRef {
	return ValueRef{p: v}
}

// MarshalCBOR emits the canonical encoding unchanged
func (v Value) MarshalCBOR() ([]byte, error) {
	return v.encoded(), nil
}

// UnmarshalCBOR re-canonicalizes the incoming item
func (v *Value) UnmarshalCBOR(data []byte) error {
	val, err := ValueFromCBOR(data)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// ValueRef is a borrowed view of a Value
type ValueRef struct {
	p *Value
}

// MarshalCBOR emits the viewed encoding unchanged
func (r ValueRef) MarshalCBOR() ([]byte, error) {
	return r.p.encoded(), nil
}
