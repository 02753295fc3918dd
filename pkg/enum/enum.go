// Package enum implements extensible 8-bit codes: a closed set of named values
// plus an escape case that carries any other code unchanged, so codes defined
// after this software was written survive a decode/encode cycle.
package enum

import (
	"errors"
	"fmt"

	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

var ErrInvalidCode = errors.New("invalid extensible code")

// Base is the closed set of named values behind an extensible code
type Base interface {
	~uint8
	// Known reports whether the value is one of the named values
	Known() bool
}

// Code is either a named value of B or a raw code outside of B
type Code[B Base] struct {
	base B
	raw  uint8
	ext  bool
}

// Of wraps a named value
func Of[B Base](b B) Code[B] {
	return Code[B]{base: b}
}

// Ext wraps a raw code without looking it up
func Ext[B Base](raw uint8) Code[B] {
	return Code[B]{raw: raw, ext: true}
}

// FromUint8 maps a known code to its named value and anything else to Ext
func FromUint8[B Base](raw uint8) Code[B] {
	if B(raw).Known() {
		return Of(B(raw))
	}
	return Ext[B](raw)
}

// Uint8 returns the numeric code
func (c Code[B]) Uint8() uint8 {
	if c.ext {
		return c.raw
	}
	return uint8(c.base)
}

// Base returns the named value, if c is not an escape code
func (c Code[B]) Base() (B, bool) {
	if c.ext {
		var zero B
		return zero, false
	}
	return c.base, true
}

// IsExt reports whether c carries a raw code
func (c Code[B]) IsExt() bool {
	return c.ext
}

// Is compares c against a raw code
func (c Code[B]) Is(raw uint8) bool {
	return c.Uint8() == raw
}

// Normalize re-resolves c so a known raw code becomes its named value
func (c Code[B]) Normalize() Code[B] {
	return FromUint8[B](c.Uint8())
}

func (c Code[B]) String() string {
	if c.ext {
		return fmt.Sprintf("ext(%d)", c.raw)
	}
	if s, ok := any(c.base).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%d", uint8(c.base))
}

// MarshalCBOR encodes the numeric code as an unsigned integer
func (c Code[B]) MarshalCBOR() ([]byte, error) {
	return wire.Marshal(c.Uint8())
}

// UnmarshalCBOR decodes any unsigned 8-bit code
func (c *Code[B]) UnmarshalCBOR(data []byte) error {
	if wire.IsNull(data) {
		return fmt.Errorf("%w: %w", ErrInvalidCode, wire.ErrUnexpectedNull)
	}

	var raw uint8
	if err := wire.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}

	*c = FromUint8[B](raw)
	return nil
}
