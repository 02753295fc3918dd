package content

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

// Text is a UTF-8 string, always encoded as a CBOR text string
type Text string

func (t Text) String() string {
	return string(t)
}

// Compare orders texts byte-wise
func (t Text) Compare(other Text) int {
	return strings.Compare(string(t), string(other))
}

// View returns a borrowed view of t
func (t *Text) View() TextRef {
	return TextRef{p: t}
}

// MarshalCBOR encodes t as a text string
func (t Text) MarshalCBOR() ([]byte, error) {
	return wire.Marshal(string(t))
}

// UnmarshalCBOR decodes a text string; byte strings and null are rejected
func (t *Text) UnmarshalCBOR(data []byte) error {
	if wire.IsNull(data) {
		return wire.ErrUnexpectedNull
	}

	var s string
	if err := wire.Unmarshal(data, &s); err != nil {
		return err
	}

	*t = Text(s)
	return nil
}

// TextRef is a borrowed view of a Text
type TextRef struct {
	p *Text
}

func (r TextRef) String() string {
	if r.p == nil {
		return ""
	}
	return string(*r.p)
}

// MarshalCBOR encodes the viewed text
func (r TextRef) MarshalCBOR() ([]byte, error) {
	return wire.Marshal(r.String())
}

// Bytes is an arbitrary byte sequence, always encoded as a CBOR byte string.
// Empty and nil encode identically; decoding an empty byte string yields nil.
type Bytes []byte

// Equal reports whether b and other hold the same bytes
func (b Bytes) Equal(other Bytes) bool {
	return bytes.Equal(b, other)
}

// Compare orders byte sequences lexicographically
func (b Bytes) Compare(other Bytes) int {
	return bytes.Compare(b, other)
}

func (b Bytes) String() string {
	return hex.EncodeToString(b)
}

// View returns a borrowed view of b
func (b *Bytes) View() BytesRef {
	return BytesRef{p: b}
}

// MarshalCBOR encodes b as a byte string
func (b Bytes) MarshalCBOR() ([]byte, error) {
	return wire.Marshal([]byte(b))
}

// UnmarshalCBOR decodes a byte string; text strings and null are rejected
func (b *Bytes) UnmarshalCBOR(data []byte) error {
	if wire.IsNull(data) {
		return wire.ErrUnexpectedNull
	}

	var raw []byte
	if err := wire.Unmarshal(data, &raw); err != nil {
		return err
	}

	if len(raw) == 0 {
		raw = nil
	}
	*b = Bytes(raw)
	return nil
}

// BytesRef is a borrowed view of Bytes
type BytesRef struct {
	p *Bytes
}

// Bytes returns the viewed bytes without copying
func (r BytesRef) Bytes() []byte {
	if r.p == nil {
		return nil
	}
	return *r.p
}

// MarshalCBOR encodes the viewed bytes
func (r BytesRef) MarshalCBOR() ([]byte, error) {
	return wire.Marshal(r.Bytes())
}

// Salt is the per-message entropy of an envelope
type Salt [SaltSize]byte

func (s Salt) String() string {
	return hex.EncodeToString(s[:])
}

// MarshalCBOR encodes s as a 16-byte byte string
func (s Salt) MarshalCBOR() ([]byte, error) {
	return wire.Marshal(s[:])
}

// UnmarshalCBOR decodes a byte string of exactly 16 bytes
func (s *Salt) UnmarshalCBOR(data []byte) error {
	raw, err := decodeFixed(data, SaltSize, "salt")
	if err != nil {
		return err
	}
	copy(s[:], raw)
	return nil
}

func decodeFixed(data []byte, size int, what string) ([]byte, error) {
	if wire.IsNull(data) {
		return nil, wire.ErrUnexpectedNull
	}

	var raw []byte
	if err := wire.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) != size {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrInvalidLength, what, len(raw), size)
	}
	return raw, nil
}

func normalizeBytes(b []byte) Bytes {
	if len(b) == 0 {
		return nil
	}
	return Bytes(b)
}
