package content

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ZentaChain/zentalk-content/pkg/crypto"
	"github.com/ZentaChain/zentalk-content/pkg/enum"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

// MessageID is a content-addressed message identifier: one hash algorithm
// byte followed by 31 digest bytes
type MessageID [MessageIDSize]byte

// MessageIDFromBytes copies a 32-byte identifier
func MessageIDFromBytes(b []byte) (MessageID, error) {
	var id MessageID
	if len(b) != MessageIDSize {
		return id, fmt.Errorf("%w: message ID is %d bytes, want %d", ErrInvalidLength, len(b), MessageIDSize)
	}
	copy(id[:], b)
	return id, nil
}

// ParseMessageID decodes a hex encoded identifier
func ParseMessageID(s string) (MessageID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return MessageID{}, err
	}
	return MessageIDFromBytes(b)
}

// HashAlg returns the algorithm byte
func (id MessageID) HashAlg() HashAlg {
	return enum.FromUint8[BaseHashAlg](id[0])
}

// Digest returns the digest bytes
func (id MessageID) Digest() []byte {
	return id[1:]
}

// IsZero reports whether id is all zeros
func (id MessageID) IsZero() bool {
	return id == MessageID{}
}

func (id MessageID) String() string {
	return hex.EncodeToString(id[:])
}

// View returns a borrowed view of id
func (id *MessageID) View() MessageIDRef {
	return MessageIDRef{p: id}
}

// MarshalCBOR encodes id as a 32-byte byte string
func (id MessageID) MarshalCBOR() ([]byte, error) {
	return wire.Marshal(id[:])
}

// UnmarshalCBOR decodes a byte string of exactly 32 bytes
func (id *MessageID) UnmarshalCBOR(data []byte) error {
	raw, err := decodeFixed(data, MessageIDSize, "message ID")
	if err != nil {
		return err
	}
	copy(id[:], raw)
	return nil
}

// MessageIDRef is a borrowed view of a MessageID. The zero value views no
// identifier and encodes as null.
type MessageIDRef struct {
	p *MessageID
}

// IsSet reports whether r views an identifier
func (r MessageIDRef) IsSet() bool {
	return r.p != nil
}

// HashAlg returns the algorithm byte of the viewed identifier
func (r MessageIDRef) HashAlg() HashAlg {
	if r.p == nil {
		return enum.Of(HashAlgReserved)
	}
	return r.p.HashAlg()
}

// MarshalCBOR encodes the viewed identifier, or null
func (r MessageIDRef) MarshalCBOR() ([]byte, error) {
	if r.p == nil {
		return wire.Marshal(nil)
	}
	return wire.Marshal(r.p[:])
}

func optionalIDRef(id *MessageID) MessageIDRef {
	if id == nil {
		return MessageIDRef{}
	}
	return id.View()
}

// NewMessageID derives the SHA-256 message ID (algorithm 0x01) of c as sent
// by senderURI to roomURI
func NewMessageID(senderURI, roomURI string, c *MimiContent) (MessageID, error) {
	return NewMessageIDWithDigest(uint8(HashAlgSHA256), crypto.SHA256(), senderURI, roomURI, c)
}

// NewMessageIDWithDigest derives a message ID with any digest tagged with alg.
// Nothing checks that alg names d; prefer HashRegistry.NewMessageID.
func NewMessageIDWithDigest(alg uint8, d crypto.Digest, senderURI, roomURI string, c *MimiContent) (MessageID, error) {
	var id MessageID
	if c == nil {
		return id, encodeError(ErrNilContent)
	}

	encoded, err := c.Encode()
	if err != nil {
		return id, err
	}

	h := d.New()
	io.WriteString(h, senderURI)
	io.WriteString(h, roomURI)
	h.Write(encoded)
	h.Write(c.salt[:])

	id[0] = alg
	// digests shorter than 31 bytes leave the tail zeroed
	copy(id[1:], d.Sum(h))
	return id, nil
}

// Verify recomputes id from its own algorithm byte and compares in constant
// time. A nil registry means DefaultHashRegistry.
func (id MessageID) Verify(r *HashRegistry, senderURI, roomURI string, c *MimiContent) (bool, error) {
	if r == nil {
		r = DefaultHashRegistry
	}

	expected, err := r.NewMessageID(id.HashAlg(), senderURI, roomURI, c)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(id[:], expected[:]) == 1, nil
}
