package content

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ZentaChain/zentalk-content/pkg/crypto"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

// Expiration is when a message stops being shown. A relative time counts
// seconds from hub acceptance, an absolute one seconds since the epoch.
type Expiration struct {
	_        struct{} `cbor:",toarray"`
	Relative bool
	Time     uint32
}

// MimiContent is the content envelope. It is built once with a Builder or
// decoded, and never modified afterwards.
type MimiContent struct {
	salt       Salt
	replaces   *MessageID
	topicID    Bytes
	expires    *Expiration
	inReplyTo  *MessageID
	extensions Extensions
	nestedPart NestedPart
}

// contentWire is the positional layout of MimiContent
type contentWire struct {
	_          struct{} `cbor:",toarray"`
	Salt       Salt
	Replaces   *MessageID
	TopicID    Bytes
	Expires    *Expiration
	InReplyTo  *MessageID
	Extensions Extensions
	NestedPart NestedPart
}

// Salt returns the per-message salt
func (c *MimiContent) Salt() Salt {
	return c.salt
}

// Replaces returns the ID of the message this one edits
func (c *MimiContent) Replaces() (MessageID, bool) {
	if c.replaces == nil {
		return MessageID{}, false
	}
	return *c.replaces, true
}

// TopicID returns a copy of the topic, absent when empty
func (c *MimiContent) TopicID() (Bytes, bool) {
	if len(c.topicID) == 0 {
		return nil, false
	}
	return Bytes(bytes.Clone(c.topicID)), true
}

// Expires returns the expiry
func (c *MimiContent) Expires() (Expiration, bool) {
	if c.expires == nil {
		return Expiration{}, false
	}
	return *c.expires, true
}

// InReplyTo returns the ID of the message this one answers
func (c *MimiContent) InReplyTo() (MessageID, bool) {
	if c.inReplyTo == nil {
		return MessageID{}, false
	}
	return *c.inReplyTo, true
}

// Extension looks up one extension value
func (c *MimiContent) Extension(name Name) (Value, bool) {
	return c.extensions.Get(name)
}

// Extensions returns a copy of the extension map
func (c *MimiContent) Extensions() Extensions {
	return c.extensions.Clone()
}

// NestedPart returns a copy of the content tree
func (c *MimiContent) NestedPart() NestedPart {
	return c.nestedPart.Clone()
}

// ExtensionAs decodes extension name into T. Absence and a value of the
// wrong shape both report false.
func ExtensionAs[T any](c *MimiContent, name Name) (T, bool) {
	var out T

	v, ok := c.Extension(name)
	if !ok {
		return out, false
	}
	if err := v.Decode(&out); err != nil {
		return out, false
	}
	return out, true
}

// SenderURI returns the sender URI extension
func (c *MimiContent) SenderURI() (string, bool) {
	return ExtensionAs[string](c, SenderURIKey)
}

// RoomURI returns the room URI extension
func (c *MimiContent) RoomURI() (string, bool) {
	return ExtensionAs[string](c, RoomURIKey)
}

// Encode returns the canonical encoding of c
func (c *MimiContent) Encode() ([]byte, error) {
	if c == nil {
		return nil, encodeError(ErrNilContent)
	}

	b, err := wire.Marshal(contentWire{
		Salt:       c.salt,
		Replaces:   c.replaces,
		TopicID:    c.topicID,
		Expires:    c.expires,
		InReplyTo:  c.inReplyTo,
		Extensions: c.extensions,
		NestedPart: c.nestedPart,
	})
	if err != nil {
		return nil, encodeError(err)
	}
	return b, nil
}

// EncodeTo writes the canonical encoding of c to w
func (c *MimiContent) EncodeTo(w io.Writer) error {
	b, err := c.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Decode decodes an envelope with the default decoder
func Decode(data []byte) (*MimiContent, error) {
	return defaultDecoder.DecodeContent(data)
}

// DecodeFrom reads r to the end and decodes an envelope
func DecodeFrom(r io.Reader) (*MimiContent, error) {
	return defaultDecoder.DecodeFrom(r)
}

// DecodeFrom reads r to the end and decodes an envelope
func (d *Decoder) DecodeFrom(r io.Reader) (*MimiContent, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return d.DecodeContent(buf.Bytes())
}

// MarshalCBOR lets an envelope be embedded in other records
func (c *MimiContent) MarshalCBOR() ([]byte, error) {
	return c.Encode()
}

// UnmarshalCBOR decodes with the default decoder
func (c *MimiContent) UnmarshalCBOR(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

// Hash digests the canonical encoding of c
func (c *MimiContent) Hash(d crypto.Digest) ([]byte, error) {
	b, err := c.Encode()
	if err != nil {
		return nil, err
	}
	return crypto.Sum(d, b), nil
}

// FrankingTag is HMAC-SHA-256 over an encoded envelope keyed by its salt
type FrankingTag [32]byte

func (t FrankingTag) String() string {
	return hex.EncodeToString(t[:])
}

// FrankingTag computes the franking tag of c
func (c *MimiContent) FrankingTag() (FrankingTag, error) {
	b, err := c.Encode()
	if err != nil {
		return FrankingTag{}, err
	}
	return crypto.HMACSHA256(c.salt[:], b), nil
}

// View returns a borrowed view of c
func (c *MimiContent) View() ContentRef {
	return ContentRef{
		Salt:       &c.salt,
		Replaces:   optionalIDRef(c.replaces),
		TopicID:    c.topicID.View(),
		Expires:    c.expires,
		InReplyTo:  optionalIDRef(c.inReplyTo),
		Extensions: c.extensions.View(),
		NestedPart: c.nestedPart.View(),
	}
}

// ContentRef is a borrowed view of a MimiContent
type ContentRef struct {
	Salt       *Salt
	Replaces   MessageIDRef
	TopicID    BytesRef
	Expires    *Expiration
	InReplyTo  MessageIDRef
	Extensions ExtensionsRef
	NestedPart NestedPartRef
}

// MarshalCBOR writes the seven envelope fields in order
func (r ContentRef) MarshalCBOR() ([]byte, error) {
	w := wire.NewSeqWriter(contentFieldCount)
	w.Elem(*r.Salt)
	w.Elem(r.Replaces)
	w.Elem(r.TopicID)
	w.Elem(r.Expires)
	w.Elem(r.InReplyTo)
	w.Elem(r.Extensions)
	w.Elem(r.NestedPart)
	return w.End()
}
