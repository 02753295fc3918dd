package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ZentaChain/zentalk-content/pkg/crypto"
)

// Builder assembles a MimiContent. The salt, topic ID and nested part must
// all be supplied before Build succeeds; everything else is optional.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	c MimiContent

	saltSet  bool
	topicSet bool
	partSet  bool

	err error
}

// NewBuilder starts an empty envelope
func NewBuilder() *Builder {
	return &Builder{}
}

// SaltWithRNG fills the salt from r after zeroing it. A nil r reads from
// crypto/rand.
func (b *Builder) SaltWithRNG(r io.Reader) *Builder {
	if err := crypto.FillRandom(r, b.c.salt[:]); err != nil {
		b.fail(fmt.Errorf("salt: %w", err))
		return b
	}
	b.saltSet = true
	return b
}

// SaltFromOutsideEntropy uses a salt chosen by the caller
func (b *Builder) SaltFromOutsideEntropy(s Salt) *Builder {
	b.c.salt = s
	b.saltSet = true
	return b
}

// TopicID sets the topic. An empty topic is valid and encodes as an empty
// byte string.
func (b *Builder) TopicID(id []byte) *Builder {
	b.c.topicID = normalizeBytes(bytes.Clone(id))
	b.topicSet = true
	return b
}

// NestedPart sets the content tree. Build copies the tree, and any part
// in it with an empty Language is given DefaultLanguage, so the zero
// NestedPart builds the same envelope as DefaultNestedPart.
func (b *Builder) NestedPart(p NestedPart) *Builder {
	b.c.nestedPart = p
	b.partSet = true
	return b
}

// Replaces marks the envelope as an edit of id
func (b *Builder) Replaces(id MessageID) *Builder {
	b.c.replaces = &id
	return b
}

// InReplyTo marks the envelope as a reply to id
func (b *Builder) InReplyTo(id MessageID) *Builder {
	b.c.inReplyTo = &id
	return b
}

// Expires sets the expiry
func (b *Builder) Expires(e Expiration) *Builder {
	b.c.expires = &e
	return b
}

// WithExtension encodes v canonically and stores it under name
func (b *Builder) WithExtension(name Name, v any) *Builder {
	value, err := NewValue(v)
	if err != nil {
		b.fail(fmt.Errorf("extension %s: %w", name, err))
		return b
	}
	return b.WithExtensionValue(name, value)
}

// WithExtensionValue stores an already canonical value under name
func (b *Builder) WithExtensionValue(name Name, v Value) *Builder {
	b.c.extensions.Set(name, v)
	return b
}

// WithSenderURI stores the sender URI extension
func (b *Builder) WithSenderURI(uri string) *Builder {
	return b.WithExtension(SenderURIKey, uri)
}

// WithRoomURI stores the room URI extension
func (b *Builder) WithRoomURI(uri string) *Builder {
	return b.WithExtension(RoomURIKey, uri)
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build checks the required fields and returns the envelope. The builder
// may be reused; later changes do not affect returned envelopes.
func (b *Builder) Build() (*MimiContent, error) {
	if b.err != nil {
		return nil, b.err
	}

	var missing []error
	if !b.saltSet {
		missing = append(missing, ErrMissingSalt)
	}
	if !b.topicSet {
		missing = append(missing, ErrMissingTopicID)
	}
	if !b.partSet {
		missing = append(missing, ErrMissingNestedPart)
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	c := b.c
	c.extensions = b.c.extensions.Clone()
	c.nestedPart = b.c.nestedPart.Clone()
	Walk(&c.nestedPart, func(p *NestedPart, _ int) error {
		if p.Language == "" {
			p.Language = DefaultLanguage
		}
		return nil
	})
	return &c, nil
}
