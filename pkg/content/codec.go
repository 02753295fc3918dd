package content

import (
	"fmt"

	"github.com/ZentaChain/zentalk-content/pkg/wire"
	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"
)

// DefaultMaxDepth is the deepest nested part tree accepted by default.
// The root part is at depth 1.
const DefaultMaxDepth = 64

// DecoderConfig configures a Decoder
type DecoderConfig struct {
	// MaxDepth bounds nested part recursion; 0 means DefaultMaxDepth
	MaxDepth int
	// MaxValueDepth bounds CBOR nesting inside extension values and other
	// leaf fields; 0 means wire.DefaultMaxNestedLevels
	MaxValueDepth int
	Logger        *zap.Logger
}

// Decoder decodes envelopes and nested parts with a depth bound.
// It holds no mutable state and is safe for concurrent use.
type Decoder struct {
	maxDepth int
	dm       cbor.DecMode
	log      *zap.Logger
}

var defaultDecoder = mustDecoder(DecoderConfig{})

func mustDecoder(cfg DecoderConfig) *Decoder {
	d, err := NewDecoder(cfg)
	if err != nil {
		panic(fmt.Sprintf("content: %v", err))
	}
	return d
}

// NewDecoder builds a decoder from cfg
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.MaxValueDepth < 0 {
		return nil, fmt.Errorf("max value depth must not be negative, got %d", cfg.MaxValueDepth)
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MaxValueDepth == 0 {
		cfg.MaxValueDepth = wire.DefaultMaxNestedLevels
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	dm, err := wire.NewDecMode(cfg.MaxValueDepth)
	if err != nil {
		return nil, err
	}

	return &Decoder{
		maxDepth: cfg.MaxDepth,
		dm:       dm,
		log:      cfg.Logger,
	}, nil
}

// MaxDepth returns the configured depth bound
func (d *Decoder) MaxDepth() int {
	return d.maxDepth
}

// DecodeNestedPart decodes one nested part tree
func (d *Decoder) DecodeNestedPart(data []byte) (NestedPart, error) {
	part, rest, err := d.nestedPart(data, 1)
	if err != nil {
		return NestedPart{}, decodeError(err)
	}
	if len(rest) != 0 {
		return NestedPart{}, decodeError(fmt.Errorf("nested part: %w: %d bytes after array", wire.ErrTrailingElements, len(rest)))
	}
	return part, nil
}

// DecodeContent decodes a content envelope
func (d *Decoder) DecodeContent(data []byte) (*MimiContent, error) {
	c, err := d.content(data)
	if err != nil {
		return nil, decodeError(err)
	}
	return c, nil
}

func (d *Decoder) content(data []byte) (*MimiContent, error) {
	r, err := wire.NewSeqReader(d.dm, data)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	var c MimiContent

	if err := r.Next(&c.salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}

	var replaces MessageID
	if ok, err := r.Optional(&replaces); err != nil {
		return nil, fmt.Errorf("replaces: %w", err)
	} else if ok {
		c.replaces = &replaces
	}

	if err := r.Next(&c.topicID); err != nil {
		return nil, fmt.Errorf("topic ID: %w", err)
	}

	var expires Expiration
	if ok, err := r.Optional(&expires); err != nil {
		return nil, fmt.Errorf("expires: %w", err)
	} else if ok {
		c.expires = &expires
	}

	var inReplyTo MessageID
	if ok, err := r.Optional(&inReplyTo); err != nil {
		return nil, fmt.Errorf("in reply to: %w", err)
	} else if ok {
		c.inReplyTo = &inReplyTo
	}

	raw, err := r.NextRaw()
	if err != nil {
		return nil, fmt.Errorf("extensions: %w", err)
	}
	if err := c.extensions.decode(d.dm, raw); err != nil {
		return nil, fmt.Errorf("extensions: %w", err)
	}

	err = r.Decode(func(data []byte) (rest []byte, err error) {
		c.nestedPart, rest, err = d.nestedPart(data, 1)
		return rest, err
	})
	if err != nil {
		return nil, fmt.Errorf("nested part: %w", err)
	}

	if err := r.End(); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	return &c, nil
}

// nestedPart decodes the part at the start of data and returns the bytes
// after it. Children are decoded in place without re-slicing the subtree.
func (d *Decoder) nestedPart(data []byte, depth int) (NestedPart, []byte, error) {
	var p NestedPart

	if depth > d.maxDepth {
		return p, nil, fmt.Errorf("%w: nested part at depth %d, limit %d", wire.ErrDepthExceeded, depth, d.maxDepth)
	}

	r, err := wire.OpenSeq(d.dm, data)
	if err != nil {
		return p, nil, fmt.Errorf("nested part: %w", err)
	}

	if err := r.Next(&p.Disposition); err != nil {
		return p, nil, fmt.Errorf("disposition: %w", err)
	}
	if err := r.Next(&p.Language); err != nil {
		return p, nil, fmt.Errorf("language: %w", err)
	}

	var card Cardinality
	if err := r.Next(&card); err != nil {
		return p, nil, fmt.Errorf("cardinality: %w", err)
	}

	switch card {
	case CardinalityNull:
		p.Content = &NullPart{}
	case CardinalitySingle:
		p.Content, err = d.singlePart(r)
	case CardinalityExternal:
		p.Content, err = d.externalPart(r)
	case CardinalityMulti:
		p.Content, err = d.multiPart(r, depth)
	}
	if err != nil {
		return p, nil, err
	}

	if err := r.End(); err != nil {
		return p, nil, fmt.Errorf("%s: %w", card, err)
	}
	return p, r.Rest(), nil
}
func (d *Decoder) singlePart(r *wire.SeqReader) (*SinglePart, error) {
	var s SinglePart
	if err := r.Next(&s.ContentType); err != nil {
		return nil, fmt.Errorf("single part content type: %w", err)
	}
	if err := r.Next(&s.Content); err != nil {
		return nil, fmt.Errorf("single part content: %w", err)
	}
	return &s, nil
}

func (d *Decoder) externalPart(r *wire.SeqReader) (*ExternalPart, error) {
	var e ExternalPart

	fields := []struct {
		name string
		v    any
	}{
		{"content type", &e.ContentType},
		{"url", &e.URL},
		{"expires", &e.Expires},
		{"size", &e.Size},
		{"encryption algorithm", &e.EncAlg},
		{"key", &e.Key},
		{"nonce", &e.Nonce},
		{"aad", &e.AAD},
		{"hash algorithm", &e.HashAlg},
		{"content hash", &e.ContentHash},
		{"description", &e.Description},
	}
	for _, f := range fields {
		if err := r.Next(f.v); err != nil {
			return nil, fmt.Errorf("external part %s: %w", f.name, err)
		}
	}

	// filename was added later; older encodings stop after description
	if r.Remaining() == 0 {
		d.log.Debug("external part without filename", zap.String("url", string(e.URL)))
		return &e, nil
	}
	if err := r.Next(&e.Filename); err != nil {
		return nil, fmt.Errorf("external part filename: %w", err)
	}
	return &e, nil
}

func (d *Decoder) multiPart(r *wire.SeqReader, depth int) (*MultiPart, error) {
	var m MultiPart
	if err := r.Next(&m.PartSemantics); err != nil {
		return nil, fmt.Errorf("multipart semantics: %w", err)
	}

	err := r.Decode(func(data []byte) ([]byte, error) {
		children, err := wire.OpenSeq(d.dm, data)
		if err != nil {
			return nil, err
		}

		for children.Remaining() > 0 {
			i := children.Len() - children.Remaining()
			err := children.Decode(func(data []byte) ([]byte, error) {
				part, rest, err := d.nestedPart(data, depth+1)
				if err != nil {
					return nil, fmt.Errorf("part %d: %w", i, err)
				}
				m.Parts = append(m.Parts, part)
				return rest, nil
			})
			if err != nil {
				return nil, err
			}
		}
		return children.Rest(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("multipart parts: %w", err)
	}
	return &m, nil
}
