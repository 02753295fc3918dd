// Package draft reads human-written YAML descriptions of a content envelope
// and turns them into MimiContent values.
//
//	salt: 000102030405060708090a0b0c0d0e0f   # random when omitted
//	topic: general
//	sender: mimi://example.com/u/alice
//	room: mimi://example.com/r/engineering
//	extensions:
//	  - name: priority
//	    value: high
//	body:
//	  semantics: chooseOne
//	  parts:
//	    - content_type: text/markdown
//	      text: "*hi*"
//	    - content_type: text/plain
//	      text: hi
package draft

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ZentaChain/zentalk-content/pkg/content"
)

var (
	ErrInvalidDraft  = errors.New("invalid draft")
	ErrAmbiguousPart = errors.New("part sets more than one of text, data, external and parts")
)

// Draft is the YAML form of an envelope
type Draft struct {
	Salt       string      `yaml:"salt,omitempty"`
	Topic      string      `yaml:"topic,omitempty"`
	TopicHex   string      `yaml:"topic_hex,omitempty"`
	Replaces   string      `yaml:"replaces,omitempty"`
	InReplyTo  string      `yaml:"in_reply_to,omitempty"`
	Expires    *Expiry     `yaml:"expires,omitempty"`
	Sender     string      `yaml:"sender,omitempty"`
	Room       string      `yaml:"room,omitempty"`
	Extensions []Extension `yaml:"extensions,omitempty"`
	Body       Part        `yaml:"body"`
}

// Expiry is an expiration in seconds
type Expiry struct {
	Relative bool   `yaml:"relative"`
	Seconds  uint32 `yaml:"seconds"`
}

// Extension is one extra envelope field. Exactly one of Name and Key is set.
type Extension struct {
	Name  string `yaml:"name,omitempty"`
	Key   *int64 `yaml:"key,omitempty"`
	Value any    `yaml:"value"`
}

// Part describes a nested part. A part with none of Text, Data, External
// or Parts is a null part.
type Part struct {
	Disposition string `yaml:"disposition,omitempty"`
	Language    string `yaml:"language,omitempty"`
	ContentType string `yaml:"content_type,omitempty"`

	Text string `yaml:"text,omitempty"`
	Data string `yaml:"data,omitempty"`

	External *External `yaml:"external,omitempty"`

	Semantics string `yaml:"semantics,omitempty"`
	Parts     []Part `yaml:"parts,omitempty"`
}

// External describes content stored outside the envelope
type External struct {
	URL         string `yaml:"url"`
	Expires     uint32 `yaml:"expires,omitempty"`
	Size        uint64 `yaml:"size,omitempty"`
	EncAlg      uint16 `yaml:"enc_alg,omitempty"`
	Key         string `yaml:"key,omitempty"`
	Nonce       string `yaml:"nonce,omitempty"`
	AAD         string `yaml:"aad,omitempty"`
	HashAlg     string `yaml:"hash_alg,omitempty"`
	ContentHash string `yaml:"content_hash,omitempty"`
	Description string `yaml:"description,omitempty"`
	Filename    string `yaml:"filename,omitempty"`
}

// Parse decodes a YAML draft. Unknown fields are rejected.
func Parse(data []byte) (*Draft, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Draft
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	return &d, nil
}

// Load reads and parses the draft at path
func Load(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Addressed reports whether the draft names both sender and room, which
// is what a message ID needs
func (d *Draft) Addressed() bool {
	return d.Sender != "" && d.Room != ""
}

// Build assembles the envelope. When the draft has no salt it is drawn
// from rng, or crypto/rand if rng is nil.
func (d *Draft) Build(rng io.Reader) (*content.MimiContent, error) {
	b := content.NewBuilder()

	if d.Salt == "" {
		b.SaltWithRNG(rng)
	} else {
		raw, err := decodeHex("salt", d.Salt)
		if err != nil {
			return nil, err
		}
		if len(raw) != content.SaltSize {
			return nil, fmt.Errorf("%w: salt is %d bytes, want %d", ErrInvalidDraft, len(raw), content.SaltSize)
		}
		b.SaltFromOutsideEntropy(content.Salt(raw))
	}

	switch {
	case d.Topic != "" && d.TopicHex != "":
		return nil, fmt.Errorf("%w: both topic and topic_hex set", ErrInvalidDraft)
	case d.TopicHex != "":
		raw, err := decodeHex("topic_hex", d.TopicHex)
		if err != nil {
			return nil, err
		}
		b.TopicID(raw)
	default:
		b.TopicID([]byte(d.Topic))
	}

	if d.Replaces != "" {
		id, err := content.ParseMessageID(d.Replaces)
		if err != nil {
			return nil, fmt.Errorf("%w: replaces: %w", ErrInvalidDraft, err)
		}
		b.Replaces(id)
	}
	if d.InReplyTo != "" {
		id, err := content.ParseMessageID(d.InReplyTo)
		if err != nil {
			return nil, fmt.Errorf("%w: in_reply_to: %w", ErrInvalidDraft, err)
		}
		b.InReplyTo(id)
	}
	if d.Expires != nil {
		b.Expires(content.Expiration{Relative: d.Expires.Relative, Time: d.Expires.Seconds})
	}

	if d.Sender != "" {
		b.WithSenderURI(d.Sender)
	}
	if d.Room != "" {
		b.WithRoomURI(d.Room)
	}
	for i, ext := range d.Extensions {
		name, err := ext.name()
		if err != nil {
			return nil, fmt.Errorf("extension %d: %w", i, err)
		}
		b.WithExtension(name, ext.Value)
	}

	part, err := d.Body.build("body")
	if err != nil {
		return nil, err
	}
	b.NestedPart(part)

	return b.Build()
}

func (e Extension) name() (content.Name, error) {
	switch {
	case e.Name != "" && e.Key != nil:
		return content.Name{}, fmt.Errorf("%w: both name and key set", ErrInvalidDraft)
	case e.Key != nil:
		return content.IntName(*e.Key), nil
	case e.Name != "":
		return content.TextName(e.Name), nil
	default:
		return content.Name{}, fmt.Errorf("%w: neither name nor key set", ErrInvalidDraft)
	}
}

func (p *Part) build(path string) (content.NestedPart, error) {
	disposition := content.DispositionRender.Code()
	if p.Disposition != "" {
		d, ok := content.ParseDisposition(p.Disposition)
		if !ok {
			return content.NestedPart{}, fmt.Errorf("%w: %s: unknown disposition %q", ErrInvalidDraft, path, p.Disposition)
		}
		disposition = d
	}

	language := p.Language
	if language == "" {
		language = content.DefaultLanguage
	}

	body, err := p.content(path)
	if err != nil {
		return content.NestedPart{}, err
	}
	if _, ok := body.(*content.NullPart); ok && p.Disposition == "" {
		disposition = content.DispositionUnspecified.Code()
	}
	return content.NewNestedPart(disposition, language, body), nil
}

func (p *Part) content(path string) (content.PartContent, error) {
	kinds := 0
	for _, set := range []bool{p.Text != "" || p.Data != "", p.External != nil, p.Parts != nil || p.Semantics != ""} {
		if set {
			kinds++
		}
	}
	if kinds > 1 || (p.Text != "" && p.Data != "") {
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousPart, path)
	}

	switch {
	case p.Text != "":
		return &content.SinglePart{ContentType: content.Text(p.contentType("text/plain")), Content: content.Bytes(p.Text)}, nil

	case p.Data != "":
		raw, err := decodeHex(path+".data", p.Data)
		if err != nil {
			return nil, err
		}
		return &content.SinglePart{ContentType: content.Text(p.contentType("application/octet-stream")), Content: raw}, nil

	case p.External != nil:
		return p.External.build(path, p.ContentType)

	case p.Parts != nil || p.Semantics != "":
		semantics := content.ProcessAll
		if p.Semantics != "" {
			s, ok := content.ParsePartSemantics(p.Semantics)
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown semantics %q", ErrInvalidDraft, path, p.Semantics)
			}
			semantics = s
		}
		children := make([]content.NestedPart, 0, len(p.Parts))
		for i := range p.Parts {
			child, err := p.Parts[i].build(fmt.Sprintf("%s.parts[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return &content.MultiPart{PartSemantics: semantics, Parts: children}, nil
	}

	return &content.NullPart{}, nil
}

func (p *Part) contentType(fallback string) string {
	if p.ContentType != "" {
		return p.ContentType
	}
	return fallback
}

func (e *External) build(path, contentType string) (*content.ExternalPart, error) {
	if e.URL == "" {
		return nil, fmt.Errorf("%w: %s: external part without url", ErrInvalidDraft, path)
	}

	out := &content.ExternalPart{
		ContentType: content.Text(contentType),
		URL:         content.Text(e.URL),
		Expires:     e.Expires,
		Size:        e.Size,
		EncAlg:      e.EncAlg,
		HashAlg:     content.HashAlgReserved.Code(),
		Description: content.Text(e.Description),
		Filename:    content.Text(e.Filename),
	}

	fields := []struct {
		name string
		hex  string
		dst  *content.Bytes
	}{
		{"key", e.Key, &out.Key},
		{"nonce", e.Nonce, &out.Nonce},
		{"aad", e.AAD, &out.AAD},
		{"content_hash", e.ContentHash, &out.ContentHash},
	}
	for _, f := range fields {
		raw, err := decodeHex(path+".external."+f.name, f.hex)
		if err != nil {
			return nil, err
		}
		*f.dst = raw
	}

	if e.HashAlg != "" {
		alg, ok := content.ParseHashAlg(e.HashAlg)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown hash algorithm %q", ErrInvalidDraft, path, e.HashAlg)
		}
		out.HashAlg = alg
	}
	return out, nil
}

func decodeHex(field, s string) (content.Bytes, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDraft, field, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}
