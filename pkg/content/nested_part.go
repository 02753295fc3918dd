package content

import (
	"bytes"

	"github.com/ZentaChain/zentalk-content/pkg/enum"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

// PartContent is the body of a nested part. It is implemented by *NullPart,
// *SinglePart, *ExternalPart and *MultiPart only.
type PartContent interface {
	Cardinality() Cardinality
	// FieldCount returns the number of positional fields after the tag
	FieldCount() int
	partView() PartContentRef
}

// PartContentRef is a borrowed view of a PartContent
type PartContentRef interface {
	Cardinality() Cardinality
	FieldCount() int
	writeFields(w *wire.SeqWriter)
}

// NullPart is an empty placeholder
type NullPart struct{}

func (*NullPart) Cardinality() Cardinality { return CardinalityNull }
func (*NullPart) FieldCount() int          { return 0 }

// View returns a borrowed view of p
func (p *NullPart) View() NullPartRef { return NullPartRef{} }

func (p *NullPart) partView() PartContentRef { return p.View() }

// NullPartRef views a NullPart
type NullPartRef struct{}

func (NullPartRef) Cardinality() Cardinality    { return CardinalityNull }
func (NullPartRef) FieldCount() int             { return 0 }
func (NullPartRef) writeFields(*wire.SeqWriter) {}

// SinglePart carries one inline content blob
type SinglePart struct {
	ContentType Text
	Content     Bytes
}

func (*SinglePart) Cardinality() Cardinality { return CardinalitySingle }
func (*SinglePart) FieldCount() int          { return singlePartFieldCount }

// View returns a borrowed view of p
func (p *SinglePart) View() SinglePartRef {
	return SinglePartRef{
		ContentType: p.ContentType.View(),
		Content:     p.Content.View(),
	}
}

func (p *SinglePart) partView() PartContentRef { return p.View() }

// SinglePartRef views a SinglePart
type SinglePartRef struct {
	ContentType TextRef
	Content     BytesRef
}

func (SinglePartRef) Cardinality() Cardinality { return CardinalitySingle }
func (SinglePartRef) FieldCount() int          { return singlePartFieldCount }

func (r SinglePartRef) writeFields(w *wire.SeqWriter) {
	w.Elem(r.ContentType)
	w.Elem(r.Content)
}

// ExternalPart references content stored out of band, with the material
// needed to fetch, decrypt and check it
type ExternalPart struct {
	ContentType Text
	URL         Text
	// Expires is seconds since the epoch, 0 for no expiry
	Expires     uint32
	Size        uint64
	EncAlg      uint16
	Key         Bytes
	Nonce       Bytes
	AAD         Bytes
	HashAlg     HashAlg
	ContentHash Bytes
	Description Text
	// Filename is optional on the wire and decodes to "" when absent
	Filename Text
}

func (*ExternalPart) Cardinality() Cardinality { return CardinalityExternal }
func (*ExternalPart) FieldCount() int          { return externalFieldCount }

// View returns a borrowed view of p
func (p *ExternalPart) View() ExternalPartRef {
	return ExternalPartRef{
		ContentType: p.ContentType.View(),
		URL:         p.URL.View(),
		Expires:     &p.Expires,
		Size:        &p.Size,
		EncAlg:      &p.EncAlg,
		Key:         p.Key.View(),
		Nonce:       p.Nonce.View(),
		AAD:         p.AAD.View(),
		HashAlg:     &p.HashAlg,
		ContentHash: p.ContentHash.View(),
		Description: p.Description.View(),
		Filename:    p.Filename.View(),
	}
}

func (p *ExternalPart) partView() PartContentRef { return p.View() }

// ExternalPartRef views an ExternalPart
type ExternalPartRef struct {
	ContentType TextRef
	URL         TextRef
	Expires     *uint32
	Size        *uint64
	EncAlg      *uint16
	Key         BytesRef
	Nonce       BytesRef
	AAD         BytesRef
	HashAlg     *HashAlg
	ContentHash BytesRef
	Description TextRef
	Filename    TextRef
}

func (ExternalPartRef) Cardinality() Cardinality { return CardinalityExternal }
func (ExternalPartRef) FieldCount() int          { return externalFieldCount }

func (r ExternalPartRef) writeFields(w *wire.SeqWriter) {
	w.Elem(r.ContentType)
	w.Elem(r.URL)
	w.Elem(*r.Expires)
	w.Elem(*r.Size)
	w.Elem(*r.EncAlg)
	w.Elem(r.Key)
	w.Elem(r.Nonce)
	w.Elem(r.AAD)
	w.Elem(*r.HashAlg)
	w.Elem(r.ContentHash)
	w.Elem(r.Description)
	w.Elem(r.Filename)
}

// MultiPart groups child parts. Children keep their order and are never
// merged, even when identical.
type MultiPart struct {
	PartSemantics PartSemantics
	Parts         []NestedPart
}

func (*MultiPart) Cardinality() Cardinality { return CardinalityMulti }
func (*MultiPart) FieldCount() int          { return multiPartFieldCount }

// View returns a borrowed view of p. Children are viewed while encoding.
func (p *MultiPart) View() MultiPartRef {
	return MultiPartRef{
		PartSemantics: &p.PartSemantics,
		Parts:         PartsRef{p: &p.Parts},
	}
}

func (p *MultiPart) partView() PartContentRef { return p.View() }

// MultiPartRef views a MultiPart
type MultiPartRef struct {
	PartSemantics *PartSemantics
	Parts         PartsRef
}

func (MultiPartRef) Cardinality() Cardinality { return CardinalityMulti }
func (MultiPartRef) FieldCount() int          { return multiPartFieldCount }

func (r MultiPartRef) writeFields(w *wire.SeqWriter) {
	w.Elem(*r.PartSemantics)
	w.Elem(r.Parts)
}

// PartsRef views the children of a MultiPart
type PartsRef struct {
	p *[]NestedPart
}

// Len returns the number of children
func (r PartsRef) Len() int {
	if r.p == nil {
		return 0
	}
	return len(*r.p)
}

// At views child i
func (r PartsRef) At(i int) NestedPartRef {
	return (*r.p)[i].View()
}

// MarshalCBOR encodes the children as an array
func (r PartsRef) MarshalCBOR() ([]byte, error) {
	w := wire.NewSeqWriter(r.Len())
	for i := 0; i < r.Len(); i++ {
		w.Elem(r.At(i))
	}
	return w.End()
}

// NestedPart is a node of the content tree
type NestedPart struct {
	Disposition Disposition
	Language    Text
	// Content is the node body; nil, including a nil variant pointer,
	// encodes as a NullPart
	Content PartContent
}

// NewNestedPart builds a part with an explicit disposition and language
func NewNestedPart(d Disposition, language string, content PartContent) NestedPart {
	return NestedPart{Disposition: d, Language: Text(language), Content: content}
}

// DefaultNestedPart is an unspecified English NullPart
func DefaultNestedPart() NestedPart {
	return NestedPart{
		Disposition: enum.Of(DispositionUnspecified),
		Language:    DefaultLanguage,
		Content:     &NullPart{},
	}
}

// NewSinglePart builds a rendered English part around one content blob
func NewSinglePart(contentType string, content []byte) NestedPart {
	return NestedPart{
		Disposition: enum.Of(DispositionRender),
		Language:    DefaultLanguage,
		Content: &SinglePart{
			ContentType: Text(contentType),
			Content:     normalizeBytes(content),
		},
	}
}

// NewTextPart builds a rendered English text/plain part
func NewTextPart(text string) NestedPart {
	return NewSinglePart("text/plain", []byte(text))
}

// NewMultiPart builds a rendered English multipart
func NewMultiPart(semantics PartSemantics, parts ...NestedPart) NestedPart {
	return NestedPart{
		Disposition: enum.Of(DispositionRender),
		Language:    DefaultLanguage,
		Content:     &MultiPart{PartSemantics: semantics, Parts: parts},
	}
}

// isNullContent reports whether c encodes as a NullPart: a nil interface or
// a nil pointer of any variant
func isNullContent(c PartContent) bool {
	switch v := c.(type) {
	case nil:
		return true
	case *NullPart:
		return v == nil
	case *SinglePart:
		return v == nil
	case *ExternalPart:
		return v == nil
	case *MultiPart:
		return v == nil
	}
	return false
}

// Cardinality returns the content variant tag
func (p NestedPart) Cardinality() Cardinality {
	if isNullContent(p.Content) {
		return CardinalityNull
	}
	return p.Content.Cardinality()
}

// FieldCount returns the total number of positional fields p encodes to
func (p NestedPart) FieldCount() int {
	n := nestedPartFieldCount
	if !isNullContent(p.Content) {
		n += p.Content.FieldCount()
	}
	return n
}

// Clone returns a deep copy of the tree rooted at p
func (p NestedPart) Clone() NestedPart {
	out := p
	switch c := p.Content.(type) {
	case *NullPart:
		if c != nil {
			out.Content = &NullPart{}
		}
	case *SinglePart:
		if c != nil {
			single := *c
			single.Content = cloneBytes(c.Content)
			out.Content = &single
		}
	case *ExternalPart:
		if c != nil {
			ext := *c
			ext.Key = cloneBytes(c.Key)
			ext.Nonce = cloneBytes(c.Nonce)
			ext.AAD = cloneBytes(c.AAD)
			ext.ContentHash = cloneBytes(c.ContentHash)
			out.Content = &ext
		}
	case *MultiPart:
		if c != nil {
			multi := MultiPart{PartSemantics: c.PartSemantics}
			if c.Parts != nil {
				multi.Parts = make([]NestedPart, len(c.Parts))
				for i := range c.Parts {
					multi.Parts[i] = c.Parts[i].Clone()
				}
			}
			out.Content = &multi
		}
	}
	return out
}

func cloneBytes(b Bytes) Bytes {
	if b == nil {
		return nil
	}
	return Bytes(bytes.Clone(b))
}

// View returns a borrowed view of p
func (p *NestedPart) View() NestedPartRef {
	var content PartContentRef = NullPartRef{}
	if !isNullContent(p.Content) {
		content = p.Content.partView()
	}
	return NestedPartRef{
		Disposition: &p.Disposition,
		Language:    p.Language.View(),
		Content:     content,
	}
}

// MarshalCBOR encodes p through its view
func (p NestedPart) MarshalCBOR() ([]byte, error) {
	return p.View().MarshalCBOR()
}

// UnmarshalCBOR decodes p with the default decoder
func (p *NestedPart) UnmarshalCBOR(data []byte) error {
	part, err := defaultDecoder.DecodeNestedPart(data)
	if err != nil {
		return err
	}
	*p = part
	return nil
}

// NestedPartRef is a borrowed view of a NestedPart
type NestedPartRef struct {
	Disposition *Disposition
	Language    TextRef
	Content     PartContentRef
}

// FieldCount returns the total number of positional fields
func (r NestedPartRef) FieldCount() int {
	return nestedPartFieldCount + r.Content.FieldCount()
}

// MarshalCBOR writes [disposition, language, tag, fields...]. The array
// length is fixed from the tag before anything is written.
func (r NestedPartRef) MarshalCBOR() ([]byte, error) {
	w := wire.NewSeqWriter(r.FieldCount())
	w.Elem(*r.Disposition)
	w.Elem(r.Language)
	w.Elem(r.Content.Cardinality())
	r.Content.writeFields(&w)
	return w.End()
}
