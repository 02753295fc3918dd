package content

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-content/pkg/enum"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func testExternalPart() *ExternalPart {
	return &ExternalPart{
		ContentType: "image/png",
		URL:         "https://example.com/f/1",
		Expires:     0,
		Size:        1024,
		EncAlg:      1,
		Key:         bytes.Repeat([]byte{0x11}, 16),
		Nonce:       bytes.Repeat([]byte{0x22}, 12),
		HashAlg:     HashAlgSHA256.Code(),
		ContentHash: bytes.Repeat([]byte{0x33}, 32),
		Description: "a cat",
		Filename:    "cat.png",
	}
}

func chain(depth int) NestedPart {
	p := NewTextPart("leaf")
	for i := 1; i < depth; i++ {
		p = NewMultiPart(ChooseOne, p)
	}
	return p
}

func TestNestedPartEncoding(t *testing.T) {
	tests := []struct {
		name     string
		part     NestedPart
		expected string
	}{
		{
			name:     "single part",
			part:     NewNestedPart(DispositionRender.Code(), "en", &SinglePart{ContentType: "text/plain", Content: Bytes("Hello World")}),
			expected: "850162656e016a746578742f706c61696e4b48656c6c6f20576f726c64",
		},
		{
			name:     "default null part",
			part:     DefaultNestedPart(),
			expected: "830062656e00",
		},
		{
			name:     "nil content",
			part:     NestedPart{Disposition: DispositionRender.Code(), Language: "en"},
			expected: "830162656e00",
		},
		{
			name:     "empty multipart",
			part:     NewMultiPart(ProcessAll),
			expected: "850162656e030280",
		},
		{
			name: "unknown disposition",
			part: NestedPart{
				Disposition: enum.Ext[BaseDisposition](200),
				Language:    "fr",
				Content:     &NullPart{},
			},
			expected: "8318c862667200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wire.Marshal(tt.part)
			require.NoError(t, err)
			assert.Equal(t, mustHex(t, tt.expected), got)
		})
	}
}

func TestVariantFieldCounts(t *testing.T) {
	tests := []struct {
		name    string
		content PartContent
		extra   int
	}{
		{"null", &NullPart{}, 0},
		{"single", &SinglePart{ContentType: "text/plain", Content: Bytes("x")}, 2},
		{"external", testExternalPart(), 12},
		{"multi", &MultiPart{PartSemantics: SingleUnit, Parts: []NestedPart{NewTextPart("a")}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := NewNestedPart(DispositionInline.Code(), "en", tt.content)
			assert.Equal(t, tt.extra, tt.content.FieldCount())
			assert.Equal(t, 3+tt.extra, part.FieldCount())

			data, err := wire.Marshal(part)
			require.NoError(t, err)

			r, err := wire.NewSeqReader(nil, data)
			require.NoError(t, err)
			assert.Equal(t, 3+tt.extra, r.Len())
		})
	}
}

func TestNestedPartRoundTrip(t *testing.T) {
	parts := map[string]NestedPart{
		"text":     NewTextPart("hello"),
		"null":     DefaultNestedPart(),
		"external": NewNestedPart(DispositionAttachment.Code(), "en", testExternalPart()),
		"nested": NewMultiPart(ChooseOne,
			NewNestedPart(DispositionRender.Code(), "de", &SinglePart{ContentType: "text/plain", Content: Bytes("Hallo")}),
			NewMultiPart(ProcessAll,
				NewSinglePart("text/markdown", []byte("*hi*")),
				NewNestedPart(DispositionPreview.Code(), "en", testExternalPart()),
			),
		),
	}

	for name, part := range parts {
		t.Run(name, func(t *testing.T) {
			data, err := wire.Marshal(part)
			require.NoError(t, err)

			var decoded NestedPart
			require.NoError(t, wire.Unmarshal(data, &decoded))
			assert.Equal(t, part, decoded)

			again, err := wire.Marshal(decoded)
			require.NoError(t, err)
			assert.Equal(t, data, again)

			viewed, err := EncodeView[NestedPartRef](&part)
			require.NoError(t, err)
			assert.Equal(t, data, viewed)
		})
	}
}

func TestMultiPartKeepsDuplicateChildren(t *testing.T) {
	child := NewSinglePart("text/plain", []byte("A"))
	part := NewMultiPart(SingleUnit, child, child)

	data, err := wire.Marshal(part)
	require.NoError(t, err)

	decoded, err := defaultDecoder.DecodeNestedPart(data)
	require.NoError(t, err)

	multi, ok := decoded.Content.(*MultiPart)
	require.True(t, ok)
	assert.Equal(t, SingleUnit, multi.PartSemantics)
	require.Len(t, multi.Parts, 2)
	assert.Equal(t, child, multi.Parts[0])
	assert.Equal(t, child, multi.Parts[1])
	assert.Equal(t, part, decoded)
}

// externalElements returns the raw positional elements of an encoded
// external part
func externalElements(t *testing.T) [][]byte {
	t.Helper()

	data, err := wire.Marshal(NewNestedPart(DispositionAttachment.Code(), "en", testExternalPart()))
	require.NoError(t, err)

	r, err := wire.NewSeqReader(nil, data)
	require.NoError(t, err)
	require.Equal(t, 15, r.Len())

	var elems [][]byte
	for r.Remaining() > 0 {
		raw, err := r.NextRaw()
		require.NoError(t, err)
		elems = append(elems, raw)
	}
	return elems
}

func encodeElements(t *testing.T, elems [][]byte) []byte {
	t.Helper()

	w := wire.NewSeqWriter(len(elems))
	for _, e := range elems {
		w.Raw(e)
	}
	data, err := w.End()
	require.NoError(t, err)
	return data
}

func TestExternalPartMissingFilename(t *testing.T) {
	elems := externalElements(t)

	data := encodeElements(t, elems[:14])

	decoded, err := defaultDecoder.DecodeNestedPart(data)
	require.NoError(t, err)

	ext, ok := decoded.Content.(*ExternalPart)
	require.True(t, ok)
	assert.Equal(t, Text(""), ext.Filename)

	want := testExternalPart()
	want.Filename = ""
	assert.Equal(t, want, ext)
}

func TestExternalPartMissingRequiredField(t *testing.T) {
	elems := externalElements(t)

	t.Run("truncated", func(t *testing.T) {
		for n := 3; n < 14; n++ {
			_, err := defaultDecoder.DecodeNestedPart(encodeElements(t, elems[:n]))
			assert.ErrorIs(t, err, ErrDecode, "%d elements", n)
			assert.ErrorIs(t, err, wire.ErrMissingElement, "%d elements", n)
		}
	})

	// positions after the disposition, language and cardinality
	required := []string{
		"content type", "url", "expires", "size", "encryption algorithm",
		"key", "nonce", "aad", "hash algorithm", "content hash", "description",
	}
	without := func(pos int) []byte {
		var short [][]byte
		short = append(short, elems[:pos]...)
		short = append(short, elems[pos+1:]...)
		return encodeElements(t, short)
	}

	for i, name := range required {
		pos := 3 + i
		if name == "description" {
			continue
		}
		t.Run("without "+name, func(t *testing.T) {
			_, err := defaultDecoder.DecodeNestedPart(without(pos))
			assert.ErrorIs(t, err, ErrDecode)
		})
	}

	// the filename slides into the description slot and is indistinguishable
	// from an older encoding that stops after the description
	t.Run("without description", func(t *testing.T) {
		part, err := defaultDecoder.DecodeNestedPart(without(13))
		require.NoError(t, err)

		ext, ok := part.Content.(*ExternalPart)
		require.True(t, ok)
		assert.Equal(t, Text("cat.png"), ext.Description)
		assert.Equal(t, Text(""), ext.Filename)
	})

	t.Run("trailing element", func(t *testing.T) {
		long := append(append([][]byte{}, elems...), []byte{0x00})

		_, err := defaultDecoder.DecodeNestedPart(encodeElements(t, long))
		assert.ErrorIs(t, err, ErrDecode)
		assert.ErrorIs(t, err, wire.ErrTrailingElements)
	})
}

func TestUnknownDispositionRoundTrip(t *testing.T) {
	data := mustHex(t, "8318c862656e00")

	part, err := defaultDecoder.DecodeNestedPart(data)
	require.NoError(t, err)

	assert.True(t, part.Disposition.IsExt())
	assert.Equal(t, uint8(200), part.Disposition.Uint8())
	assert.True(t, part.Disposition.Is(200))

	again, err := wire.Marshal(part)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestNestedPartDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown cardinality", "830162656e04", ErrUnknownCardinality},
		{"unknown part semantics", "850162656e030380", ErrUnknownSemantics},
		{"null content type", "850162656e01f640", wire.ErrUnexpectedNull},
		{"null language", "8301f600", wire.ErrUnexpectedNull},
		{"not an array", "a0", wire.ErrNotArray},
		{"missing tag", "820162656e", wire.ErrMissingElement},
		{"null part with extra field", "840162656e0000", wire.ErrTrailingElements},
		{"children not an array", "850162656e0300a0", wire.ErrNotArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := defaultDecoder.DecodeNestedPart(mustHex(t, tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDepthLimit(t *testing.T) {
	encode := func(depth int) []byte {
		data, err := wire.Marshal(chain(depth))
		require.NoError(t, err)
		return data
	}

	t.Run("default limit", func(t *testing.T) {
		_, err := defaultDecoder.DecodeNestedPart(encode(DefaultMaxDepth))
		require.NoError(t, err)

		_, err = defaultDecoder.DecodeNestedPart(encode(DefaultMaxDepth + 1))
		assert.ErrorIs(t, err, ErrDecode)
		assert.ErrorIs(t, err, wire.ErrDepthExceeded)
	})

	t.Run("far beyond the limit", func(t *testing.T) {
		_, err := defaultDecoder.DecodeNestedPart(encode(500))
		assert.ErrorIs(t, err, ErrDecode)
		assert.ErrorIs(t, err, wire.ErrDepthExceeded)
	})

	t.Run("configured limit", func(t *testing.T) {
		d, err := NewDecoder(DecoderConfig{MaxDepth: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, d.MaxDepth())

		part, err := d.DecodeNestedPart(encode(3))
		require.NoError(t, err)
		assert.Equal(t, 3, Depth(part))

		_, err = d.DecodeNestedPart(encode(4))
		assert.ErrorIs(t, err, wire.ErrDepthExceeded)
	})

	t.Run("negative limit", func(t *testing.T) {
		_, err := NewDecoder(DecoderConfig{MaxDepth: -1})
		assert.Error(t, err)
	})
}

func TestWalk(t *testing.T) {
	root := NewMultiPart(ChooseOne,
		NewTextPart("a"),
		NewMultiPart(ProcessAll, NewTextPart("b"), NewTextPart("c")),
		NewTextPart("d"),
	)

	var seen []string
	err := Walk(&root, func(p *NestedPart, depth int) error {
		if single, ok := p.Content.(*SinglePart); ok {
			seen = append(seen, string(single.Content))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, seen)

	assert.Equal(t, 3, Depth(root))
	assert.Equal(t, 6, Count(root))

	seen = nil
	err = Walk(&root, func(p *NestedPart, depth int) error {
		if depth == 2 && p.Cardinality() == CardinalityMulti {
			return SkipChildren
		}
		if single, ok := p.Content.(*SinglePart); ok {
			seen = append(seen, string(single.Content))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, seen)

	stop := errors.New("stop")
	err = Walk(&root, func(*NestedPart, int) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestNilVariantEncodesAsNullPart(t *testing.T) {
	want := mustHex(t, "830062656e00")

	tests := []struct {
		name    string
		content PartContent
	}{
		{"nil interface", nil},
		{"nil null part", (*NullPart)(nil)},
		{"nil single part", (*SinglePart)(nil)},
		{"nil external part", (*ExternalPart)(nil)},
		{"nil multipart", (*MultiPart)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewNestedPart(DispositionUnspecified.Code(), "en", tt.content)
			assert.Equal(t, CardinalityNull, p.Cardinality())
			assert.Equal(t, 3, p.FieldCount())

			data, err := wire.Marshal(p)
			require.NoError(t, err)
			assert.Equal(t, want, data)

			data, err = wire.Marshal(p.Clone())
			require.NoError(t, err)
			assert.Equal(t, want, data)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	ext := testExternalPart()
	orig := NewMultiPart(ProcessAll,
		NewSinglePart("text/plain", []byte("hi")),
		NewNestedPart(DispositionAttachment.Code(), "en", ext),
	)
	before, err := wire.Marshal(orig)
	require.NoError(t, err)

	clone := orig.Clone()
	multi := clone.Content.(*MultiPart)
	multi.Parts[0].Content.(*SinglePart).Content[0] = 'X'
	cext := multi.Parts[1].Content.(*ExternalPart)
	cext.Key[0] = 0xff
	cext.ContentHash[0] = 0xff
	multi.Parts = append(multi.Parts, NewTextPart("extra"))

	after, err := wire.Marshal(orig)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeepChainDecodes(t *testing.T) {
	const depth = 2000

	data, err := wire.Marshal(chain(depth))
	require.NoError(t, err)

	d, err := NewDecoder(DecoderConfig{MaxDepth: depth})
	require.NoError(t, err)

	part, err := d.DecodeNestedPart(data)
	require.NoError(t, err)
	assert.Equal(t, depth, Depth(part))
	assert.Equal(t, depth, Count(part))

	again, err := wire.Marshal(part)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestDecodeNestedPartRejectsTrailingBytes(t *testing.T) {
	data := append(mustHex(t, "830062656e00"), 0x00)

	_, err := defaultDecoder.DecodeNestedPart(data)
	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, wire.ErrTrailingElements)
}
