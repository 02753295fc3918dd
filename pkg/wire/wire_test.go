package wire

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendHead(t *testing.T) {
	tests := []struct {
		name  string
		major byte
		n     uint64
		want  []byte
	}{
		{"tiny array", majorArray, 3, []byte{0x83}},
		{"one byte array", majorArray, 24, []byte{0x98, 0x18}},
		{"two byte array", majorArray, 500, []byte{0x99, 0x01, 0xf4}},
		{"four byte map", majorMap, 70000, []byte{0xba, 0x00, 0x01, 0x11, 0x70}},
		{"empty map", majorMap, 0, []byte{0xa0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := appendHead(nil, tt.major, tt.n)
			assert.Equal(t, tt.want, got)

			major, n, rest, err := readHead(got)
			require.NoError(t, err)
			assert.Equal(t, tt.major, major)
			assert.Equal(t, tt.n, n)
			assert.Empty(t, rest)
		})
	}
}

func TestReadHeadRejectsIndefinite(t *testing.T) {
	_, _, _, err := readHead([]byte{0x9f, 0x01, 0xff})
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, _, err = readHead([]byte{0x99, 0x01})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSeqWriter(t *testing.T) {
	w := NewSeqWriter(2)
	w.Elem(uint8(1))
	w.Elem("en")

	got, err := w.End()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 0x01, 0x62, 'e', 'n'}, got)
}

func TestSeqWriterCountMismatch(t *testing.T) {
	w := NewSeqWriter(3)
	w.Elem(uint8(1))

	_, err := w.End()
	assert.ErrorIs(t, err, ErrElementCount)
}

func TestSeqWriterNilBytesAreEmpty(t *testing.T) {
	w := NewSeqWriter(1)
	w.Elem([]byte(nil))

	got, err := w.End()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81, 0x40}, got)
}

func TestMapWriterKeepsOrder(t *testing.T) {
	w := NewMapWriter(2)
	w.Entry(2, "b")
	w.Entry(1, "a")

	got, err := w.End()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa2, 0x02, 0x61, 'b', 0x01, 0x61, 'a'}, got)

	var keys []byte
	err = ReadMap(got, func(key, value cbor.RawMessage) error {
		keys = append(keys, key[0])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01}, keys)
}

func TestSeqReader(t *testing.T) {
	r, err := NewSeqReader(nil, []byte{0x83, 0x01, 0xf6, 0x62, 'e', 'n'})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	var n uint8
	require.NoError(t, r.Next(&n))
	assert.Equal(t, uint8(1), n)

	var opt *uint8
	present, err := r.Optional(&opt)
	require.NoError(t, err)
	assert.False(t, present)
	assert.Equal(t, 1, r.Remaining())

	assert.ErrorIs(t, r.End(), ErrTrailingElements)

	var s string
	require.NoError(t, r.Next(&s))
	assert.Equal(t, "en", s)
	require.NoError(t, r.End())

	assert.ErrorIs(t, r.Next(&s), ErrMissingElement)
}

func TestSeqReaderRejectsNull(t *testing.T) {
	r, err := NewSeqReader(nil, []byte{0x81, 0xf6})
	require.NoError(t, err)

	var n uint8
	assert.ErrorIs(t, r.Next(&n), ErrUnexpectedNull)
}

func TestSeqReaderRejectsNonArray(t *testing.T) {
	_, err := NewSeqReader(nil, []byte{0xa0})
	assert.ErrorIs(t, err, ErrNotArray)

	_, err = NewSeqReader(nil, []byte{0x9f, 0x01, 0xff})
	assert.ErrorIs(t, err, ErrNotArray)

	_, err = NewSeqReader(nil, nil)
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestSeqReaderAliasesInput(t *testing.T) {
	data := []byte{0x82, 0x43, 1, 2, 3, 0x01}
	r, err := NewSeqReader(nil, data)
	require.NoError(t, err)

	raw, err := r.NextRaw()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x43, 1, 2, 3}, []byte(raw))
	assert.True(t, &data[1] == &raw[0])
}

func TestSeqReaderSkipsUndecodedDepth(t *testing.T) {
	// far deeper than any decode mode allows; splitting never descends
	const depth = 100000
	data := append([]byte{0x82}, bytes.Repeat([]byte{0x81}, depth)...)
	data = append(data, 0x00, 0x07)

	r, err := NewSeqReader(nil, data)
	require.NoError(t, err)

	raw, err := r.NextRaw()
	require.NoError(t, err)
	assert.Len(t, raw, depth+1)

	var n uint8
	require.NoError(t, r.Next(&n))
	assert.Equal(t, uint8(7), n)
	require.NoError(t, r.End())
}

func TestOpenSeqLeavesRest(t *testing.T) {
	data := []byte{0x82, 0x01, 0x02, 0x03}

	r, err := OpenSeq(nil, data)
	require.NoError(t, err)
	for r.Remaining() > 0 {
		_, err := r.NextRaw()
		require.NoError(t, err)
	}
	require.NoError(t, r.End())
	assert.Equal(t, []byte{0x03}, r.Rest())

	r, err = NewSeqReader(nil, data)
	require.NoError(t, err)
	for r.Remaining() > 0 {
		_, err := r.NextRaw()
		require.NoError(t, err)
	}
	assert.ErrorIs(t, r.End(), ErrTrailingElements)
}

func TestSeqReaderDecode(t *testing.T) {
	r, err := NewSeqReader(nil, []byte{0x82, 0x82, 0x01, 0x02, 0x03})
	require.NoError(t, err)

	var sum uint64
	err = r.Decode(func(data []byte) ([]byte, error) {
		inner, err := OpenSeq(nil, data)
		if err != nil {
			return nil, err
		}
		for inner.Remaining() > 0 {
			var n uint64
			if err := inner.Next(&n); err != nil {
				return nil, err
			}
			sum += n
		}
		return inner.Rest(), inner.End()
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum)

	var last uint8
	require.NoError(t, r.Next(&last))
	assert.Equal(t, uint8(3), last)
	require.NoError(t, r.End())

	err = r.Decode(func(data []byte) ([]byte, error) { return data, nil })
	assert.ErrorIs(t, err, ErrMissingElement)
}

func TestSplitItem(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		item    string
		wantErr bool
	}{
		{"uint", "1903e801", "1903e8", false},
		{"text", "626869ff", "626869", false},
		{"nested array", "828201020304", "8282010203", false},
		{"map", "a2010202038001", "a201020203", false},
		{"tag", "c1190102f6", "c1190102", false},
		{"float", "fb3ff8000000000000", "fb3ff8000000000000", false},
		{"truncated string", "6568", "", true},
		{"truncated array", "8301", "", true},
		{"indefinite", "9f01ff", "", true},
		{"huge count", "9bffffffffffffffff00", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := hex.DecodeString(tt.data)
			require.NoError(t, err)

			item, rest, err := splitItem(data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.item, hex.EncodeToString(item))
			assert.Equal(t, tt.data[len(tt.item):], hex.EncodeToString(rest))
		})
	}
}

func TestOpenSeqRejectsShortArray(t *testing.T) {
	_, err := OpenSeq(nil, []byte{0x83, 0x01})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr error
	}{
		{"short uint", "1801", "01", nil},
		{"long text head", "780161", "6161", nil},
		{"sorted map", "a2616202616101", "a2616101616202", nil},
		{"array key", "a1810102", "a1810102", nil},
		{"array keys sorted", "a2810200810101", "a2810101810200", nil},
		{"undefined kept", "f7", "f7", nil},
		{"undefined in array", "82f6f7", "82f6f7", nil},
		{"tag head shortened", "c11a00000001", "c101", nil},
		{"float64 shortened", "fb3ff8000000000000", "f93e00", nil},
		{"float32 shortened", "fa3fc00000", "f93e00", nil},
		{"nested map", "a101a2180201180101", "a101a201010201", nil},
		{"duplicate after shortening", "a21801000100", "", ErrDuplicateKey},
		{"invalid utf8", "62c328", "", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := hex.DecodeString(tt.data)
			require.NoError(t, err)

			got, err := Canonical(nil, data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
		})
	}
}

func TestReadMapRejectsNonMap(t *testing.T) {
	err := ReadMap([]byte{0x80}, func(key, value cbor.RawMessage) error { return nil })
	assert.ErrorIs(t, err, ErrNotMap)
}

func TestNewDecModeClampsLevels(t *testing.T) {
	_, err := NewDecMode(0)
	require.NoError(t, err)

	_, err = NewDecMode(1 << 20)
	require.NoError(t, err)
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull([]byte{0xf6}))
	assert.True(t, IsNull([]byte{0xf7}))
	assert.False(t, IsNull([]byte{0x00}))
	assert.False(t, IsNull(nil))
}

func TestMajorTypePredicates(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want func([]byte) bool
	}{
		{"uint", []byte{0x01}, IsUint},
		{"negative int", []byte{0x20}, IsInt},
		{"text", []byte{0x61, 'a'}, IsText},
		{"map", []byte{0xa0}, IsMap},
		{"tag", []byte{0xd9, 0x03, 0xe9, 0xa0}, IsTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want(tt.raw))
		})
	}

	assert.False(t, IsUint([]byte{0x20}))
	assert.False(t, IsMap([]byte{0x80}))
	assert.False(t, IsText(nil))
}

func TestCanonicalDepthFollowsDecMode(t *testing.T) {
	data := append(bytes.Repeat([]byte{0x81}, 300), 0x01)

	_, err := Canonical(nil, data)
	var nested *cbor.MaxNestedLevelError
	assert.ErrorAs(t, err, &nested)

	dm, err := NewDecMode(400)
	require.NoError(t, err)
	got, err := Canonical(dm, data)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
