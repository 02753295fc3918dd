package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-content/pkg/content"
	"github.com/ZentaChain/zentalk-content/pkg/enum"
	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

func testID(b byte) content.MessageID {
	var id content.MessageID
	id[0] = 0x01
	copy(id[1:], bytes.Repeat([]byte{b}, content.MessageIDDigestSize))
	return id
}

func TestReportEncoding(t *testing.T) {
	var m MessageStatusReport
	m.Add(testID(0xaa), StatusRead.Code())

	data, err := Encode(&m)
	require.NoError(t, err)

	id := testID(0xaa)
	expected := append([]byte{0x81, 0x82, 0x58, 0x20}, id[:]...)
	expected = append(expected, 0x02)
	assert.Equal(t, expected, data)

	empty, err := Encode(&MessageStatusReport{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, empty)
}

func TestReportRoundTrip(t *testing.T) {
	var m MessageStatusReport
	m.Add(testID(1), StatusDelivered.Code())
	m.Add(testID(2), StatusHidden.Code())
	m.Add(testID(3), enum.Ext[BaseStatus](42))
	m.Add(testID(1), StatusRead.Code())

	data, err := Encode(&m)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, &m, decoded)
	assert.Equal(t, 4, decoded.Len())

	viewed, err := content.EncodeView[ReportRef](&m)
	require.NoError(t, err)
	assert.Equal(t, data, viewed)

	owned, err := wire.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, data, owned)

	status, ok := decoded.Get(testID(1))
	require.True(t, ok)
	assert.Equal(t, StatusRead.Code(), status, "latest entry wins")

	status, ok = decoded.Get(testID(3))
	require.True(t, ok)
	assert.True(t, status.IsExt())
	assert.Equal(t, uint8(42), status.Uint8())

	_, ok = decoded.Get(testID(9))
	assert.False(t, ok)
}

func TestStatusClosure(t *testing.T) {
	for i := 0; i < 256; i++ {
		s := enum.FromUint8[BaseStatus](uint8(i))
		assert.Equal(t, uint8(i), s.Uint8())
		assert.Equal(t, i > 6, s.IsExt(), "code %d", i)
	}

	s, ok := ParseStatus("expired")
	require.True(t, ok)
	assert.Equal(t, StatusExpired.Code(), s)
	assert.Equal(t, "expired", s.String())

	_, ok = ParseStatus("lost")
	assert.False(t, ok)
}

func TestReportDecodeErrors(t *testing.T) {
	id := testID(5)
	pair := func(tail ...byte) []byte {
		b := append([]byte{0x58, 0x20}, id[:]...)
		return append(b, tail...)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"null report", []byte{0xf6}, wire.ErrUnexpectedNull},
		{"map", []byte{0xa0}, wire.ErrNotArray},
		{"null entry", []byte{0x81, 0xf6}, wire.ErrUnexpectedNull},
		{"null status", append([]byte{0x81, 0x82}, pair(0xf6)...), wire.ErrUnexpectedNull},
		{"missing status", append([]byte{0x81, 0x81}, pair()...), wire.ErrMissingElement},
		{"extra element", append([]byte{0x81, 0x83}, pair(0x01, 0x01)...), wire.ErrTrailingElements},
		{"short message ID", []byte{0x81, 0x82, 0x41, 0x01, 0x01}, content.ErrInvalidLength},
		{"status out of range", append([]byte{0x81, 0x82}, pair(0x19, 0x01, 0x00)...), enum.ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, content.ErrDecode)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Encode(nil)
	assert.ErrorIs(t, err, content.ErrEncode)
}
