package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-content/pkg/wire"
)

type color uint8

const (
	red color = iota
	green
	blue
)

func (c color) Known() bool {
	return c <= blue
}

func (c color) String() string {
	switch c {
	case red:
		return "red"
	case green:
		return "green"
	case blue:
		return "blue"
	}
	return "?"
}

func TestFromUint8Closure(t *testing.T) {
	for i := 0; i < 256; i++ {
		code := uint8(i)
		c := FromUint8[color](code)

		assert.Equal(t, code, c.Uint8(), "code %d", code)
		assert.True(t, c.Is(code))

		b, ok := c.Base()
		if code <= uint8(blue) {
			require.True(t, ok, "code %d should be known", code)
			assert.Equal(t, color(code), b)
			assert.False(t, c.IsExt())
		} else {
			assert.False(t, ok, "code %d should be ext", code)
			assert.True(t, c.IsExt())
		}
	}
}

func TestCodeCBORRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		c := FromUint8[color](uint8(i))

		data, err := wire.Marshal(c)
		require.NoError(t, err)

		var raw uint8
		require.NoError(t, wire.Unmarshal(data, &raw))
		assert.Equal(t, uint8(i), raw)

		var back Code[color]
		require.NoError(t, wire.Unmarshal(data, &back))
		assert.Equal(t, c, back)
	}
}

func TestExtOfKnownCode(t *testing.T) {
	c := Ext[color](1)
	assert.True(t, c.IsExt())
	assert.True(t, c.Is(1))
	assert.Equal(t, Of(green), c.Normalize())
}

func TestString(t *testing.T) {
	assert.Equal(t, "green", Of(green).String())
	assert.Equal(t, "ext(200)", FromUint8[color](200).String())
}

func TestUnmarshalRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"null", []byte{0xf6}},
		{"overflow", []byte{0x19, 0x01, 0x2c}},
		{"negative", []byte{0x20}},
		{"text", []byte{0x61, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Code[color]
			err := wire.Unmarshal(tt.data, &c)
			assert.ErrorIs(t, err, ErrInvalidCode)
		})
	}
}
