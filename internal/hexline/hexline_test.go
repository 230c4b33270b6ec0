package hexline

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestByte(t *testing.T) {
	tests := []struct {
		input byte
		want  string
	}{
		{0x00, "00"},
		{0x0f, "0f"},
		{0x5a, "5a"},
		{0xab, "ab"},
		{0xf0, "f0"},
		{0xff, "ff"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Byte(tt.input))
		})
	}
}

func TestByteAllValues(t *testing.T) {
	for i := 0; i < 256; i++ {
		s := Byte(byte(i))
		assert.Equal(t, 2, len(s))

		data, err := Parse(s)
		assert.NoError(t, err)
		assert.Equal(t, byte(i), data[0])
	}
}

func TestParse(t *testing.T) {
	data, err := Parse("00ab5aff")
	assert.NoError(t, err)
	assert.Equal(t, 4, len(data))
	assert.Equal(t, byte(0x00), data[0])
	assert.Equal(t, byte(0xab), data[1])
	assert.Equal(t, byte(0x5a), data[2])
	assert.Equal(t, byte(0xff), data[3])

	_, err = Parse("abc")
	assert.ErrorContains(t, err, "odd number")

	_, err = Parse("AB")
	assert.ErrorContains(t, err, "invalid hex character")

	_, err = Parse("0g")
	assert.ErrorContains(t, err, "position 1")
}
