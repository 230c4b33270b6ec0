package address

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestSplitJoinLossless(t *testing.T) {
	for a := Address(0); a < Size; a++ {
		f := Split(a)
		if Join(f) != a {
			t.Fatalf("address 0x%05x recombined to 0x%05x", a, Join(f))
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want Fields
	}{
		{
			name: "zero",
			addr: 0,
			want: Fields{},
		},
		{
			name: "all fields",
			addr: 0x7a5c3,
			want: Fields{Low: 0xc3, Mid: 0xa5, High: 0x07},
		},
		{
			name: "last address",
			addr: Size - 1,
			want: Fields{Low: 0xff, Mid: 0xff, High: 0x0f},
		},
		{
			name: "bit 19 stays in the high field",
			addr: 0x80001,
			want: Fields{Low: 0x01, Mid: 0x00, High: 0x08},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.addr))
		})
	}
}

func TestRows(t *testing.T) {
	assert.Equal(t, 65536, Rows)
	assert.Equal(t, 32, BytesPerRow)
	assert.Equal(t, uint32(0), Address(0x0000f).Row())
	assert.Equal(t, uint32(1), Address(0x00010).Row())
	assert.Equal(t, Address(0x00010), RowStart(1))
	assert.Equal(t, Address(0xffff0), RowStart(Rows-1))
}
