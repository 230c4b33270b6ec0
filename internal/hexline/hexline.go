// Package hexline implements the hex text representation of captured rows.
package hexline

import (
	"errors"
	"fmt"
)

// Terminator ends every row line on the stream.
const Terminator = "\r\n"

// LineLength is the number of hex characters in one row line, excluding the terminator.
const LineLength = 64

const digits = "0123456789abcdef"

var errOddLength = errors.New("odd number of hex characters")

// Byte returns the two character lowercase hex token of b, high nibble first.
func Byte(b byte) string {
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}

// Parse decodes a line of lowercase hex characters into bytes.
// Uppercase digits are rejected since the dumper never emits them.
func Parse(line string) ([]byte, error) {
	if len(line)%2 != 0 {
		return nil, errOddLength
	}

	data := make([]byte, len(line)/2)
	for i := 0; i < len(line); i += 2 {
		hi, err := nibble(line, i)
		if err != nil {
			return nil, err
		}
		lo, err := nibble(line, i+1)
		if err != nil {
			return nil, err
		}
		data[i/2] = hi<<4 | lo
	}
	return data, nil
}

func nibble(line string, pos int) (byte, error) {
	c := line[pos]
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex character %q at position %d", c, pos)
	}
}
