// Package verification verifies that a captured dump stream matches the ROM image
// it was read from.
package verification

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/romdump/internal/acquire"
	"github.com/retroenv/romdump/internal/address"
	"github.com/retroenv/romdump/internal/bus"
	"github.com/retroenv/romdump/internal/hexline"
)

// maxLoggedMismatches limits the number of individually logged mismatches.
const maxLoggedMismatches = 10

var errMissingBanner = errors.New("stream does not start with the banner")

// VerifyOutput verifies that the dump written to the output file contains the
// expected number of rows and matches the device contents.
func VerifyOutput(logger *log.Logger, output string, dev *bus.Device, rows uint32) error {
	file, err := os.Open(output)
	if err != nil {
		return fmt.Errorf("opening output file '%s': %w", output, err)
	}
	defer func() { _ = file.Close() }()

	if err := Verify(logger, file, dev, rows); err != nil {
		return fmt.Errorf("verifying output file '%s': %w", output, err)
	}
	return nil
}

// Verify parses a dump stream and verifies that it contains exactly the expected
// number of rows and that they match the device contents.
func Verify(logger *log.Logger, r io.Reader, dev *bus.Device, rows uint32) error {
	captured, err := Parse(r)
	if err != nil {
		return fmt.Errorf("parsing stream: %w", err)
	}

	got := uint32(len(captured) / address.BytesPerRow)
	if got != rows {
		return fmt.Errorf("row count mismatch, expected %d but got %d", rows, got)
	}

	return Compare(logger, dev, captured)
}

// Parse reads a dump stream and returns the captured bytes in stream order.
// The stream must start with the banner and every row line must consist of exactly
// 64 lowercase hex characters followed by the line terminator.
func Parse(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}

	if !bytes.HasPrefix(data, []byte(acquire.Banner)) {
		return nil, errMissingBanner
	}
	data = data[len(acquire.Banner):]

	lines := bytes.Split(data, []byte(hexline.Terminator))
	if last := lines[len(lines)-1]; len(last) != 0 {
		return nil, fmt.Errorf("line %d is not terminated", len(lines))
	}
	lines = lines[:len(lines)-1]

	captured := make([]byte, 0, len(lines)*address.BytesPerRow)
	for i, line := range lines {
		if len(line) != hexline.LineLength {
			return nil, fmt.Errorf("line %d has %d characters instead of %d", i+1, len(line), hexline.LineLength)
		}

		row, err := hexline.Parse(string(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		captured = append(captured, row...)
	}
	return captured, nil
}

// Compare compares captured rows starting at address 0 with the device contents.
// Every word is expected as high byte followed by low byte.
func Compare(logger *log.Logger, dev *bus.Device, captured []byte) error {
	if len(captured)%address.BytesPerRow != 0 {
		return fmt.Errorf("captured data of %d bytes does not consist of complete rows", len(captured))
	}

	var diffs, rowDiffs uint64
	rows := set.New[uint32]()

	for i := 0; i < len(captured); i += 2 {
		addr := address.Address(i / 2)
		word := dev.Word(addr)
		expected := [2]byte{byte(word >> 8), byte(word)}

		for half := 0; half < 2; half++ {
			got := captured[i+half]
			if got == expected[half] {
				continue
			}

			diffs++
			if diffs <= maxLoggedMismatches {
				logger.Error("Byte mismatch",
					log.Hex("address", uint32(addr)),
					log.String("byte", byteName(half)),
					log.Hex("expected", expected[half]),
					log.Hex("got", got))
			}

			row := addr.Row()
			if !rows.Contains(row) {
				rows.Add(row)
				rowDiffs++
			}
		}
	}

	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d byte mismatches in %d rows", diffs, rowDiffs)
}

func byteName(half int) string {
	if half == 0 {
		return "high"
	}
	return "low"
}
