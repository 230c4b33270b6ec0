package serial

import (
	"fmt"

	"github.com/pkg/term"
)

// DefaultBaudRate is the baud rate of the dumper serial link.
const DefaultBaudRate = 115200

// OpenPort opens a serial device in raw mode with the given baud rate and without
// flow control, the link has no handshake.
func OpenPort(name string, baud int) (*term.Term, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	port, err := term.Open(name, term.Speed(baud), term.RawMode, term.FlowControl(term.NONE))
	if err != nil {
		return nil, fmt.Errorf("opening serial port '%s': %w", name, err)
	}
	return port, nil
}
