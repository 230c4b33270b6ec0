// Package options contains the program options.
package options

import "time"

// Parameters contains file path options.
type Parameters struct {
	Input  string // ROM image loaded into the simulated device
	Output string // output file or serial device, stdout if empty or "-"
	Batch  string // glob of ROM images to dump, one output file per image
}

// Flags contains behavior options.
type Flags struct {
	Baud   int           // serial baud rate
	Pace   bool          // pace the simulated transmitter to the baud rate
	Settle time.Duration // bus settle delay
	Rows   uint          // number of rows to dump, 0 dumps the whole device

	Verify bool // verify the captured stream against the input image
	Exit   bool // exit after the dump instead of idling
	Stats  bool // serve runtime statistics while dumping
	Debug  bool
	Quiet  bool
}

// Program options of the dumper.
type Program struct {
	Parameters
	Flags
}
