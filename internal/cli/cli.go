// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/romdump/internal/acquire"
	"github.com/retroenv/romdump/internal/address"
	"github.com/retroenv/romdump/internal/options"
	"github.com/retroenv/romdump/internal/serial"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}

	if err := validateOptions(opts); err != nil {
		return opts, err
	}

	if opts.Batch == "" {
		opts.Input = args[0]
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the error message if set, the usage and the flag defaults.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Fprintf(os.Stderr, "%s\n\n", e.msg)
	}
	fmt.Fprintf(os.Stderr, "usage: romdump [options] <rom image to dump>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Fprintln(os.Stderr)
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after rom image, please pass the rom image as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("only one rom image can be dumped per run, use -batch for multiple images, got %d", len(args)),
		}
	}
	return nil
}

// validateOptions checks option values and combinations
func validateOptions(opts options.Program) error {
	if opts.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", opts.Baud)
	}
	if opts.Settle < 0 {
		return fmt.Errorf("invalid settle delay %s", opts.Settle)
	}
	if opts.Rows > address.Rows {
		return fmt.Errorf("invalid row count %d, the device has %d rows", opts.Rows, address.Rows)
	}
	// batch mode verifies the generated output files
	if opts.Verify && opts.Batch == "" && (opts.Output == "" || opts.Output == "-") {
		return fmt.Errorf("verification needs an output file, use -o")
	}
	if opts.Batch != "" && opts.Output != "" {
		return fmt.Errorf("batch mode names output files automatically, -o can not be used")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output file or serial device, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "dump a batch of rom images matching the given pattern, for example *.bin")
	flags.IntVar(&opts.Baud, "baud", serial.DefaultBaudRate, "baud rate of the serial link")
	flags.BoolVar(&opts.Pace, "pace", false, "pace the transmission to the baud rate like the real serial link")
	flags.DurationVar(&opts.Settle, "settle", acquire.DefaultSettle, "delay between presenting an address and sampling the data bus")
	flags.UintVar(&opts.Rows, "rows", 0, "number of 16 word rows to dump, the whole device if 0")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the dumped output file against the rom image")
	flags.BoolVar(&opts.Exit, "exit", false, "exit after the dump instead of idling until interrupted")
	flags.BoolVar(&opts.Stats, "stats", false, "serve runtime statistics while dumping (needs the statsview build tag)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
