// Package config handles application configuration and setup
package config

import (
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/romdump/internal/acquire"
	"github.com/retroenv/romdump/internal/options"
	"github.com/retroenv/romdump/internal/serial"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	return log.NewWithConfig(loggerConfig(debug, quiet))
}

// loggerConfig returns the logger configuration. Logs always go to stderr, stdout
// may carry the dump stream.
func loggerConfig(debug, quiet bool) log.Config {
	cfg := log.DefaultConfig()
	cfg.Output = os.Stderr
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return cfg
}

// AcquireOptions converts the program options to acquisition loop options.
func AcquireOptions(opts options.Program) []acquire.Option {
	acquireOptions := []acquire.Option{
		acquire.WithSettle(opts.Settle),
	}
	if opts.Rows > 0 {
		acquireOptions = append(acquireOptions, acquire.WithRows(uint32(opts.Rows)))
	}
	return acquireOptions
}

// UARTOptions converts the program options to transmitter options. The simulated
// transmitter only waits for the character time when pacing was requested, a real
// serial port paces the stream by itself.
func UARTOptions(opts options.Program) []serial.UARTOption {
	if !opts.Pace {
		return nil
	}
	return []serial.UARTOption{
		serial.WithBaudRate(opts.Baud),
	}
}
