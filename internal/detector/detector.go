// Package detector handles output target detection.
package detector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Target is the kind of sink the dump stream is written to.
type Target int

// Output targets.
const (
	Stdout Target = iota
	File
	SerialPort
)

func (t Target) String() string {
	switch t {
	case Stdout:
		return "stdout"
	case File:
		return "file"
	case SerialPort:
		return "serial port"
	default:
		return "unknown"
	}
}

// serialPrefixes are device name prefixes of serial ports and pseudo terminals.
var serialPrefixes = []string{"tty", "cu.", "rfcomm"}

// Detector handles output target detection from the output option.
type Detector struct {
	logger *log.Logger
	stat   func(name string) (os.FileInfo, error)
}

// New creates a new output target detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
		stat:   os.Stat,
	}
}

// Detect determines the output target for the output option. An empty output or
// "-" selects stdout, an existing character device that is named like a serial port
// selects a serial port, everything else is treated as a file.
func (d *Detector) Detect(output string) Target {
	target := d.detect(output)
	d.logger.Debug("Detected output target",
		log.Stringer("target", target),
		log.String("output", output))
	return target
}

func (d *Detector) detect(output string) Target {
	if output == "" || output == "-" {
		return Stdout
	}

	info, err := d.stat(output)
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return File
	}

	if isSerialName(output) {
		return SerialPort
	}
	return File
}

// StdoutIsTerminal returns whether stdout is an interactive terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func isSerialName(path string) bool {
	if strings.HasPrefix(filepath.ToSlash(path), "/dev/pts/") ||
		strings.HasPrefix(filepath.ToSlash(path), "/dev/serial/") {
		return true
	}

	name := filepath.Base(path)
	for _, prefix := range serialPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
