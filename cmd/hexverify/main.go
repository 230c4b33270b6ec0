// Package main implements a verifier for captured ROM dump streams
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/romdump/internal/address"
	"github.com/retroenv/romdump/internal/config"
	"github.com/retroenv/romdump/internal/loader"
	"github.com/retroenv/romdump/internal/verification"
)

var (
	version = "dev"
	commit  = ""
)

type optionFlags struct {
	image   string
	capture string

	rows  uint
	debug bool
	quiet bool
}

func main() {
	options := readArguments()
	logger := config.CreateLogger(options.debug, options.quiet)

	if !options.quiet {
		printBanner(logger)
	}

	if err := verifyFile(logger, options); err != nil {
		logger.Error("Verification failed", log.Err(err))
		os.Exit(1)
	}
	logger.Info("Capture matches image")
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{}

	flags.UintVar(&options.rows, "rows", 0, "number of 16 word rows the capture must contain, the whole device if 0")
	flags.BoolVar(&options.debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&options.quiet, "q", false, "perform operations quietly")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) != 2 || options.rows > address.Rows {
		fmt.Fprintf(os.Stderr, "usage: hexverify [options] <rom image> <captured dump>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	options.image = args[0]
	options.capture = args[1]

	return options
}

func printBanner(logger *log.Logger) {
	versionString := version
	if commit != "" {
		versionString += fmt.Sprintf(" (%s)", commit)
	}
	logger.Info("hexverify", log.String("version", versionString))
}

func verifyFile(logger *log.Logger, options optionFlags) error {
	image, err := loader.New().Load(options.image)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}

	dev, err := image.Device()
	if err != nil {
		return err
	}

	rows := uint32(options.rows)
	if rows == 0 {
		rows = address.Rows
	}

	file, err := os.Open(options.capture)
	if err != nil {
		return fmt.Errorf("opening file '%s': %w", options.capture, err)
	}
	defer func() { _ = file.Close() }()

	logger.Debug("Verifying capture",
		log.String("file", options.capture),
		log.Int("rows", int(rows)))
	return verification.Verify(logger, file, dev, rows)
}
