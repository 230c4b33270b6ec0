// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/romdump/internal/detector"
	"github.com/retroenv/romdump/internal/options"
	"github.com/retroenv/romdump/internal/pipeline"
	"github.com/retroenv/romdump/internal/serial"
)

var errVerifyNeedsFile = errors.New("verification needs a file output")

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) (*pipeline.Result, error) {
	p := pipeline.New(logger)

	target := p.Detector().Detect(opts.Output)
	if opts.Verify && target != detector.File {
		return nil, fmt.Errorf("output '%s' is a %s: %w", opts.Output, target, errVerifyNeedsFile)
	}

	writer, err := createWriter(logger, target, opts)
	if err != nil {
		return nil, fmt.Errorf("creating writer: %w", err)
	}
	defer func() { _ = writer.Close() }()

	result, err := p.Execute(ctx, opts, writer)
	if err != nil {
		return nil, fmt.Errorf("dumping %s: %w", opts.Input, err)
	}
	return result, nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match batch pattern '%s'", opts.Batch)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".hex"
}

func createWriter(logger *log.Logger, target detector.Target, opts options.Program) (io.WriteCloser, error) {
	switch target {
	case detector.Stdout:
		if detector.StdoutIsTerminal() {
			logger.Warn("Writing the hex stream to the terminal, use -o to write to a file")
		}
		return nopCloser{os.Stdout}, nil

	case detector.SerialPort:
		port, err := serial.OpenPort(opts.Output, opts.Baud)
		if err != nil {
			return nil, err
		}
		if speed, err := port.GetSpeed(); err == nil {
			logger.Debug("Opened serial port",
				log.String("port", opts.Output),
				log.Int("baud", speed))
		}
		return port, nil

	default:
		file, err := os.Create(opts.Output)
		if err != nil {
			return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
		}
		return file, nil
	}
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("romdump", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// nopCloser keeps stdout open after processing a file
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
