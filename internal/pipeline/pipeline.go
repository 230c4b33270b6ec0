// Package pipeline orchestrates the dump workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/romdump/internal/acquire"
	"github.com/retroenv/romdump/internal/bus"
	"github.com/retroenv/romdump/internal/config"
	"github.com/retroenv/romdump/internal/detector"
	"github.com/retroenv/romdump/internal/loader"
	"github.com/retroenv/romdump/internal/options"
	"github.com/retroenv/romdump/internal/serial"
	"github.com/retroenv/romdump/internal/verification"
)

// Result contains the outcome of a dump run.
type Result struct {
	Rows     uint32        // rows read and rendered
	Sent     uint64        // units that left the transmitter
	Stats    serial.Stats  // transmit pipeline counters
	Duration time.Duration // time from banner to drained pipeline
}

// Pipeline orchestrates the complete dump workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new dump pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Detector returns the output target detector of the pipeline.
func (p *Pipeline) Detector() *detector.Detector {
	return p.detector
}

// Execute runs the complete dump pipeline for the input image of the options and
// writes the stream to writer.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, writer io.Writer) (*Result, error) {
	image, err := p.loader.Load(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}
	if image.Partial() {
		p.logger.Warn("Image is smaller than the device, missing part reads as erased",
			log.String("file", image.Name),
			log.Int("size", len(image.Data)),
			log.Int("device", bus.ImageSize))
	}

	dev, err := image.Device()
	if err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}

	return p.ExecuteWithDevice(ctx, dev, opts, writer)
}

// ExecuteWithDevice runs the dump pipeline with a prepared device.
// This is useful for testing and programmatic usage where the image is already in memory.
func (p *Pipeline) ExecuteWithDevice(ctx context.Context, dev *bus.Device, opts options.Program,
	writer io.Writer) (*Result, error) {

	p.printInfo(opts)

	result, err := p.runCapture(ctx, dev, opts, writer)
	if err != nil {
		return nil, fmt.Errorf("capturing: %w", err)
	}

	p.logger.Info("Dump complete",
		log.Int("rows", int(result.Rows)),
		log.Int("units", int(result.Sent)),
		log.Stringer("duration", result.Duration.Round(time.Millisecond)))

	if opts.Verify {
		if err := verification.VerifyOutput(p.logger, opts.Output, dev, result.Rows); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return result, nil
}

// runCapture wires the transmitter, the transmit pipeline and the acquisition loop
// and runs the capture. The core has no cancellation, a cancelled context abandons
// the capture goroutine and returns the context error.
func (p *Pipeline) runCapture(ctx context.Context, dev *bus.Device, opts options.Program,
	writer io.Writer) (*Result, error) {

	uart := serial.NewUART(p.logger, writer, config.UARTOptions(opts)...)
	out, err := serial.New(p.logger, uart)
	if err != nil {
		return nil, fmt.Errorf("creating transmit pipeline: %w", err)
	}

	acq := acquire.New(p.logger, dev, out, config.AcquireOptions(opts)...)

	start := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		acq.Run()
		out.Drain()
	}()

	select {
	case <-ctx.Done():
		_ = uart.Close()
		return nil, ctx.Err()
	case <-done:
	}

	if err := uart.Close(); err != nil {
		return nil, fmt.Errorf("flushing stream: %w", err)
	}
	if err := uart.Err(); err != nil {
		return nil, fmt.Errorf("writing stream: %w", err)
	}

	stats := out.Stats()
	if stats.Truncated > 0 {
		p.logger.Warn("Messages were truncated to the transmit buffer",
			log.Int("count", int(stats.Truncated)))
	}

	return &Result{
		Rows:     acq.Rows(),
		Sent:     uart.Sent(),
		Stats:    stats,
		Duration: time.Since(start),
	}, nil
}

// printInfo prints information about the dump being started.
func (p *Pipeline) printInfo(opts options.Program) {
	if opts.Quiet {
		return
	}

	output := opts.Output
	if output == "" {
		output = "-"
	}
	p.logger.Info("Dumping ROM",
		log.String("file", opts.Input),
		log.String("output", output),
		log.Stringer("settle", opts.Settle))
}
