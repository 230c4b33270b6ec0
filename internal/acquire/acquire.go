// Package acquire implements the acquisition loop that walks the ROM address space
// and streams every row as a line of hex text.
package acquire

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/romdump/internal/address"
	"github.com/retroenv/romdump/internal/bus"
	"github.com/retroenv/romdump/internal/hexline"
)

// Banner is sent once before the first row.
const Banner = "\r\nReady\r\n\r\n"

// DefaultSettle is the delay between presenting an address and strobe state and
// sampling the data bus.
const DefaultSettle = time.Microsecond

// progressRows is the number of rows between progress log entries.
const progressRows = 4096

// Writer is the output of the acquisition loop.
type Writer interface {
	WriteFormatted(format string, args ...any)
	WriteRaw(s string)
}

// Option configures an acquirer.
type Option func(*Acquirer)

// WithSettle sets the settle delay. Values below the device access time are raised
// to it, a longer delay is always safe.
func WithSettle(d time.Duration) Option {
	return func(a *Acquirer) {
		a.settle = max(d, bus.AccessTime)
	}
}

// WithRows limits a run to the first n rows of the address space.
func WithRows(n uint32) Option {
	return func(a *Acquirer) {
		if n > 0 && n < address.Rows {
			a.rows = n
		}
	}
}

// Acquirer reads the device row by row and renders the captured rows.
type Acquirer struct {
	logger *log.Logger
	bus    bus.Driver
	out    Writer

	settle time.Duration
	rows   uint32

	completed atomic.Uint32
}

// New returns an acquirer that reads from the bus driver and writes to out.
func New(logger *log.Logger, driver bus.Driver, out Writer, options ...Option) *Acquirer {
	a := &Acquirer{
		logger: logger,
		bus:    driver,
		out:    out,
		settle: DefaultSettle,
		rows:   address.Rows,
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Run sends the banner and then reads and transmits all rows in ascending order.
// There is no way to interrupt a run and no error path, a bus read that violates
// the device timing silently yields wrong data.
func (a *Acquirer) Run() {
	a.logger.Debug("Starting acquisition",
		log.Int("rows", int(a.rows)),
		log.Stringer("settle", a.settle))

	a.out.WriteFormatted(Banner)

	var buf [address.BytesPerRow]byte
	addr := address.Address(0)

	for row := uint32(0); row < a.rows; row++ {
		addr = a.readRow(addr, &buf)
		a.render(&buf)
		a.completed.Store(row + 1)

		if (row+1)%progressRows == 0 {
			a.logger.Debug("Acquisition progress",
				log.Hex("address", uint32(addr)),
				log.Int("rows", int(row+1)))
		}
	}
}

// Rows returns the number of rows that have been read and rendered.
func (a *Acquirer) Rows() uint32 {
	return a.completed.Load()
}

// readRow captures the 16 words of the row starting at addr into buf, high byte
// first for every word, and returns the first address of the next row.
func (a *Acquirer) readRow(addr address.Address, buf *[address.BytesPerRow]byte) address.Address {
	a.bus.SetChipEnable(true)
	a.bus.SetOutputEnable(true)

	for word := 0; word < address.WordsPerRow; word++ {
		f := address.Split(addr)
		a.bus.SetLow(f.Low)
		a.bus.SetMid(f.Mid)
		a.bus.SetHigh(f.High)

		a.bus.SetStrobe(true)
		bus.Delay(a.settle)
		buf[word*2] = a.bus.Data()

		a.bus.SetStrobe(false)
		bus.Delay(a.settle)
		buf[word*2+1] = a.bus.Data()

		addr++
	}

	a.bus.SetChipEnable(false)
	a.bus.SetOutputEnable(false)
	return addr
}

// render sends every byte as its own two character token followed by the line
// terminator.
func (a *Acquirer) render(buf *[address.BytesPerRow]byte) {
	for _, b := range buf {
		a.out.WriteRaw(hexline.Byte(b))
	}
	a.out.WriteFormatted(hexline.Terminator)
}

// Idle blocks once the acquisition is complete. On the device this is the end
// state, on the host it lasts until the context is cancelled.
func Idle(ctx context.Context) {
	<-ctx.Done()
}
