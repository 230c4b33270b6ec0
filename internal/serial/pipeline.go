// Package serial implements the transmit pipeline that serializes one message at a
// time onto an interrupt driven transmitter.
package serial

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/retroenv/retrogolib/log"
)

// BufferSize is the capacity of the transmit buffer.
const BufferSize = 128

// Transmitter is an asynchronous transmitter that sends one unit at a time and
// notifies about every successfully sent unit.
type Transmitter interface {
	// Init prepares the transmitter and registers the completion handler that gets
	// called from the transmitter context after every pushed unit was sent.
	Init(complete func()) error
	// Ready returns whether the transmitter accepts the next unit.
	Ready() bool
	// Push hands one unit to the transmitter.
	Push(b byte)
}

// Stats contains counters of a pipeline.
type Stats struct {
	Messages  uint64 // messages handed to the transmitter
	Units     uint64 // units pushed to the transmitter
	Truncated uint64 // messages cut to the buffer capacity
}

// Pipeline owns the transmit buffer of a transmitter. Callers block until any
// message in flight has been sent completely, the rest of a message is drained by
// the completion handler of the transmitter.
type Pipeline struct {
	logger *log.Logger
	tx     Transmitter

	// mu guards the busy state and the waiting queue. It plays the role of masking
	// the completion interrupt, it is never held while the buffer gets filled.
	mu      sync.Mutex
	idle    *sync.Cond
	busy    bool
	ticket  uint64 // next ticket to hand out to a waiting writer
	serving uint64 // ticket that may claim the buffer next

	// only touched by the writer holding the claim and by the completion handler,
	// the handoff of the first unit to the transmitter orders the accesses.
	buffer  [BufferSize]byte
	cursor  int
	pending int

	messages  atomic.Uint64
	units     atomic.Uint64
	truncated atomic.Uint64
}

// New returns a pipeline for the transmitter and initializes the transmitter.
func New(logger *log.Logger, tx Transmitter) (*Pipeline, error) {
	p := &Pipeline{
		logger: logger,
		tx:     tx,
	}
	p.idle = sync.NewCond(&p.mu)

	if err := tx.Init(p.complete); err != nil {
		return nil, fmt.Errorf("initializing transmitter: %w", err)
	}
	return p, nil
}

// WriteFormatted renders the arguments into the format and transmits the result.
// It blocks until all previous messages have been sent.
func (p *Pipeline) WriteFormatted(format string, args ...any) {
	p.transmit(fmt.Sprintf(format, args...))
}

// WriteRaw transmits the string verbatim.
// It blocks until all previous messages have been sent.
func (p *Pipeline) WriteRaw(s string) {
	p.transmit(s)
}

// Drain blocks until the message in flight has been sent completely.
func (p *Pipeline) Drain() {
	p.mu.Lock()
	for p.busy {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Messages:  p.messages.Load(),
		Units:     p.units.Load(),
		Truncated: p.truncated.Load(),
	}
}

func (p *Pipeline) transmit(msg string) {
	if len(msg) == 0 {
		return
	}
	if len(msg) > BufferSize {
		p.truncated.Add(1)
		p.logger.Warn("Message exceeds transmit buffer, truncating",
			log.Int("length", len(msg)),
			log.Int("capacity", BufferSize))
		msg = msg[:BufferSize]
	}

	p.claim()

	n := copy(p.buffer[:], msg)
	p.pending = n - 1 // the first unit is pushed below, outside the completion handler
	p.cursor = 1
	p.messages.Add(1)

	for !p.tx.Ready() {
		runtime.Gosched()
	}

	p.units.Add(1)
	p.tx.Push(p.buffer[0])
}

// claim waits until the buffer is free and marks it busy. Writers are released in
// the order they started waiting.
func (p *Pipeline) claim() {
	p.mu.Lock()
	ticket := p.ticket
	p.ticket++
	for p.busy || p.serving != ticket {
		p.idle.Wait()
	}
	p.serving++
	p.busy = true
	p.mu.Unlock()
}

// complete is the completion handler registered with the transmitter. It pushes
// the next pending unit or releases the buffer once the message was sent.
func (p *Pipeline) complete() {
	if p.pending > 0 {
		b := p.buffer[p.cursor]
		p.cursor++
		p.pending--
		p.units.Add(1)
		p.tx.Push(b)
		return
	}

	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
	p.idle.Broadcast()
}
