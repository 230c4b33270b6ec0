package serial

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// bitsPerUnit is the number of bits on the line for one unit in 8N1 framing.
const bitsPerUnit = 10

var errAlreadyInitialized = errors.New("transmitter already initialized")

// UARTOption configures a simulated UART.
type UARTOption func(*UART)

// WithBaudRate paces the transmission to the character time of the given baud rate.
// A rate of 0 sends units as fast as the sink accepts them.
func WithBaudRate(baud int) UARTOption {
	return func(u *UART) {
		if baud <= 0 {
			u.charTime = 0
			return
		}
		u.charTime = time.Second * bitsPerUnit / time.Duration(baud)
	}
}

// UART is a simulated interrupt driven transmitter. A goroutine plays the shift
// register: it moves a pushed unit out of the data register, writes it to the sink
// and calls the completion handler once the unit is sent.
type UART struct {
	logger   *log.Logger
	sink     *bufio.Writer
	charTime time.Duration

	data     chan byte // transmit data register
	complete func()
	started  atomic.Bool
	stop     chan struct{}
	done     chan struct{}

	sent    atomic.Uint64
	errOnce sync.Once
	errMu   sync.Mutex
	err     error
}

// NewUART returns a simulated UART that transmits to the sink.
func NewUART(logger *log.Logger, sink io.Writer, options ...UARTOption) *UART {
	u := &UART{
		logger: logger,
		sink:   bufio.NewWriter(sink),
		data:   make(chan byte, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, option := range options {
		option(u)
	}
	return u
}

// Init implements Transmitter and starts the transmitter goroutine.
func (u *UART) Init(complete func()) error {
	if complete == nil {
		return errors.New("missing completion handler")
	}
	if !u.started.CompareAndSwap(false, true) {
		return errAlreadyInitialized
	}

	u.complete = complete
	go u.run()
	return nil
}

// Ready implements Transmitter, it reports an empty data register.
func (u *UART) Ready() bool {
	return len(u.data) == 0
}

// Push implements Transmitter.
func (u *UART) Push(b byte) {
	u.data <- b
}

// Sent returns the number of units that left the shift register.
func (u *UART) Sent() uint64 {
	return u.sent.Load()
}

// Err returns the first error returned by the sink. Units that could not be
// written are dropped, the transmission itself never stalls on a sink error.
func (u *UART) Err() error {
	u.errMu.Lock()
	defer u.errMu.Unlock()
	return u.err
}

// Close stops the transmitter goroutine and flushes the sink.
// Units still in the data register are discarded.
func (u *UART) Close() error {
	if u.started.Load() {
		close(u.stop)
		<-u.done
	}
	if err := u.sink.Flush(); err != nil {
		return err
	}
	return nil
}

func (u *UART) run() {
	defer close(u.done)

	for {
		select {
		case <-u.stop:
			return

		case b := <-u.data:
			u.shift(b)
			u.complete()

			// the handler did not push another unit, the message is complete
			if len(u.data) == 0 {
				u.flush()
			}
		}
	}
}

func (u *UART) shift(b byte) {
	if err := u.sink.WriteByte(b); err != nil {
		u.setErr(err)
	}
	u.sent.Add(1)

	if u.charTime > 0 {
		time.Sleep(u.charTime)
	}
}

func (u *UART) flush() {
	if err := u.sink.Flush(); err != nil {
		u.setErr(err)
	}
}

func (u *UART) setErr(err error) {
	u.errOnce.Do(func() {
		u.errMu.Lock()
		u.err = err
		u.errMu.Unlock()
		u.logger.Error("Writing to serial sink failed", log.Err(err))
	})
}
