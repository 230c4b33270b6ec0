package serial

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// manualTx is a transmitter whose completion notifications are raised by the test.
type manualTx struct {
	mu       sync.Mutex
	complete func()
	pushed   []byte
	pushes   chan byte
}

func newManualTx() *manualTx {
	return &manualTx{
		pushes: make(chan byte, 1024),
	}
}

func (m *manualTx) Init(complete func()) error {
	m.complete = complete
	return nil
}

func (m *manualTx) Ready() bool {
	return true
}

func (m *manualTx) Push(b byte) {
	m.mu.Lock()
	m.pushed = append(m.pushed, b)
	m.mu.Unlock()
	m.pushes <- b
}

// fire raises one completion notification.
func (m *manualTx) fire() {
	m.complete()
}

func (m *manualTx) output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.pushed)
}

func isBusy(p *Pipeline) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

func TestCompletionHandlerPushesPending(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "single unit", message: "x"},
		{name: "hex token", message: "5a"},
		{name: "line", message: "0123456789abcdef\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newManualTx()
			p, err := New(log.NewTestLogger(t), tx)
			assert.NoError(t, err)

			p.WriteRaw(tt.message)
			assert.True(t, isBusy(p))
			assert.Equal(t, tt.message[:1], tx.output())

			pending := len(tt.message) - 1
			assert.Equal(t, pending, p.pending)

			for i := 0; i < pending; i++ {
				tx.fire()
				assert.True(t, isBusy(p))
				assert.Equal(t, tt.message[:i+2], tx.output())
			}

			tx.fire()
			assert.False(t, isBusy(p))
			assert.Equal(t, tt.message, tx.output())
		})
	}
}

func TestCompletionWithoutPendingReleases(t *testing.T) {
	tx := newManualTx()
	p, err := New(log.NewTestLogger(t), tx)
	assert.NoError(t, err)

	p.WriteRaw("z")
	assert.Equal(t, 0, p.pending)

	tx.fire()
	assert.False(t, isBusy(p))
	assert.Equal(t, "z", tx.output())
}

func TestSecondWriterStallsUntilDrained(t *testing.T) {
	tx := newManualTx()
	p, err := New(log.NewTestLogger(t), tx)
	assert.NoError(t, err)

	p.WriteRaw("first")
	<-tx.pushes

	done := make(chan struct{})
	go func() {
		p.WriteFormatted("%s-%d", "second", 2)
		close(done)
	}()

	// drain the first message, the second writer must not push in between
	for i := 0; i < len("first")-1; i++ {
		tx.fire()
		<-tx.pushes
	}
	select {
	case <-done:
		t.Fatal("second writer proceeded while the buffer was busy")
	case <-time.After(10 * time.Millisecond):
	}
	assert.Equal(t, "first", tx.output())

	tx.fire() // releases the buffer
	<-done
	<-tx.pushes

	for i := 0; i < len("second-2"); i++ {
		tx.fire()
	}
	assert.False(t, isBusy(p))
	assert.Equal(t, "firstsecond-2", tx.output())
}

func TestWriteEmptyMessage(t *testing.T) {
	tx := newManualTx()
	p, err := New(log.NewTestLogger(t), tx)
	assert.NoError(t, err)

	p.WriteRaw("")
	p.WriteFormatted("")
	assert.False(t, isBusy(p))
	assert.Equal(t, "", tx.output())
	assert.Equal(t, uint64(0), p.Stats().Messages)
}

func TestWriteTruncatesToBuffer(t *testing.T) {
	var sink bytes.Buffer
	u := NewUART(log.NewTestLogger(t), &sink)
	p, err := New(log.NewTestLogger(t), u)
	assert.NoError(t, err)

	message := strings.Repeat("ab", BufferSize)
	p.WriteRaw(message)
	p.Drain()
	assert.NoError(t, u.Close())

	assert.Equal(t, message[:BufferSize], sink.String())
	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Truncated)
	assert.Equal(t, uint64(1), stats.Messages)
	assert.Equal(t, uint64(BufferSize), stats.Units)
}

func TestConcurrentWritersDoNotInterleave(t *testing.T) {
	const (
		writers  = 8
		messages = 50
	)

	var sink bytes.Buffer
	u := NewUART(log.NewTestLogger(t), &sink)
	p, err := New(log.NewTestLogger(t), u)
	assert.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < messages; i++ {
				p.WriteFormatted("[%d-%04d]", w, i)
			}
		}(w)
	}
	wg.Wait()
	p.Drain()
	assert.NoError(t, u.Close())

	out := sink.String()
	const width = len("[0-0000]")
	assert.Equal(t, writers*messages*width, len(out))

	next := make([]int, writers)
	for i := 0; i < len(out); i += width {
		w := int(out[i+1] - '0')
		n, err := strconv.Atoi(out[i+3 : i+7])
		assert.NoError(t, err)
		assert.Equal(t, next[w], n)
		next[w]++
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("line disconnected")
}

// discardLogger returns a logger for tests that expect error records, the test
// logger fails a test on every error record.
func discardLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.NewWithConfig(cfg)
}

func TestUARTSinkErrorDoesNotStall(t *testing.T) {
	logger := discardLogger()
	u := NewUART(logger, failingWriter{})
	p, err := New(logger, u)
	assert.NoError(t, err)

	for i := 0; i < 4; i++ {
		p.WriteRaw(strings.Repeat("x", BufferSize))
	}
	p.Drain()
	assert.Error(t, u.Close())

	assert.ErrorContains(t, u.Err(), "line disconnected")
	assert.Equal(t, uint64(4*BufferSize), u.Sent())
}

func TestUARTInit(t *testing.T) {
	u := NewUART(log.NewTestLogger(t), &bytes.Buffer{})
	assert.Error(t, u.Init(nil))
	assert.NoError(t, u.Init(func() {}))
	assert.True(t, errors.Is(u.Init(func() {}), errAlreadyInitialized))
	assert.NoError(t, u.Close())

	u = NewUART(log.NewTestLogger(t), &bytes.Buffer{})
	_, err := New(log.NewTestLogger(t), u)
	assert.NoError(t, err)
	_, err = New(log.NewTestLogger(t), u)
	assert.ErrorContains(t, err, "initializing transmitter")
	assert.NoError(t, u.Close())
}

func TestUARTBaudRate(t *testing.T) {
	u := NewUART(log.NewTestLogger(t), &bytes.Buffer{}, WithBaudRate(1000))
	assert.Equal(t, 10*time.Millisecond, u.charTime)

	u = NewUART(log.NewTestLogger(t), &bytes.Buffer{}, WithBaudRate(DefaultBaudRate))
	assert.Equal(t, time.Second*10/DefaultBaudRate, u.charTime)

	u = NewUART(log.NewTestLogger(t), &bytes.Buffer{}, WithBaudRate(0))
	assert.Equal(t, time.Duration(0), u.charTime)
}
