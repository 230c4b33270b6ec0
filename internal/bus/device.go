package bus

import (
	"fmt"
	"time"

	"github.com/retroenv/romdump/internal/address"
)

const (
	// Words is the number of 16 bit words stored in the device.
	Words = 1 << 19
	// ImageSize is the size in bytes of a complete device image.
	ImageSize = Words * 2

	// Floating is the value sampled while the device does not drive the data bus.
	Floating = 0xff
)

// DeviceOption configures a simulated device.
type DeviceOption func(*Device)

// WithAccessTime sets the access time the simulated device needs before it
// presents valid data.
func WithAccessTime(d time.Duration) DeviceOption {
	return func(dev *Device) {
		dev.accessTime = d
	}
}

// WithClock sets the time source of the simulated device.
func WithClock(now func() time.Time) DeviceOption {
	return func(dev *Device) {
		dev.now = now
	}
}

// Device is a simulated MX23L8111 512K x 16 mask ROM in word mode with byte wide
// output. The byte address inside the image is the word address shifted left by one
// with A-1 as the lowest bit, a high A-1 therefore selects the odd, high byte of a word.
//
// The control lines are active low on the real device, the Driver interface hides
// that inversion. Device is not safe for concurrent use, the bus has a single owner.
type Device struct {
	image      []byte
	accessTime time.Duration
	now        func() time.Time

	chipEnable   bool
	outputEnable bool
	strobe       bool
	low          uint8
	mid          uint8
	high         uint8

	changed time.Time // last change of an address line or the strobe
	latched uint8     // last value driven on the data bus

	samples      uint64
	earlySamples uint64
}

// NewDevice returns a simulated device that contains the given image. The image
// must not be larger than ImageSize, missing bytes read as erased.
func NewDevice(image []byte, options ...DeviceOption) (*Device, error) {
	if len(image) > ImageSize {
		return nil, fmt.Errorf("image size %d exceeds device size %d", len(image), ImageSize)
	}

	data := make([]byte, ImageSize)
	n := copy(data, image)
	for i := n; i < len(data); i++ {
		data[i] = Floating
	}

	dev := &Device{
		image:      data,
		accessTime: AccessTime,
		now:        time.Now,
		latched:    Floating,
	}
	for _, option := range options {
		option(dev)
	}
	dev.changed = dev.now()
	return dev, nil
}

// SetChipEnable implements Driver.
func (d *Device) SetChipEnable(active bool) {
	d.chipEnable = active
}

// SetOutputEnable implements Driver.
func (d *Device) SetOutputEnable(active bool) {
	d.outputEnable = active
}

// SetStrobe implements Driver.
func (d *Device) SetStrobe(high bool) {
	d.strobe = high
	d.changed = d.now()
}

// SetLow implements Driver.
func (d *Device) SetLow(v uint8) {
	d.low = v
	d.changed = d.now()
}

// SetMid implements Driver.
func (d *Device) SetMid(v uint8) {
	d.mid = v
	d.changed = d.now()
}

// SetHigh implements Driver.
func (d *Device) SetHigh(v uint8) {
	d.high = v & address.HighPins
	d.changed = d.now()
}

// Data implements Driver. Sampling before the access time elapsed returns the value
// that was last driven on the bus.
func (d *Device) Data() uint8 {
	d.samples++
	if !d.chipEnable || !d.outputEnable {
		return Floating
	}

	if d.now().Sub(d.changed) < d.accessTime {
		d.earlySamples++
		return d.latched
	}

	d.latched = d.image[d.byteAddress()]
	return d.latched
}

// Samples returns the number of data bus samples taken.
func (d *Device) Samples() uint64 {
	return d.samples
}

// EarlySamples returns the number of samples taken before the access time elapsed.
func (d *Device) EarlySamples() uint64 {
	return d.earlySamples
}

// Word returns the 16 bit word stored at the given address, mirroring the address
// the same way the unwired A19 line does.
func (d *Device) Word(a address.Address) uint16 {
	offset := wordOffset(address.Split(a))
	return uint16(d.image[offset+1])<<8 | uint16(d.image[offset])
}

func (d *Device) byteAddress() uint32 {
	offset := wordOffset(address.Fields{Low: d.low, Mid: d.mid, High: d.high})
	if d.strobe {
		offset++
	}
	return offset
}

func wordOffset(f address.Fields) uint32 {
	word := uint32(f.High&address.HighPins)<<address.HighShift |
		uint32(f.Mid)<<address.MidShift |
		uint32(f.Low)
	return word << 1
}
