// Package bus contains the parallel ROM bus driver interface and a simulated
// MX23L8111 mask ROM that implements it.
package bus

import "time"

// AccessTime is the minimum time the device needs between presenting a stable
// address and strobe state and valid data on the data bus.
const AccessTime = 100 * time.Nanosecond

// Driver drives the control and address lines of the ROM and samples its data lines.
// All operations take effect immediately.
type Driver interface {
	// SetChipEnable drives the chip enable line, active means the device is selected.
	SetChipEnable(active bool)
	// SetOutputEnable drives the output enable line, active means the device drives D7-D0.
	SetOutputEnable(active bool)
	// SetStrobe drives the A-1 line, high selects the high byte of the addressed word.
	SetStrobe(high bool)

	// SetLow drives A7-A0.
	SetLow(v uint8)
	// SetMid drives A15-A8.
	SetMid(v uint8)
	// SetHigh drives the high address pin group, only A18-A16 are wired.
	SetHigh(v uint8)

	// Data samples D7-D0.
	Data() uint8
}

// Delay busy waits for at least the given duration. The settle delays of the bus
// protocol are far below the resolution of the scheduler, so sleeping is not an option.
func Delay(d time.Duration) {
	if d <= 0 {
		return
	}
	start := time.Now()
	for time.Since(start) < d {
	}
}
