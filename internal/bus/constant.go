package bus

// Constant is a driver whose data bus always reads the same value.
type Constant struct {
	Value byte
}

// SetChipEnable implements Driver.
func (c Constant) SetChipEnable(bool) {}

// SetOutputEnable implements Driver.
func (c Constant) SetOutputEnable(bool) {}

// SetStrobe implements Driver.
func (c Constant) SetStrobe(bool) {}

// SetLow implements Driver.
func (c Constant) SetLow(uint8) {}

// SetMid implements Driver.
func (c Constant) SetMid(uint8) {}

// SetHigh implements Driver.
func (c Constant) SetHigh(uint8) {}

// Data implements Driver.
func (c Constant) Data() uint8 {
	return c.Value
}
