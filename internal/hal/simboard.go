package hal

import (
	"fmt"
	"sort"
	"sync"
)

const (
	maxPWMFrequency = 40_000_000
	maxPWMBits      = 16
)

type simPin struct {
	mode     PinMode
	latch    bool
	external *bool

	pwm     bool
	pwmBits uint8
	duty    uint32
}

// SimBoard is an in-memory Board. Tests and the host build drive its inputs
// with SetInput, SetAnalog and AddI2CDevice.
type SimBoard struct {
	mu      sync.Mutex
	pins    map[int]*simPin
	analog  map[int]int
	devices map[uint8]bool
}

var _ Board = (*SimBoard)(nil)

// NewSimBoard creates a board with every pin a floating input.
func NewSimBoard() *SimBoard {
	return &SimBoard{
		pins:    make(map[int]*simPin),
		analog:  make(map[int]int),
		devices: make(map[uint8]bool),
	}
}

func (b *SimBoard) pin(n int) (*simPin, error) {
	if err := CheckPin(n); err != nil {
		return nil, err
	}
	p, ok := b.pins[n]
	if !ok {
		p = &simPin{}
		b.pins[n] = p
	}
	return p, nil
}

// SetInput drives pin externally, as a button or sensor would.
func (b *SimBoard) SetInput(pin int, high bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, err := b.pin(pin); err == nil {
		p.external = &high
	}
}

// ReleaseInput stops driving pin externally.
func (b *SimBoard) ReleaseInput(pin int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, err := b.pin(pin); err == nil {
		p.external = nil
	}
}

// SetAnalog sets the raw value ADCRead reports for pin.
func (b *SimBoard) SetAnalog(pin int, raw int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.analog[pin] = raw
}

// AddI2CDevice makes addr acknowledge on every bus.
func (b *SimBoard) AddI2CDevice(addr uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr] = true
}

// Mode returns the configured mode of pin.
func (b *SimBoard) Mode(pin int) PinMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.pins[pin]; ok {
		return p.mode
	}
	return ModeInput
}

// Duty returns the PWM duty of pin and whether PWM is attached.
func (b *SimBoard) Duty(pin int) (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.pins[pin]; ok {
		return p.duty, p.pwm
	}
	return 0, false
}

// SetMode implements Board.
func (b *SimBoard) SetMode(pin int, mode PinMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.pin(pin)
	if err != nil {
		return err
	}
	p.mode = mode
	return nil
}

// Read implements Board. Outputs read back their latch; inputs read the
// external drive, else their pull resistor, else low.
func (b *SimBoard) Read(pin int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.pin(pin)
	if err != nil {
		return false, err
	}
	switch {
	case p.mode == ModeOutput:
		return p.latch, nil
	case p.external != nil:
		return *p.external, nil
	default:
		return p.mode == ModeInputPullUp, nil
	}
}

// Write implements Board.
func (b *SimBoard) Write(pin int, high bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.pin(pin)
	if err != nil {
		return err
	}
	p.latch = high
	return nil
}

// ADCRead implements Board.
func (b *SimBoard) ADCRead(pin int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := CheckPin(pin); err != nil {
		return 0, err
	}
	return b.analog[pin], nil
}

// PWMAttach implements Board.
func (b *SimBoard) PWMAttach(pin int, freqHz uint32, bits uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.pin(pin)
	if err != nil {
		return err
	}
	if freqHz < 1 || freqHz > maxPWMFrequency || bits < 1 || bits > maxPWMBits {
		return fmt.Errorf("%d Hz at %d bits: %w", freqHz, bits, ErrPWMParameters)
	}
	p.pwm = true
	p.pwmBits = bits
	p.duty = 0
	p.mode = ModeOutput
	return nil
}

// PWMWrite implements Board. Duty is clamped to the attached resolution.
func (b *SimBoard) PWMWrite(pin int, duty uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.pin(pin)
	if err != nil {
		return err
	}
	if !p.pwm {
		return fmt.Errorf("pin %d: %w", pin, ErrPWMNotActive)
	}
	if limit := uint32(1)<<p.pwmBits - 1; duty > limit {
		duty = limit
	}
	p.duty = duty
	return nil
}

// PWMDetach implements Board.
func (b *SimBoard) PWMDetach(pin int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.pin(pin)
	if err != nil {
		return err
	}
	p.pwm = false
	p.duty = 0
	return nil
}

// I2CScan implements Board.
func (b *SimBoard) I2CScan(sda, scl int) ([]uint8, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := CheckPin(sda); err != nil {
		return nil, err
	}
	if err := CheckPin(scl); err != nil {
		return nil, err
	}
	var found []uint8
	for addr := range b.devices {
		if addr >= 0x01 && addr < 0x78 {
			found = append(found, addr)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
	return found, nil
}
