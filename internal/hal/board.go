// Package hal defines the hardware collaborators modules drive (GPIO, ADC,
// PWM, I2C and the WiFi radio) together with in-memory simulations used on
// the host and in tests.
package hal

import (
	"errors"
	"fmt"
	"strings"
)

// Hardware errors.
var (
	ErrInvalidPin    = errors.New("invalid pin")
	ErrPWMNotActive  = errors.New("pwm not attached")
	ErrPWMParameters = errors.New("pwm parameters out of range")
)

// MaxPin is the highest GPIO number the simulated board exposes.
const MaxPin = 48

// PinMode configures a GPIO.
type PinMode int

const (
	ModeInput PinMode = iota
	ModeOutput
	ModeInputPullUp
	ModeInputPullDown
)

var pinModeNames = map[PinMode]string{
	ModeInput:         "in",
	ModeOutput:        "out",
	ModeInputPullUp:   "in_pullup",
	ModeInputPullDown: "in_pulldown",
}

func (m PinMode) String() string {
	if name, ok := pinModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("PinMode(%d)", int(m))
}

// ParsePinMode accepts in, out, in_pullup and in_pulldown.
func ParsePinMode(s string) (PinMode, bool) {
	for mode, name := range pinModeNames {
		if strings.EqualFold(name, s) {
			return mode, true
		}
	}
	return 0, false
}

// Board is the GPIO/ADC/PWM/I2C surface of the device.
type Board interface {
	SetMode(pin int, mode PinMode) error
	Read(pin int) (bool, error)
	Write(pin int, high bool) error
	ADCRead(pin int) (int, error)

	PWMAttach(pin int, freqHz uint32, bits uint8) error
	PWMWrite(pin int, duty uint32) error
	PWMDetach(pin int) error

	// I2CScan probes addresses 0x01..0x77 on the bus formed by sda and scl
	// and returns the ones that acknowledged.
	I2CScan(sda, scl int) ([]uint8, error)
}

// CheckPin validates a pin number.
func CheckPin(pin int) error {
	if pin < 0 || pin > MaxPin {
		return fmt.Errorf("pin %d: %w", pin, ErrInvalidPin)
	}
	return nil
}
