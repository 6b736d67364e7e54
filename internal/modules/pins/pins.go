// Package pins gives console access to the board's GPIO, ADC, PWM and I2C.
package pins

import (
	"fmt"
	"math"
	"strconv"

	"xeweos/internal/hal"
	"xeweos/internal/module"
	"xeweos/internal/parser"
)

// Pins is the direct hardware control module.
type Pins struct {
	*module.Module

	board hal.Board
}

// New creates the Pins module over board.
func New(env *module.Env, board hal.Board) *Pins {
	p := &Pins{board: board}
	p.Module = module.New(env, module.Spec{
		Name:          "Pins",
		Description:   "Allows direct hardware control (GPIO, ADC, I2C, PWM)",
		NamespaceKey:  "pns",
		CanBeDisabled: true,
		HasCommands:   true,
	}, module.Hooks{})
	p.addCommands()
	return p
}

func (p *Pins) addCommands() {
	p.AddCommand(module.Command{
		Name:        "gpio_read",
		Description: "Read digital logic level (0 or 1). Configures pin as input.",
		SampleUsage: "Sample Use: $pins gpio_read <pin>",
		ArgCount:    1,
		Handler:     p.gpioRead,
	})
	p.AddCommand(module.Command{
		Name:        "gpio_write",
		Description: "Drive pin HIGH (1) or LOW (0). Configures pin as output.",
		SampleUsage: "Sample Use: $pins gpio_write <pin> <0|1>",
		ArgCount:    2,
		Handler:     p.gpioWrite,
	})
	p.AddCommand(module.Command{
		Name:        "gpio_toggle",
		Description: "Invert the pin level. Forces output mode.",
		SampleUsage: "Sample Use: $pins gpio_toggle <pin>",
		ArgCount:    1,
		Handler:     p.gpioToggle,
	})
	p.AddCommand(module.Command{
		Name:        "gpio_mode",
		Description: "Set IO mode: in, out, in_pullup or in_pulldown",
		SampleUsage: "Sample Use: $pins gpio_mode <pin> <in|out|in_pullup|in_pulldown>",
		ArgCount:    2,
		Handler:     p.gpioMode,
	})
	p.AddCommand(module.Command{
		Name:        "adc_read",
		Description: "Read the raw analog value",
		SampleUsage: "Sample Use: $pins adc_read <pin>",
		ArgCount:    1,
		Handler:     p.adcRead,
	})
	p.AddCommand(module.Command{
		Name:        "pwm_setup",
		Description: "Attach PWM. Freq 1Hz-40MHz, bits 1-16.",
		SampleUsage: "Sample Use: $pins pwm_setup <pin> <freq_hz> <res_bits>",
		ArgCount:    3,
		Handler:     p.pwmSetup,
	})
	p.AddCommand(module.Command{
		Name:        "pwm_write",
		Description: "Set PWM duty. Max value is 2^res_bits - 1.",
		SampleUsage: "Sample Use: $pins pwm_write <pin> <duty_value>",
		ArgCount:    2,
		Handler:     p.pwmWrite,
	})
	p.AddCommand(module.Command{
		Name:        "pwm_stop",
		Description: "Set duty 0; detach 1 also releases the PWM channel",
		SampleUsage: "Sample Use: $pins pwm_stop <pin> <detach:0|1>",
		ArgCount:    2,
		Handler:     p.pwmStop,
	})
	p.AddCommand(module.Command{
		Name:        "i2c_scan",
		Description: "Scan the I2C bus on SDA/SCL for devices (0x01 - 0x77)",
		SampleUsage: "Sample Use: $pins i2c_scan <sda_pin> <scl_pin>",
		ArgCount:    2,
		Handler:     p.i2cScan,
	})
}

func (p *Pins) gpioRead(args string) {
	n, ok := p.ints(args, "<PIN>")
	if !ok {
		return
	}
	if p.check(p.board.SetMode(n[0], hal.ModeInput)) {
		return
	}
	level, err := p.board.Read(n[0])
	if p.check(err) {
		return
	}
	p.Console().Println(bit(level))
}

func (p *Pins) gpioWrite(args string) {
	n, ok := p.ints(args, "<PIN> <LEVEL>")
	if !ok {
		return
	}
	if p.check(p.board.SetMode(n[0], hal.ModeOutput)) || p.check(p.board.Write(n[0], n[1] != 0)) {
		return
	}
	p.Console().Println("ok")
}

func (p *Pins) gpioToggle(args string) {
	n, ok := p.ints(args, "<PIN>")
	if !ok {
		return
	}
	if p.check(p.board.SetMode(n[0], hal.ModeOutput)) {
		return
	}
	level, err := p.board.Read(n[0])
	if p.check(err) || p.check(p.board.Write(n[0], !level)) {
		return
	}
	p.Console().Println(bit(!level))
}

func (p *Pins) gpioMode(args string) {
	fields, err := parser.SplitArgs(args)
	if err != nil || len(fields) != 2 {
		p.Console().Println("Error: Missing <pin> or <mode>")
		return
	}
	pin, err := strconv.Atoi(fields[0])
	if err != nil {
		p.Console().Println("Error: Missing <pin> or <mode>")
		return
	}
	mode, ok := hal.ParsePinMode(fields[1])
	if !ok {
		p.Console().Println("Valid modes: in | in_pullup | in_pulldown | out")
		return
	}
	if p.check(p.board.SetMode(pin, mode)) {
		return
	}
	p.Console().Println("ok")
}

func (p *Pins) adcRead(args string) {
	n, ok := p.ints(args, "<PIN>")
	if !ok {
		return
	}
	raw, err := p.board.ADCRead(n[0])
	if p.check(err) {
		return
	}
	p.Console().Println(strconv.Itoa(raw))
}

func (p *Pins) pwmSetup(args string) {
	n, ok := p.ints(args, "<PIN> <FREQ> <BITS>")
	if !ok {
		return
	}
	freq, ok := u32(n[1])
	if !ok || n[2] < 0 || n[2] > math.MaxUint8 {
		p.Console().Println("PWM attachment failed")
		return
	}
	if err := p.board.PWMAttach(n[0], freq, uint8(n[2])); err != nil {
		p.Console().Println("PWM attachment failed")
		p.Logger().Debug("PWM attach rejected", "pin", n[0], "error", err)
		return
	}
	p.Console().Println("ok")
}

func (p *Pins) pwmWrite(args string) {
	n, ok := p.ints(args, "<PIN> <DUTY>")
	if !ok {
		return
	}
	if n[1] < 0 {
		n[1] = 0
	}
	duty, ok := u32(n[1])
	if !ok {
		p.Console().Println("Error: Required <PIN> <DUTY>")
		return
	}
	if p.check(p.board.PWMWrite(n[0], duty)) {
		return
	}
	p.Console().Println("ok")
}

func (p *Pins) pwmStop(args string) {
	n, ok := p.ints(args, "<PIN> <DETACH>")
	if !ok {
		return
	}
	if p.check(p.board.PWMWrite(n[0], 0)) {
		return
	}
	if n[1] != 0 && p.check(p.board.PWMDetach(n[0])) {
		return
	}
	p.Console().Println("ok")
}

func (p *Pins) i2cScan(args string) {
	n, ok := p.ints(args, "<SDA> <SCL>")
	if !ok {
		return
	}
	found, err := p.board.I2CScan(n[0], n[1])
	if p.check(err) {
		return
	}
	if len(found) == 0 {
		p.Console().Println("No I2C devices found")
		return
	}
	for _, addr := range found {
		p.Console().Println(fmt.Sprintf("0x%02X", addr))
	}
}

// ints parses every argument as a decimal integer, printing usage on failure.
func (p *Pins) ints(args, usage string) ([]int, bool) {
	fields, err := parser.SplitArgs(args)
	if err != nil {
		p.Console().Println("Error: Required " + usage)
		return nil, false
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			p.Console().Println("Error: Required " + usage)
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// u32 narrows v, refusing values a uint32 cannot hold.
func u32(v int) (uint32, bool) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, false
	}
	return uint32(v), true
}

// check prints err and reports whether there was one.
func (p *Pins) check(err error) bool {
	if err == nil {
		return false
	}
	p.Console().Println("Error: " + err.Error())
	return true
}

func bit(high bool) string {
	if high {
		return "1"
	}
	return "0"
}
