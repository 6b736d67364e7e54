package buttons

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"xeweos/internal/hal"
	"xeweos/internal/parser"
)

// DefaultDebounce applies when a binding omits or garbles its debounce.
const DefaultDebounce = 50 * time.Millisecond

// ErrInvalidBinding is returned for an unparsable binding string.
var ErrInvalidBinding = errors.New("invalid button configuration")

// Pull selects the input resistor and therefore which level means pressed.
type Pull int

const (
	PullUp Pull = iota
	PullDown
)

func (p Pull) String() string {
	if p == PullDown {
		return "pulldown"
	}
	return "pullup"
}

// Event selects which stable edge dispatches the command.
type Event int

const (
	OnPress Event = iota
	OnRelease
	OnChange
)

func (e Event) String() string {
	switch e {
	case OnRelease:
		return "on_release"
	case OnChange:
		return "on_change"
	default:
		return "on_press"
	}
}

// Binding maps a pin to the command line it dispatches.
type Binding struct {
	Pin      int
	Command  string
	Pull     Pull
	Event    Event
	Debounce time.Duration
}

// ParseBinding reads `<pin> "<$cmd>" [pullup|pulldown] [on_press|on_release|on_change] [debounce_ms]`.
// Unknown pull or event words fall back to pullup and on_press.
func ParseBinding(s string) (Binding, error) {
	tokens, err := parser.Tokenize(strings.TrimSpace(s))
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %v", ErrInvalidBinding, err)
	}
	if len(tokens) < 2 {
		return Binding{}, fmt.Errorf("%w: need a pin and a command", ErrInvalidBinding)
	}

	pin, err := strconv.Atoi(tokens[0].Value)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: pin %q", ErrInvalidBinding, tokens[0].Value)
	}
	if err := hal.CheckPin(pin); err != nil {
		return Binding{}, fmt.Errorf("%w: %v", ErrInvalidBinding, err)
	}
	if tokens[1].Value == "" {
		return Binding{}, fmt.Errorf("%w: empty command", ErrInvalidBinding)
	}

	b := Binding{Pin: pin, Command: tokens[1].Value, Debounce: DefaultDebounce}
	if len(tokens) > 2 && tokens[2].Value == "pulldown" {
		b.Pull = PullDown
	}
	if len(tokens) > 3 {
		switch tokens[3].Value {
		case "release", "on_release":
			b.Event = OnRelease
		case "change", "on_change":
			b.Event = OnChange
		}
	}
	if len(tokens) > 4 {
		if ms, err := strconv.ParseUint(tokens[4].Value, 10, 32); err == nil {
			b.Debounce = time.Duration(ms) * time.Millisecond
		}
	}
	return b, nil
}

// String renders the binding in the form ParseBinding reads.
func (b Binding) String() string {
	return fmt.Sprintf(`%d "%s" %s %s %d`, b.Pin, b.Command, b.Pull, b.Event, b.Debounce.Milliseconds())
}

func (b Binding) mode() hal.PinMode {
	if b.Pull == PullDown {
		return hal.ModeInputPullDown
	}
	return hal.ModeInputPullUp
}

// pressed reports whether level is the pressed level for this binding.
func (b Binding) pressed(level bool) bool {
	if b.Pull == PullUp {
		return !level
	}
	return level
}

func (b Binding) fires(level bool) bool {
	switch b.Event {
	case OnChange:
		return true
	case OnRelease:
		return !b.pressed(level)
	default:
		return b.pressed(level)
	}
}
