// Package buttons binds console command lines to physical buttons.
package buttons

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"xeweos/internal/hal"
	"xeweos/internal/module"
	"xeweos/pkg/ostypes"
)

const (
	keyCount        = "btn_count"
	keyConfigPrefix = "btn_cfg_"
)

type button struct {
	Binding

	flicker    bool
	steady     bool
	lastChange time.Time
}

// Buttons is the module polling bound pins on every loop pass.
type Buttons struct {
	*module.Module

	board      hal.Board
	dispatcher ostypes.Dispatcher
	live       []*button
}

// New creates the Buttons module over board. Call SetDispatcher before the
// first Loop so bound commands have somewhere to go.
func New(env *module.Env, board hal.Board) *Buttons {
	b := &Buttons{board: board}
	b.Module = module.New(env, module.Spec{
		Name:          "Buttons",
		Description:   "Allows to bind CLI cmds to physical buttons",
		NamespaceKey:  "btn",
		CanBeDisabled: true,
		HasCommands:   true,
	}, module.Hooks{
		Regular: b.load,
		Loop:    b.poll,
		Reset:   b.clear,
		Status:  b.status,
	})
	b.AddCommand(module.Command{
		Name:        "add",
		Description: `Add a button mapping: <pin> "<$cmd ...>" <pullup|pulldown> <on_press|on_release|on_change> <debounce_ms>`,
		SampleUsage: `Sample Use: $buttons add 9 "$system reboot" pullup on_press 50`,
		ArgCount:    5,
		Handler:     b.add,
	})
	b.AddCommand(module.Command{
		Name:        "remove",
		Description: "Remove a button mapping by pin",
		SampleUsage: "Sample Use: $buttons remove 9",
		ArgCount:    1,
		Handler:     b.remove,
	})
	return b
}

// SetDispatcher sets where bound command lines are sent.
func (b *Buttons) SetDispatcher(d ostypes.Dispatcher) {
	b.dispatcher = d
}

// Bindings returns the live bindings in the order they were added.
func (b *Buttons) Bindings() []Binding {
	out := make([]Binding, len(b.live))
	for i, btn := range b.live {
		out[i] = btn.Binding
	}
	return out
}

func (b *Buttons) load() {
	b.live = b.live[:0]
	for _, cfg := range b.stored() {
		binding, err := ParseBinding(cfg)
		if err != nil {
			b.Logger().Warn("Skipping stored button", "config", cfg, "error", err)
			continue
		}
		if err := b.attach(binding); err != nil {
			b.Logger().Warn("Skipping stored button", "config", cfg, "error", err)
		}
	}
	b.Logger().Debug("Loaded buttons", "count", len(b.live))
}

func (b *Buttons) attach(binding Binding) error {
	if err := b.board.SetMode(binding.Pin, binding.mode()); err != nil {
		return err
	}
	level, err := b.board.Read(binding.Pin)
	if err != nil {
		return err
	}
	b.live = append(b.live, &button{Binding: binding, flicker: level, steady: level})
	return nil
}

// poll runs the debounce state machine of every live button. A level has to
// hold for longer than the debounce interval before it becomes the steady
// state; each steady edge matching the binding's event dispatches once.
func (b *Buttons) poll() {
	now := b.Env().Now()
	// a dispatched command may remove buttons, so walk a snapshot
	for _, btn := range append([]*button(nil), b.live...) {
		level, err := b.board.Read(btn.Pin)
		if err != nil {
			continue
		}
		if level != btn.flicker {
			btn.lastChange = now
		}
		btn.flicker = level

		if now.Sub(btn.lastChange) <= btn.Debounce || level == btn.steady {
			continue
		}
		btn.steady = level
		if btn.fires(level) {
			b.dispatch(btn.Command)
		}
	}
}

func (b *Buttons) dispatch(line string) {
	if b.dispatcher == nil {
		b.Logger().Warn("No dispatcher; dropping button command", "command", line)
		return
	}
	if err := b.dispatcher.Parse(line); err != nil {
		b.Logger().Debug("Button command rejected", "command", line, "error", err)
	}
}

func (b *Buttons) add(args string) {
	if b.IsDisabled() {
		b.Console().Println("Buttons Module is disabled. Use '$buttons enable'")
		return
	}
	binding, err := ParseBinding(args)
	if err != nil {
		b.Console().Println("Error: Invalid button configuration string.")
		b.Logger().Debug("Rejected button", "args", args, "error", err)
		return
	}
	if b.storedIndex(binding.Pin) >= 0 {
		b.Console().Println(fmt.Sprintf("Error: A button is already configured on pin %d", binding.Pin))
		return
	}
	if err := b.attach(binding); err != nil {
		b.Console().Println("Error: " + err.Error())
		return
	}

	count := b.count()
	b.Store().WriteString(b.NamespaceKey(), configKey(count), binding.String())
	b.Store().WriteUint(b.NamespaceKey(), keyCount, uint64(count+1))
	b.Console().Println("Successfully added button action: " + binding.String())
}

func (b *Buttons) remove(args string) {
	if b.IsDisabled() {
		b.Console().Println("Buttons Module is disabled. Use '$buttons enable'")
		return
	}
	pin, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		b.Console().Println("Error: Invalid pin number provided.")
		return
	}
	idx := b.storedIndex(pin)
	if idx < 0 {
		b.Console().Println(fmt.Sprintf("Error: No button found on pin %d", pin))
		return
	}

	// shift the tail down one slot so indices stay dense
	ns := b.NamespaceKey()
	count := b.count()
	for i := idx; i < count-1; i++ {
		b.Store().WriteString(ns, configKey(i), b.Store().ReadString(ns, configKey(i+1), ""))
	}
	b.Store().Remove(ns, configKey(count-1))
	b.Store().WriteUint(ns, keyCount, uint64(count-1))

	for i, btn := range b.live {
		if btn.Pin == pin {
			b.live = append(b.live[:i], b.live[i+1:]...)
			break
		}
	}
	b.Console().Println(fmt.Sprintf("Successfully removed button on pin %d", pin))
}

func (b *Buttons) clear() {
	ns := b.NamespaceKey()
	for i := 0; i < b.count(); i++ {
		b.Store().Remove(ns, configKey(i))
	}
	b.Store().WriteUint(ns, keyCount, 0)
	b.live = nil
}

func (b *Buttons) status() string {
	if len(b.live) == 0 {
		return "No buttons are currently active in memory."
	}
	var s strings.Builder
	s.WriteString("--- Active Button Instances (Live) ---\n")
	for _, btn := range b.live {
		fmt.Fprintf(&s, "  - Pin: %d, CMD: \"%s\"\n", btn.Pin, btn.Command)
	}
	s.WriteString("------------------------------------")
	return s.String()
}

func (b *Buttons) count() int {
	return int(b.Store().ReadUint(b.NamespaceKey(), keyCount, 0))
}

func (b *Buttons) stored() []string {
	n := b.count()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if cfg := b.Store().ReadString(b.NamespaceKey(), configKey(i), ""); cfg != "" {
			out = append(out, cfg)
		}
	}
	return out
}

// storedIndex returns the slot holding pin's binding, or -1.
func (b *Buttons) storedIndex(pin int) int {
	prefix := strconv.Itoa(pin) + " "
	for i := 0; i < b.count(); i++ {
		if strings.HasPrefix(b.Store().ReadString(b.NamespaceKey(), configKey(i), ""), prefix) {
			return i
		}
	}
	return -1
}

func configKey(i int) string {
	return keyConfigPrefix + strconv.Itoa(i)
}
