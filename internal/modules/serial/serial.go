// Package serial wraps the console transport in a module so it takes part
// in the lifecycle like every other feature.
package serial

import (
	"xeweos/internal/module"
)

// Port is the Serial_Port module.
type Port struct {
	*module.Module
}

// New creates the Serial_Port module around env.Console.
func New(env *module.Env) *Port {
	p := &Port{}
	p.Module = module.New(env, module.Spec{
		Name:         "Serial_Port",
		Description:  "Allows to send and receive text messages over the USB wire",
		NamespaceKey: "ser",
	}, module.Hooks{
		Required: p.announce,
		Reset:    p.flush,
	})
	return p
}

func (p *Port) announce() {
	p.Logger().Debug("Console attached")
}

// flush drops any input typed before the reset so it is not dispatched
// against the fresh state.
func (p *Port) flush() {
	p.Console().Flush()
}
