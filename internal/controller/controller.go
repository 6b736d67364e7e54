// Package controller composes the XeWe OS modules in their fixed order and
// drives the cooperative loop.
package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"xeweos/internal/hal"
	"xeweos/internal/logger"
	"xeweos/internal/module"
	"xeweos/internal/modules/buttons"
	"xeweos/internal/modules/nvs"
	"xeweos/internal/modules/pins"
	"xeweos/internal/modules/serial"
	"xeweos/internal/modules/system"
	"xeweos/internal/modules/web"
	"xeweos/internal/modules/wifi"
	"xeweos/internal/parser"
	"xeweos/internal/store"
	"xeweos/pkg/ostypes"
)

// ErrRestart is returned by Run when a module asked for a restart. The host
// should build a fresh Controller over the same store and begin again.
var ErrRestart = errors.New("restart requested")

const defaultIdleSleep = 10 * time.Millisecond

// Settings are the tunables the host passes through to the modules.
type Settings struct {
	DeviceName        string
	PromptTimeout     time.Duration
	WebAddr           string
	ReconnectInterval time.Duration
	// IdleSleep is the pause between loop passes in Run.
	IdleSleep time.Duration
}

// Deps are the collaborators shared by every module.
type Deps struct {
	Store   *store.Prefs
	Console ostypes.Transport
	Board   hal.Board
	Radio   hal.Radio
	// Clock defaults to the wall clock when nil.
	Clock ostypes.Clock
}

// Controller owns one instance of every module.
type Controller struct {
	env       *module.Env
	settings  Settings
	restartRq atomic.Bool

	Serial  *serial.Port
	Nvs     *nvs.Nvs
	System  *system.System
	Parser  *parser.CommandParser
	Pins    *pins.Pins
	Buttons *buttons.Buttons
	Wifi    *wifi.Wifi
	Web     *web.Web
}

var _ ostypes.Restarter = (*Controller)(nil)

// New constructs every module. Construction order fixes module IDs, which
// bound requirement declarations and order every loop pass.
func New(settings Settings, deps Deps) *Controller {
	if settings.IdleSleep <= 0 {
		settings.IdleSleep = defaultIdleSleep
	}
	c := &Controller{settings: settings}
	c.env = &module.Env{
		Store:         deps.Store,
		Console:       deps.Console,
		Registry:      module.NewRegistry(),
		Restarter:     c,
		Clock:         deps.Clock,
		PromptTimeout: settings.PromptTimeout,
	}

	c.Serial = serial.New(c.env)
	c.Nvs = nvs.New(c.env, deps.Store)
	c.System = system.New(c.env, system.Options{
		DefaultName: settings.DeviceName,
		MAC:         deps.Radio.MAC(),
	})
	c.Parser = parser.New(c.env)
	c.Pins = pins.New(c.env, deps.Board)
	c.Buttons = buttons.New(c.env, deps.Board)
	c.Wifi = wifi.New(c.env, deps.Radio, wifi.Options{
		ReconnectInterval: settings.ReconnectInterval,
		Hostname:          c.System.DeviceName,
	})
	c.Web = web.New(c.env, web.Options{
		Addr:    settings.WebAddr,
		LocalIP: c.Wifi.LocalIP,
	})

	c.Buttons.SetDispatcher(c.Parser)
	c.Web.SetDispatcher(c.Parser)
	return c
}

// Env returns the environment shared by the modules.
func (c *Controller) Env() *module.Env {
	return c.env
}

// Begin runs every module's startup sequence, the parser last. On the
// device's very first boot it restarts once setup is done.
func (c *Controller) Begin() {
	firstDeviceBoot := !c.System.InitSetupComplete()
	logger.Info("Controller begin", "first_device_boot", firstDeviceBoot)

	c.Serial.Begin()
	c.Nvs.Begin()
	c.System.Begin()
	c.Pins.Begin()
	c.Buttons.Begin()
	c.Wifi.Begin()
	if err := c.Web.AddRequirement(c.Wifi.Module); err != nil {
		logger.Error("Failed to declare requirement", "module", c.Web.Name(), "error", err)
	}
	c.Web.Begin()
	c.Parser.Begin()

	if firstDeviceBoot {
		c.env.Console.PrintHeader("Initial Setup Complete")
		c.System.Restart()
		return
	}
	c.env.Console.PrintHeader("System Setup Complete")
}

// Loop runs one cooperative pass: every enabled module's loop in
// construction order, then at most one pending console line.
func (c *Controller) Loop() {
	for _, m := range c.env.Registry.Modules() {
		if m.IsEnabled() {
			m.Loop()
		}
	}
	if c.env.Console.HasLine() {
		// diagnostics already went to the console
		_ = c.Parser.Parse(c.env.Console.ReadLine())
	}
}

// Run repeats Loop until ctx ends, returning nil, or until a restart is
// requested, returning ErrRestart.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.settings.IdleSleep)
	defer ticker.Stop()
	for {
		if c.RestartRequested() {
			return ErrRestart
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		c.Loop()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Restart implements ostypes.Restarter. The restart happens when Run
// notices the request.
func (c *Controller) Restart() {
	logger.Info("Restart requested")
	c.restartRq.Store(true)
}

// RestartRequested reports whether a module asked for a restart.
func (c *Controller) RestartRequested() bool {
	return c.restartRq.Load()
}

// Close releases resources the modules hold across loop passes.
func (c *Controller) Close() {
	c.Web.Close()
}
