// Package module implements the lifecycle every XeWe OS feature unit shares:
// first-boot detection, persisted enablement, one-time init setup, generic
// commands and the dependency cascade between modules.
package module

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"xeweos/internal/logger"
	"xeweos/pkg/ostypes"
)

// Persisted flag keys inside every module namespace.
const (
	KeyNotFirstBoot = "not_first_boot"
	KeyIsEnabled    = "is_enabled"
	KeyInitComplete = "init_complete"
)

// DefaultPromptTimeout bounds setup prompts when Env.PromptTimeout is zero.
const DefaultPromptTimeout = 60 * time.Second

// Env is the shared context handed to every module constructor.
type Env struct {
	Store     ostypes.Store
	Console   ostypes.Transport
	Registry  *Registry
	Restarter ostypes.Restarter
	// Clock defaults to the wall clock when nil.
	Clock ostypes.Clock
	// PromptTimeout bounds every interactive prompt during setup.
	PromptTimeout time.Duration
}

// Timeout returns the prompt timeout, falling back to DefaultPromptTimeout.
func (e *Env) Timeout() time.Duration {
	if e.PromptTimeout <= 0 {
		return DefaultPromptTimeout
	}
	return e.PromptTimeout
}

// Now returns the current time from Clock.
func (e *Env) Now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

// Spec holds the identity and capability flags fixed at construction.
type Spec struct {
	Name              string
	Description       string
	NamespaceKey      string
	RequiresInitSetup bool
	CanBeDisabled     bool
	HasCommands       bool
}

// Hooks are the module-specific phases Begin and the other lifecycle
// operations call into. Any of them may be nil.
type Hooks struct {
	// Required runs on every begin that gets past the enablement checks.
	Required func()
	// Init runs once, until init setup is marked complete.
	Init func()
	// Regular runs instead of Init once init setup is complete.
	Regular func()
	// Common always runs last in Begin.
	Common func()
	// Loop is called once per controller pass while the module is enabled.
	Loop func()
	// Reset clears module-specific state before the generic flags are cleared.
	Reset func()
	// Disable runs after a disable is confirmed, before the reset.
	Disable func()
	// Status returns extra lines appended to the status report.
	Status func() string
}

// Module is one independently enableable unit of functionality.
type Module struct {
	env   *Env
	spec  Spec
	hooks Hooks
	log   *log.Logger

	id       int
	enabled  bool
	commands []Command
}

// New creates a module, registers it with env.Registry and, when it exposes
// commands, adds the generic status/reset/enable/disable commands.
// It panics if the namespace key is empty, too long or already in use.
func New(env *Env, spec Spec, hooks Hooks) *Module {
	m := &Module{
		env:     env,
		spec:    spec,
		hooks:   hooks,
		log:     logger.NewStyledLogger(spec.Name),
		enabled: true,
	}
	if err := env.Registry.Register(m); err != nil {
		panic(fmt.Sprintf("module: %v", err))
	}
	if spec.HasCommands {
		m.registerGenericCommands()
	}
	return m
}

// SetHooks replaces the lifecycle hooks. Modules whose hooks close over the
// module itself construct first and install hooks afterwards.
func (m *Module) SetHooks(hooks Hooks) {
	m.hooks = hooks
}

// Name returns the human-readable module name.
func (m *Module) Name() string { return m.spec.Name }

// Description returns the one-paragraph module description.
func (m *Module) Description() string { return m.spec.Description }

// Group returns the lowercase command group token.
func (m *Module) Group() string { return strings.ToLower(m.spec.Name) }

// NamespaceKey returns the store namespace the module persists under.
func (m *Module) NamespaceKey() string { return m.spec.NamespaceKey }

// ID returns the module's position in construction order.
func (m *Module) ID() int { return m.id }

// HasCommands reports whether the module exposes a command group.
func (m *Module) HasCommands() bool { return m.spec.HasCommands }

// CanBeDisabled reports whether the module may be turned off.
func (m *Module) CanBeDisabled() bool { return m.spec.CanBeDisabled }

// Env returns the shared context the module was built with.
func (m *Module) Env() *Env { return m.env }

// Logger returns the module's component logger.
func (m *Module) Logger() *log.Logger { return m.log }

// Console returns the transport modules print to.
func (m *Module) Console() ostypes.Transport { return m.env.Console }

// Store returns the persistent store.
func (m *Module) Store() ostypes.Store { return m.env.Store }

// IsEnabled reports the in-memory enablement. Modules that cannot be
// disabled are always enabled.
func (m *Module) IsEnabled() bool {
	if !m.spec.CanBeDisabled {
		return true
	}
	return m.enabled
}

// IsDisabled is the negation of IsEnabled.
func (m *Module) IsDisabled() bool {
	return !m.IsEnabled()
}

// InitSetupComplete reports whether one-time init setup has run. Modules
// without an init setup are always complete.
func (m *Module) InitSetupComplete() bool {
	done := m.env.Store.ReadBool(m.spec.NamespaceKey, KeyInitComplete, false)
	return !m.spec.RequiresInitSetup || done
}

// AddRequirement declares that m requires other. other must have been
// constructed before m.
func (m *Module) AddRequirement(other *Module) error {
	return m.env.Registry.addEdge(m.id, other.id)
}

// Requirements returns the modules m directly requires.
func (m *Module) Requirements() []*Module {
	return m.env.Registry.Requirements(m.id)
}

// Dependents returns every module that transitively requires m.
func (m *Module) Dependents() []*Module {
	return m.env.Registry.Dependents(m.id)
}

func (m *Module) requirementsEnabled(verbose bool) bool {
	all := true
	for _, r := range m.Requirements() {
		if r.IsEnabled() {
			continue
		}
		all = false
		if verbose {
			m.env.Console.Printf("%s Module requires %s module; use $%s enable\n", m.spec.Name, r.Name(), r.Group())
		}
	}
	return all
}

// Begin runs the startup sequence once per process start.
func (m *Module) Begin() {
	ns := m.spec.NamespaceKey
	store := m.env.Store
	console := m.env.Console
	logger.Lifecycle(m.spec.Name, "begin")

	if m.spec.RequiresInitSetup {
		console.PrintHeader(capitalize(m.spec.Name) + " Setup")
	}

	firstBoot := !store.ReadBool(ns, KeyNotFirstBoot, false)
	m.enabled = firstBoot || store.ReadBool(ns, KeyIsEnabled, false)

	if m.IsDisabled() {
		console.Printf("%s module disabled; use $%s enable\n", m.spec.Name, m.Group())
		return
	}

	if !m.requirementsEnabled(true) {
		console.Printf("%s requirements not enabled; skipping\n", m.spec.Name)
		m.enabled = false
		store.WriteBool(ns, KeyIsEnabled, false)
		store.WriteBool(ns, KeyNotFirstBoot, true)
		return
	}

	logger.Lifecycle(m.spec.Name, "required")
	run(m.hooks.Required)

	if firstBoot {
		if m.spec.CanBeDisabled {
			console.PrintHeader("Would you like to enable " + capitalize(m.spec.Name) + " module?\n\n" + m.spec.Description)
			m.enabled = console.PromptYesNo("Enable", m.env.Timeout(), true)
			if !m.enabled {
				store.WriteBool(ns, KeyIsEnabled, false)
				store.WriteBool(ns, KeyNotFirstBoot, true)
				logger.Lifecycle(m.spec.Name, "declined")
				return
			}
		}
		store.WriteBool(ns, KeyIsEnabled, true)
		store.WriteBool(ns, KeyNotFirstBoot, true)
	}

	if !m.InitSetupComplete() {
		logger.Lifecycle(m.spec.Name, "init")
		run(m.hooks.Init)
		if m.IsDisabled() {
			// init gave up and turned the module off
			return
		}
		store.WriteBool(ns, KeyInitComplete, true)
	} else {
		logger.Lifecycle(m.spec.Name, "regular")
		run(m.hooks.Regular)
	}

	logger.Lifecycle(m.spec.Name, "common")
	run(m.hooks.Common)
}

// Loop gives the module one cooperative time slice.
func (m *Module) Loop() {
	run(m.hooks.Loop)
}

// Enable turns the module on and restarts so a fresh Begin re-derives
// dependent state. Refused while a requirement is disabled.
func (m *Module) Enable(verbose, restart bool) {
	console := m.env.Console
	if m.IsEnabled() {
		console.Printf("%s module already enabled\n", m.spec.Name)
		return
	}
	if !m.requirementsEnabled(true) {
		console.Printf("%s Module: requirements not enabled; enable them first\n", m.spec.Name)
		return
	}

	m.enabled = true
	m.env.Store.WriteBool(m.spec.NamespaceKey, KeyIsEnabled, true)
	logger.Lifecycle(m.spec.Name, "enabled")
	if verbose {
		console.Printf("%s module enabled.\n", m.spec.Name)
	}
	if restart {
		m.restart(verbose)
	}
}

// Disable turns the module off, resetting every transitive dependent first.
// When verbose, the user must confirm after seeing the dependents listed.
func (m *Module) Disable(verbose, restart bool) {
	console := m.env.Console
	if m.IsDisabled() {
		if verbose {
			console.Printf("%s module already disabled\n", m.spec.Name)
		}
		return
	}
	if !m.spec.CanBeDisabled {
		if verbose {
			console.Printf("%s module can't be disabled\n", m.spec.Name)
		}
		return
	}

	dependents := m.Dependents()
	if verbose {
		msg := "[WARNING]\nDisabling " + m.spec.Name + "\nWill reset it"
		if len(dependents) > 0 {
			names := make([]string, 0, len(dependents))
			for _, d := range dependents {
				names = append(names, d.Name())
			}
			msg += ", and all dependents: " + `\sep` + strings.Join(names, "\n")
		}
		console.PrintHeader(msg)
		if !console.PromptYesNo("OK?", m.env.Timeout(), false) {
			console.Println("Aborted")
			return
		}
	}

	run(m.hooks.Disable)
	for _, d := range dependents {
		if verbose {
			console.Printf("disabled %s module\n", d.Name())
		}
		d.forget(verbose, false)
	}
	if verbose {
		console.Printf("%s module disabled.\n", m.spec.Name)
	}
	m.forget(verbose, false)
	if restart {
		m.restart(verbose)
	}
}

// Reset forgets the module's persisted state. With keepEnabled the module
// stays on and re-runs init setup on the next begin; otherwise it is turned
// off and every transitive dependent is reset first.
func (m *Module) Reset(verbose, restart, keepEnabled bool) {
	if !keepEnabled && m.spec.CanBeDisabled {
		for _, d := range m.Dependents() {
			d.forget(false, false)
		}
	}
	m.forget(verbose, keepEnabled)
	if restart {
		m.restart(verbose)
	}
}

func (m *Module) forget(verbose, keepEnabled bool) {
	run(m.hooks.Reset)
	ns := m.spec.NamespaceKey
	m.env.Store.WriteBool(ns, KeyInitComplete, false)
	if !keepEnabled {
		m.env.Store.WriteBool(ns, KeyIsEnabled, false)
		m.enabled = false
	}
	logger.Lifecycle(m.spec.Name, "reset", "keep_enabled", keepEnabled)
	if verbose {
		m.env.Console.Printf("%s module reset\n", m.spec.Name)
	}
}

func (m *Module) restart(verbose bool) {
	if verbose {
		m.env.Console.Println("Restarting...")
	}
	m.env.Restarter.Restart()
}

// Status returns a summary of the module's state and prints it when verbose.
func (m *Module) Status(verbose bool) string {
	enabled := m.IsEnabled()
	if m.spec.CanBeDisabled {
		enabled = m.env.Store.ReadBool(m.spec.NamespaceKey, KeyIsEnabled, m.enabled)
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	status := m.spec.Name + " module " + state
	if m.hooks.Status != nil {
		if extra := m.hooks.Status(); extra != "" {
			status += "\n" + extra
		}
	}
	if verbose {
		m.env.Console.Println(status)
	}
	return status
}

func run(fn func()) {
	if fn != nil {
		fn()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
