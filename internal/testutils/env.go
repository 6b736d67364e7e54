package testutils

import (
	"sync"
	"time"

	"xeweos/internal/module"
	"xeweos/internal/store"
)

// FakeRestarter records restart requests.
type FakeRestarter struct {
	mu    sync.Mutex
	count int
}

// Restart implements ostypes.Restarter.
func (r *FakeRestarter) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

// Count returns how many restarts were requested.
func (r *FakeRestarter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Harness bundles a module.Env with typed handles on its fakes.
type Harness struct {
	Env       *module.Env
	Store     *store.Prefs
	Console   *FakeConsole
	Restarter *FakeRestarter
	Clock     *FakeClock
}

// NewHarness creates a fresh environment over an empty in-memory store.
func NewHarness() *Harness {
	return NewHarnessWithStore(store.NewMemoryPrefs())
}

// NewHarnessWithStore creates a fresh environment over prefs, e.g. to
// simulate a restart against the same persisted state.
func NewHarnessWithStore(prefs *store.Prefs) *Harness {
	h := &Harness{
		Store:     prefs,
		Console:   NewFakeConsole(),
		Restarter: &FakeRestarter{},
		Clock:     NewFakeClock(),
	}
	h.Env = &module.Env{
		Store:         h.Store,
		Console:       h.Console,
		Registry:      module.NewRegistry(),
		Restarter:     h.Restarter,
		Clock:         h.Clock,
		PromptTimeout: 10 * time.Millisecond,
	}
	return h
}

// Reboot returns a new harness over the same store, as a restart would see it.
func (h *Harness) Reboot() *Harness {
	next := NewHarnessWithStore(h.Store)
	next.Clock = h.Clock
	next.Env.Clock = h.Clock
	return next
}
