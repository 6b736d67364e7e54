// Package ostypes defines the collaborator interfaces shared by every XeWe OS module.
// Concrete implementations live in internal/store and internal/transport; modules
// depend only on these contracts.
package ostypes

import "time"

// Store is the persistent key-value store every module keeps its flags and
// settings in. Reads never fail: when the backend cannot be reached the
// caller-supplied default is returned and the failure is logged.
type Store interface {
	ReadBool(ns, key string, def bool) bool
	ReadString(ns, key, def string) string
	ReadUint(ns, key string, def uint64) uint64

	WriteBool(ns, key string, value bool)
	WriteString(ns, key, value string)
	WriteUint(ns, key string, value uint64)

	Remove(ns, key string)
}

// Transport is the line-oriented console the dispatcher reads commands from
// and every module writes diagnostics to.
type Transport interface {
	// HasLine reports whether a completed input line is waiting. It never blocks.
	HasLine() bool
	// ReadLine returns the pending line, or "" when none is waiting.
	ReadLine() string

	Print(text string)
	Println(text string)
	Printf(format string, args ...any)
	// PrintHeader renders text inside a boxed header. "\sep" splits sections.
	PrintHeader(text string)
	// PrintTable renders rows as a boxed grid under an optional title.
	PrintTable(rows [][]string, title string)

	// PromptYesNo asks a y/n question and waits at most timeout for an answer.
	// def is returned when nothing usable arrives in time.
	PromptYesNo(prompt string, timeout time.Duration, def bool) bool
	// PromptLine asks for a free-form line. ok is false on timeout.
	PromptLine(prompt string, timeout time.Duration, def string) (line string, ok bool)

	// Flush drops any input that arrived but was not consumed.
	Flush()
}

// Restarter requests a restart of the host process. A restart is a fresh
// begin pass over the same persisted store, not a failure.
type Restarter interface {
	Restart()
}

// Dispatcher turns one command line into an invoked handler or a diagnostic.
type Dispatcher interface {
	Parse(line string) error
}

// Clock supplies wall time. Tests substitute a deterministic clock.
type Clock interface {
	Now() time.Time
}
