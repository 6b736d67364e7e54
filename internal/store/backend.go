// Package store persists module flags and settings.
//
// A Backend is a raw namespaced byte store; Prefs layers the typed,
// never-failing reads and writes modules see through ostypes.Store.
package store

import (
	"errors"
	"sync"
)

// ErrClosed is returned by a backend used after Close.
var ErrClosed = errors.New("store is closed")

// Backend is a namespaced key/value byte store.
type Backend interface {
	// Get returns the value for key in ns. found is false when either the
	// namespace or the key does not exist.
	Get(ns, key string) (value []byte, found bool, err error)
	Put(ns, key string, value []byte) error
	Delete(ns, key string) error
	// Clear erases every namespace.
	Clear() error
	// Dump returns a snapshot of every namespace.
	Dump() (map[string]map[string]string, error)
	Close() error
}

// MemoryBackend keeps everything in process memory. It backs tests and
// the --ephemeral run mode.
type MemoryBackend struct {
	mu     sync.RWMutex
	data   map[string]map[string][]byte
	closed bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string][]byte)}
}

// Get implements Backend.
func (m *MemoryBackend) Get(ns, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[ns][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put implements Backend.
func (m *MemoryBackend) Put(ns, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	bucket, ok := m.data[ns]
	if !ok {
		bucket = make(map[string][]byte)
		m.data[ns] = bucket
	}
	bucket[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(ns, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data[ns], key)
	return nil
}

// Clear implements Backend.
func (m *MemoryBackend) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data = make(map[string]map[string][]byte)
	return nil
}

// Dump implements Backend.
func (m *MemoryBackend) Dump() (map[string]map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make(map[string]map[string]string, len(m.data))
	for ns, bucket := range m.data {
		if len(bucket) == 0 {
			continue
		}
		entries := make(map[string]string, len(bucket))
		for k, v := range bucket {
			entries[k] = string(v)
		}
		out[ns] = entries
	}
	return out, nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
