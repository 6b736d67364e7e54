package store

import (
	"strconv"

	"xeweos/internal/logger"
	"xeweos/pkg/ostypes"
)

// Prefs adapts a Backend to ostypes.Store. Values are stored as text; a
// backend failure or an unparsable value yields the caller's default.
type Prefs struct {
	backend Backend
}

var _ ostypes.Store = (*Prefs)(nil)

// NewPrefs wraps backend.
func NewPrefs(backend Backend) *Prefs {
	return &Prefs{backend: backend}
}

// NewMemoryPrefs returns Prefs over a fresh MemoryBackend.
func NewMemoryPrefs() *Prefs {
	return NewPrefs(NewMemoryBackend())
}

// Backend returns the underlying backend.
func (p *Prefs) Backend() Backend {
	return p.backend
}

// ReadBool implements ostypes.Store.
func (p *Prefs) ReadBool(ns, key string, def bool) bool {
	raw, ok := p.read(ns, key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("Stored value is not a bool", "ns", ns, "key", key, "value", raw)
		return def
	}
	return v
}

// ReadString implements ostypes.Store.
func (p *Prefs) ReadString(ns, key, def string) string {
	raw, ok := p.read(ns, key)
	if !ok {
		return def
	}
	return raw
}

// ReadUint implements ostypes.Store.
func (p *Prefs) ReadUint(ns, key string, def uint64) uint64 {
	raw, ok := p.read(ns, key)
	if !ok {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		logger.Warn("Stored value is not an unsigned integer", "ns", ns, "key", key, "value", raw)
		return def
	}
	return v
}

// WriteBool implements ostypes.Store.
func (p *Prefs) WriteBool(ns, key string, value bool) {
	p.write(ns, key, strconv.FormatBool(value))
}

// WriteString implements ostypes.Store.
func (p *Prefs) WriteString(ns, key, value string) {
	p.write(ns, key, value)
}

// WriteUint implements ostypes.Store.
func (p *Prefs) WriteUint(ns, key string, value uint64) {
	p.write(ns, key, strconv.FormatUint(value, 10))
}

// Remove implements ostypes.Store.
func (p *Prefs) Remove(ns, key string) {
	logger.StoreOperation("remove", ns, key, nil)
	if err := p.backend.Delete(ns, key); err != nil {
		logger.Error("Store remove failed", "ns", ns, "key", key, "error", err)
	}
}

// EraseAll removes every namespace.
func (p *Prefs) EraseAll() {
	logger.StoreOperation("erase", "*", "*", nil)
	if err := p.backend.Clear(); err != nil {
		logger.Error("Store erase failed", "error", err)
	}
}

func (p *Prefs) read(ns, key string) (string, bool) {
	v, found, err := p.backend.Get(ns, key)
	if err != nil {
		logger.Error("Store read failed", "ns", ns, "key", key, "error", err)
		return "", false
	}
	if !found {
		return "", false
	}
	logger.StoreOperation("read", ns, key, string(v))
	return string(v), true
}

func (p *Prefs) write(ns, key, value string) {
	logger.StoreOperation("write", ns, key, value)
	if err := p.backend.Put(ns, key, []byte(value)); err != nil {
		logger.Error("Store write failed", "ns", ns, "key", key, "error", err)
	}
}
