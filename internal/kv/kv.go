// Package kv provides the persistent key/value store the record collections
// live on: a small Store interface with memory, file and sqlite backends,
// and an Adapter that layers the defensive save/load contract on top.
package kv

import (
	"encoding/json"
	"log/slog"
	"reflect"
)

// Store is the minimal capability a backend must provide. Every operation is
// a single bounded read or write; there is no cancellation concept at this
// layer.
type Store interface {
	// Get returns the raw value under key and whether the key exists.
	Get(key string) (string, bool, error)

	// Set writes value under key, replacing any previous value wholesale.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

const probeKey = "fingenius_probe"

// Adapter wraps a Store with the typed save/load contract the collection
// managers rely on. No method ever panics or returns an error: failures are
// reported as booleans and logged, and reads fall back to the caller's
// default on both absence and corruption.
type Adapter struct {
	store Store
	owned []string
}

// NewAdapter returns an adapter owning the given fixed key set. Clear only
// ever touches those keys.
func NewAdapter(store Store, ownedKeys []string) *Adapter {
	return &Adapter{store: store, owned: append([]string(nil), ownedKeys...)}
}

// Save serializes v to JSON and writes it under key. Returns false (and logs
// a diagnostic) when serialization or the write fails.
func (a *Adapter) Save(key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to serialize value", "key", key, "error", err)
		return false
	}
	if err := a.store.Set(key, string(raw)); err != nil {
		slog.Error("Failed to persist value", "key", key, "error", err)
		return false
	}
	return true
}

// Load reads the value under key into out (a pointer). When the key is
// absent or the stored text does not parse, out is left exactly as the
// caller supplied it — the decode happens into a scratch value first, so a
// half-parsed document can never leak out. The scratch starts from the
// caller's value, so fields missing from the stored document keep their
// defaults (this is what merges defaults underneath stored settings).
func (a *Adapter) Load(key string, out any) bool {
	raw, ok, err := a.store.Get(key)
	if err != nil {
		slog.Error("Failed to read value", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}

	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		slog.Error("Load requires a non-nil pointer destination", "key", key)
		return false
	}
	scratch := reflect.New(dst.Elem().Type())
	scratch.Elem().Set(dst.Elem())
	if err := json.Unmarshal([]byte(raw), scratch.Interface()); err != nil {
		slog.Warn("Stored value is corrupt, using default", "key", key, "error", err)
		return false
	}
	dst.Elem().Set(scratch.Elem())
	return true
}

// Clear removes every key this adapter owns. Other data sharing the backend
// is untouched.
func (a *Adapter) Clear() {
	for _, key := range a.owned {
		if err := a.store.Delete(key); err != nil {
			slog.Error("Failed to clear key", "key", key, "error", err)
		}
	}
}

// Available probes the backend with a throwaway write/delete. Callers use a
// false result to report that persistence is disabled.
func (a *Adapter) Available() bool {
	if err := a.store.Set(probeKey, "1"); err != nil {
		return false
	}
	if err := a.store.Delete(probeKey); err != nil {
		return false
	}
	return true
}
