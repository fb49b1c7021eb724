package ledger

import (
	"bytes"
	"encoding/json"

	"fingenius/internal/kv"
)

// schemaVersion is written into every stored envelope and into export
// documents so later code can migrate old data deliberately.
const schemaVersion = 1

// envelope is the on-store shape of a collection. Earlier data was stored as
// a bare JSON array; decoding still accepts that layout.
type envelope[T any] struct {
	Version int `json:"version"`
	Records []T `json:"records"`
}

// UnmarshalJSON accepts both the versioned object shape and the legacy bare
// array, so a legacy value decodes in one pass instead of tripping the
// corrupt-value path first.
func (e *envelope[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		e.Version = 0
		return json.Unmarshal(trimmed, &e.Records)
	}
	type plain envelope[T]
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = envelope[T](p)
	return nil
}

// collection is the one copy of the list/add/update/delete machinery shared
// by all six entity managers. A mutation is always a whole-collection
// rewrite: read, change in memory, persist.
type collection[T any] struct {
	store *kv.Adapter
	key   string
	id    func(T) string
}

func newCollection[T any](store *kv.Adapter, key string, id func(T) string) collection[T] {
	return collection[T]{store: store, key: key, id: id}
}

// list returns the stored records, or nil when nothing (readable) is stored.
func (c collection[T]) list() []T {
	records, _ := c.load()
	return records
}

// load returns the stored records and whether the key held a readable value.
// Present-but-empty and absent are distinct: callers that seed defaults must
// only do so for absent.
func (c collection[T]) load() ([]T, bool) {
	var env envelope[T]
	if !c.store.Load(c.key, &env) {
		return nil, false
	}
	return env.Records, true
}

func (c collection[T]) save(records []T) bool {
	return c.store.Save(c.key, envelope[T]{Version: schemaVersion, Records: records})
}

// add appends the finished record and persists.
func (c collection[T]) add(record T) bool {
	return c.save(append(c.list(), record))
}

// get returns the record with the given id.
func (c collection[T]) get(id string) (T, bool) {
	for _, r := range c.list() {
		if c.id(r) == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// update applies fn to the record with the given id and persists. An unknown
// id returns false and leaves the store untouched.
func (c collection[T]) update(id string, fn func(*T)) bool {
	records := c.list()
	for i := range records {
		if c.id(records[i]) == id {
			fn(&records[i])
			return c.save(records)
		}
	}
	return false
}

// remove filters the record out and rewrites the collection. No tombstones.
func (c collection[T]) remove(id string) bool {
	records := c.list()
	for i := range records {
		if c.id(records[i]) == id {
			return c.save(append(records[:i], records[i+1:]...))
		}
	}
	return false
}
