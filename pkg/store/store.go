package store

import (
	"encoding/json"
	"io"

	"github.com/puzpuzpuz/xsync/v4"
)

// Store is the entity load/save boundary supplied by the host. Get returns
// the stored entity and whether it exists; Put overwrites unconditionally.
// Handlers mutate pointer entities in place and Put them back so a
// copy-on-write host implementation stays possible.
type Store interface {
	Get(kind Kind, id string) (any, bool)
	Put(kind Kind, id string, entity any)
}

// Memory is the in-process Store used by tests and by embedders that let the
// host flush state wholesale. Collections are xsync maps so a host may read
// snapshots concurrently with the single-threaded handler loop.
type Memory struct {
	collections map[Kind]*xsync.Map[string, any]
}

// NewMemory builds an empty in-memory store covering every registered kind.
func NewMemory() *Memory {
	collections := make(map[Kind]*xsync.Map[string, any], len(allKinds))
	for _, k := range allKinds {
		collections[k] = xsync.NewMap[string, any]()
	}
	return &Memory{collections: collections}
}

func (m *Memory) collection(kind Kind) *xsync.Map[string, any] {
	c, ok := m.collections[kind]
	if !ok {
		panic("store: unregistered kind " + string(kind))
	}
	return c
}

// Get implements Store.
func (m *Memory) Get(kind Kind, id string) (any, bool) {
	return m.collection(kind).Load(id)
}

// Put implements Store.
func (m *Memory) Put(kind Kind, id string, entity any) {
	m.collection(kind).Store(id, entity)
}

// Len reports the number of entities stored under a kind.
func (m *Memory) Len(kind Kind) int {
	return m.collection(kind).Size()
}

// ForEach visits every entity of a kind. Iteration order is unspecified.
func (m *Memory) ForEach(kind Kind, fn func(id string, entity any) bool) {
	m.collection(kind).Range(fn)
}

// ExportJSON writes the whole store as one JSON document keyed by kind then
// id. Only non-empty kinds appear.
func (m *Memory) ExportJSON(w io.Writer) error {
	dump := make(map[string]map[string]any, len(m.collections))
	for _, k := range allKinds {
		if m.Len(k) == 0 {
			continue
		}
		entities := make(map[string]any, m.Len(k))
		m.ForEach(k, func(id string, entity any) bool {
			entities[id] = entity
			return true
		})
		dump[string(k)] = entities
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

// Get loads and type-asserts an entity. A stored entity of the wrong type
// is treated as absent; kinds are homogeneous by construction.
func Get[T any](s Store, kind Kind, id string) (T, bool) {
	var zero T
	raw, ok := s.Get(kind, id)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// GetOrCreate centralizes the pervasive load-or-default pattern: an existing
// entity is returned untouched (creation-time fields included), otherwise
// the factory's record is stored and returned. The second result reports
// whether a new entity was created.
func GetOrCreate[T any](s Store, kind Kind, id string, factory func() T) (T, bool) {
	if existing, ok := Get[T](s, kind, id); ok {
		return existing, false
	}
	created := factory()
	s.Put(kind, id, created)
	return created, true
}
