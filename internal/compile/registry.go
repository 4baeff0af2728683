package compile

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrInvalidDefinition is returned when registering a definition without a
// name or destination table.
var ErrInvalidDefinition = errors.New("invalid definition")

// Registry maps destination tables to their mapping object definitions.
// Registering a definition under an existing key replaces it in place, so
// recompiling a rule document keeps the discovery order stable.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	order []string
	sets  map[string]map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
		sets: make(map[string]map[string]string),
	}
}

// Register adds or replaces a definition.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Name == "" || def.Table == "" {
		return errors.Wrap(ErrInvalidDefinition, "definition needs a name and a table")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.register(def)

	return nil
}

func (r *Registry) register(def *Definition) {
	key := def.Key()
	if _, ok := r.defs[key]; !ok {
		r.order = append(r.order, key)
	}

	r.defs[key] = def
}

// RegisterSet registers every definition of a set. Definitions registered
// by an earlier version of the same set that are no longer part of it are
// removed.
func (r *Registry) RegisterSet(set *Set) error {
	if set == nil {
		return errors.Wrap(ErrInvalidDefinition, "nil set")
	}

	for _, def := range set.Definitions {
		if def == nil || def.Name == "" || def.Table == "" {
			return errors.Wrapf(ErrInvalidDefinition, "set %q", set.Name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keep := make(map[string]bool, len(set.Definitions))
	for _, def := range set.Definitions {
		if def.Set == "" {
			def.Set = set.Name
		}

		keep[def.Key()] = true
	}

	r.order = slices.DeleteFunc(r.order, func(key string) bool {
		if r.defs[key].Set != set.Name || keep[key] {
			return false
		}

		delete(r.defs, key)

		return true
	})

	for _, def := range set.Definitions {
		r.register(def)
	}

	r.sets[set.Name] = set.PersonIDs

	return nil
}

// Get returns a definition by key.
func (r *Registry) Get(key string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[key]

	return def, ok
}

// ForTable returns the definitions of a destination table in registration
// order.
func (r *Registry) ForTable(table string) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Definition
	for _, key := range r.order {
		if def := r.defs[key]; def.Table == table {
			out = append(out, def)
		}
	}

	return out
}

// Keys returns all definition keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Tables returns the destination tables that have definitions, sorted.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tables []string
	for _, def := range r.defs {
		if !slices.Contains(tables, def.Table) {
			tables = append(tables, def.Table)
		}
	}

	slices.Sort(tables)

	return tables
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// PersonIDs merges the person identifier columns of all registered sets and
// loose definitions. Sets are merged in name order; the first declaration
// of a source table wins.
func (r *Registry) PersonIDs() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string)
	add := func(m map[string]string) {
		for table, field := range m {
			if _, ok := out[table]; !ok {
				out[table] = field
			}
		}
	}

	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		add(r.sets[name])
	}

	for _, key := range r.order {
		add(r.defs[key].PersonIDs)
	}

	return out
}
