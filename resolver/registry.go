package resolver

import (
	"sort"
	"sync"

	"github.com/goliatone/go-chain"
	"github.com/goliatone/go-errors"
)

// UnitInfo is exported metadata for one registered unit: its identity and
// declared context extension shape.
type UnitInfo struct {
	Name   string            `json:"name"`
	Fields []chain.FieldSpec `json:"fields,omitempty"`
}

// Registry holds constructed middleware unit instances by identity. Units
// arrive pre-built; construction, lifetime and dependency resolution belong
// to the caller's container.
type Registry struct {
	mu    sync.RWMutex
	units map[string]chain.Unit
}

// NewRegistry creates an empty unit registry.
func NewRegistry() *Registry {
	return &Registry{
		units: make(map[string]chain.Unit),
	}
}

// Register stores units under their declared names. Registration fails on
// nil units, empty names, and identity conflicts.
func (r *Registry) Register(units ...chain.Unit) error {
	for _, unit := range units {
		if unit == nil {
			return errors.New("unit cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_UNIT")
		}

		name := unit.Name()
		if name == "" {
			return errors.New("unit name required", errors.CategoryBadInput).
				WithTextCode("UNIT_NAME_REQUIRED")
		}

		r.mu.Lock()
		if _, exists := r.units[name]; exists {
			r.mu.Unlock()
			return errors.New("unit already registered", errors.CategoryConflict).
				WithTextCode("UNIT_ALREADY_REGISTERED").
				WithMetadata(map[string]any{"unit": name})
		}
		r.units[name] = unit
		r.mu.Unlock()
	}
	return nil
}

// Lookup returns the unit registered under name.
func (r *Registry) Lookup(name string) (chain.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unit, ok := r.units[name]
	return unit, ok
}

// Build maps resolved identities to unit instances in order. It fails fast
// on the first identity the registry does not know; a chain referencing an
// unregistered unit is a programming error surfaced at registration, not at
// call time.
func (r *Registry) Build(names ...string) ([]chain.Unit, error) {
	if len(names) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]chain.Unit, 0, len(names))
	for _, name := range names {
		unit, ok := r.units[name]
		if !ok {
			return nil, chain.UnitNotRegistered(name)
		}
		units = append(units, unit)
	}
	return units, nil
}

// Units returns metadata for all registered units sorted by name.
func (r *Registry) Units() []UnitInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]UnitInfo, 0, len(r.units))
	for name, unit := range r.units {
		out = append(out, UnitInfo{
			Name:   name,
			Fields: chain.UnitFields(unit),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
