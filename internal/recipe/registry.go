package recipe

import (
	"sort"

	"github.com/ziadkadry99/bizmate/internal/errs"
)

// Registry is the static mapping from recipe id to definition.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// DefaultRegistry returns a registry with all built-in recipes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(BusinessSnapshot())
	r.Register(CompanyBrief())
	r.Register(WeeklyPriorities())
	return r
}

// Register adds a definition. Later registrations with the same id
// overwrite earlier ones.
func (r *Registry) Register(def *Definition) {
	r.defs[def.ID] = def
}

// Get returns the definition for an id.
func (r *Registry) Get(id string) (*Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "recipe", ID: id}
	}
	return def, nil
}

// List returns all definitions ordered by id.
func (r *Registry) List() []*Definition {
	defs := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}
