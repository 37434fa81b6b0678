package bench

import "fmt"

// Registry holds command definitions indexed by name. It is read-only after
// construction.
type Registry struct {
	order  []string
	byName map[string]CommandDefinition
}

// NewRegistry builds a Registry from the given definitions, preserving their
// order for All.
func NewRegistry(defs ...CommandDefinition) (*Registry, error) {
	r := &Registry{byName: make(map[string]CommandDefinition, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("command definition has no name")
		}
		if d.Transform == nil {
			return nil, fmt.Errorf("command %q has no transform", d.Name)
		}
		if _, ok := r.byName[d.Name]; ok {
			return nil, fmt.Errorf("duplicate command: %s", d.Name)
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (CommandDefinition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// All returns every definition in registration order.
func (r *Registry) All() []CommandDefinition {
	defs := make([]CommandDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.byName[name])
	}
	return defs
}
