package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Factory creates a copywriter instance.
type Factory func() (Copywriter, error)

// Registry maps copywriter names to factory functions.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named copywriter factory. Overwrites if name already exists.
// Panics if name is empty or f is nil (programmer error).
func (r *Registry) Register(name string, f Factory) {
	if name == "" {
		panic("provider: Register called with empty name")
	}
	if f == nil {
		panic("provider: Register called with nil factory")
	}
	r.factories[name] = f
}

// New instantiates a copywriter by name.
// Returns an error if the name is not registered or the factory fails.
func (r *Registry) New(name string) (Copywriter, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &UnknownCopywriterError{
			Name:      name,
			Available: r.Available(),
		}
	}
	cw, err := f()
	if err != nil {
		return nil, fmt.Errorf("provider: copywriter factory %q: %w", name, err)
	}
	return cw, nil
}

// Available returns registered copywriter names in sorted order.
func (r *Registry) Available() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownCopywriterError indicates a copywriter name is not registered.
type UnknownCopywriterError struct {
	Name      string
	Available []string
}

func (e *UnknownCopywriterError) Error() string {
	return fmt.Sprintf("provider: unknown copywriter %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
