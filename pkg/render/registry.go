package render

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownRenderer is returned by Get for unregistered names.
var ErrUnknownRenderer = errors.New("render: renderer not found")

// Registry looks renderers up by case-insensitive name. It is filled at
// construction and read afterwards.
type Registry struct {
	byName map[string]Renderer
}

// NewRegistry registers each renderer under its Name().
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		if err := r.Register(renderer); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds renderer. Blank and duplicate names are rejected.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	key := rendererKey(renderer.Name())
	switch {
	case key == "":
		return errors.New("render: renderer name is required")
	case r.byName[key] != nil:
		return fmt.Errorf("render: renderer %q already registered", key)
	}
	r.byName[key] = renderer
	return nil
}

// Get returns the renderer registered as name. The error for an unknown name
// lists the available ones.
func (r *Registry) Get(name string) (Renderer, error) {
	if renderer, ok := r.byName[rendererKey(name)]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownRenderer, name, strings.Join(r.List(), ", "))
}

// List returns the registered names in order.
func (r *Registry) List() []string {
	return slices.Sorted(maps.Keys(r.byName))
}

func rendererKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
