package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrRendererNotFound is returned when no renderer answers to a name.
	ErrRendererNotFound = errors.New("render: renderer not found")
	// ErrRendererExists is returned when a second renderer claims a name.
	ErrRendererExists = errors.New("render: renderer already registered")
)

// Registry maps output names ("json", "html", ...) to the renderers that
// turn a form's Node tree into bytes. The orchestrator resolves
// Request.Renderer against it, which is how the CLI --renderer flag picks
// an output.
// NewRegistry starts with the JSON tree dump so every registry can serve at
// least one output.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
}

// NewRegistry returns a registry holding JSONRenderer.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Renderer)}
	r.MustRegister(JSONRenderer{})
	return r
}

// Register makes renderer available under renderer.Name().
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: nil renderer")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: %T has an empty name", renderer)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("%w: %q", ErrRendererExists, name)
	}
	r.byName[name] = renderer
	return nil
}

// MustRegister is Register for wiring done at construction time.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the renderer registered as name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	return renderer, nil
}

// List returns the registered output names in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Has reports whether name resolves.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}
