package deck

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	ErrConflictingLayerType = errors.New("conflicting layer type definition")
	ErrUnknownLayerType     = errors.New("unknown layer type")
)

// Library is a script the HTML document loads to provide custom layer classes.
type Library struct {
	Name        string `json:"libraryName"`
	ResourceURI string `json:"resourceUri"`
}

// LayerType is a custom layer class made available to the JSON converter.
type LayerType struct {
	Name    string
	Library Library
}

// builtinLayers ship with the deck.gl bundle and never need registering.
var builtinLayers = map[string]struct{}{
	"GeoJsonLayer":     {},
	"ScatterplotLayer": {},
	"PathLayer":        {},
	"PolygonLayer":     {},
	"IconLayer":        {},
	"TextLayer":        {},
	"HexagonLayer":     {},
	"H3HexagonLayer":   {},
	"MVTLayer":         {},
}

func IsBuiltin(name string) bool {
	_, ok := builtinLayers[name]
	return ok
}

// Registry holds custom layer types. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]LayerType
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]LayerType)}
}

// DefaultRegistry is the process-wide registry used by the CLI.
var DefaultRegistry = NewRegistry()

// Register adds a layer type. Registering an identical definition again is a
// no-op; a different definition under the same name is rejected.
func (r *Registry) Register(lt LayerType) error {
	if strings.TrimSpace(lt.Name) == "" {
		return fmt.Errorf("registering layer type: name is required")
	}
	if IsBuiltin(lt.Name) {
		return fmt.Errorf("registering layer type %s: %w", lt.Name, ErrConflictingLayerType)
	}
	if lt.Library.Name == "" || lt.Library.ResourceURI == "" {
		return fmt.Errorf("registering layer type %s: library name and resource uri are required", lt.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[lt.Name]; ok {
		if existing == lt {
			return nil
		}
		return fmt.Errorf("registering layer type %s: %w", lt.Name, ErrConflictingLayerType)
	}
	r.types[lt.Name] = lt
	return nil
}

func (r *Registry) Lookup(name string) (LayerType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lt, ok := r.types[name]
	return lt, ok
}

// Known reports whether a layer of this class can be rendered.
func (r *Registry) Known(name string) bool {
	if IsBuiltin(name) {
		return true
	}
	_, ok := r.Lookup(name)
	return ok
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.types))
}

// Libraries returns the distinct libraries of all registered types, sorted by name.
func (r *Registry) Libraries() []Library {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byName := make(map[string]Library, len(r.types))
	for _, lt := range r.types {
		byName[lt.Library.Name] = lt.Library
	}
	out := make([]Library, 0, len(byName))
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		out = append(out, byName[name])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
