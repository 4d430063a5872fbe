package deck

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Scene is a renderable document: layers, an initial view and a base map.
type Scene struct {
	layers      []Layer
	view        ViewState
	mapStyle    string
	mapProvider string
	tooltip     bool
	libraries   []Library
}

type sceneOptions struct {
	mapStyle    string
	mapProvider string
	tooltip     bool
	registry    *Registry
}

type SceneOption func(*sceneOptions)

func WithMapStyle(style string) SceneOption {
	return func(o *sceneOptions) { o.mapStyle = style }
}

func WithMapProvider(provider string) SceneOption {
	return func(o *sceneOptions) { o.mapProvider = provider }
}

func WithTooltip(enabled bool) SceneOption {
	return func(o *sceneOptions) { o.tooltip = enabled }
}

// WithRegistry sets the registry used to resolve custom layer classes.
// DefaultRegistry is used otherwise.
func WithRegistry(r *Registry) SceneOption {
	return func(o *sceneOptions) { o.registry = r }
}

func NewScene(view ViewState, layers []Layer, opts ...SceneOption) (*Scene, error) {
	o := sceneOptions{
		mapStyle:    StyleRoad,
		mapProvider: ProviderCarto,
		tooltip:     true,
		registry:    DefaultRegistry,
	}
	for _, opt := range opts {
		opt(&o)
	}

	for _, l := range layers {
		if !o.registry.Known(l.Type()) {
			return nil, fmt.Errorf("building scene: layer %s: %w: %s", l.ID(), ErrUnknownLayerType, l.Type())
		}
	}

	style, err := ResolveMapStyle(o.mapProvider, o.mapStyle)
	if err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}

	var libs []Library
	for _, l := range layers {
		lt, ok := o.registry.Lookup(l.Type())
		if !ok || slices.Contains(libs, lt.Library) {
			continue
		}
		libs = append(libs, lt.Library)
	}

	return &Scene{
		layers:      slices.Clone(layers),
		view:        view,
		mapStyle:    style,
		mapProvider: o.mapProvider,
		tooltip:     o.tooltip,
		libraries:   libs,
	}, nil
}

func (s *Scene) Layers() []Layer { return slices.Clone(s.layers) }

func (s *Scene) ViewState() ViewState { return s.view }

func (s *Scene) MapStyle() string { return s.mapStyle }

func (s *Scene) Libraries() []Library { return slices.Clone(s.libraries) }

// JSON encodes the scene in the deck.gl JSON format.
func (s *Scene) JSON() ([]byte, error) {
	layers := s.layers
	if layers == nil {
		layers = []Layer{}
	}
	doc := map[string]any{
		"initialViewState": s.view.toJSON(),
		"layers":           layers,
		"mapProvider":      s.mapProvider,
		"mapStyle":         s.mapStyle,
		"views": []map[string]any{
			{"@@type": "MapView", "controller": true},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding scene: %w", err)
	}
	return data, nil
}
