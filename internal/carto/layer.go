package carto

import (
	"errors"
	"fmt"
	"strings"

	"cartomap/internal/deck"
)

// MapType selects how a CartoLayer interprets its data.
type MapType string

const (
	MapTypeQuery   MapType = "query"
	MapTypeTable   MapType = "table"
	MapTypeTileset MapType = "tileset"
)

func ParseMapType(s string) (MapType, error) {
	switch t := MapType(strings.ToLower(strings.TrimSpace(s))); t {
	case MapTypeQuery, MapTypeTable, MapTypeTileset:
		return t, nil
	default:
		return "", fmt.Errorf("unknown map type %q", s)
	}
}

// Connection names a data-warehouse connection configured in CARTO.
type Connection string

const ConnectionCartoDW Connection = "carto_dw"

const LayerTypeName = "CartoLayer"

var LayerLibrary = deck.Library{
	Name:        "CartoLayerLibrary",
	ResourceURI: "https://cdn.jsdelivr.net/npm/@deck.gl/carto@~8.9.*/dist.min.js",
}

// RegisterLayer makes CartoLayer available to scenes built against r.
// Calling it more than once is harmless.
func RegisterLayer(r *deck.Registry) error {
	return r.Register(deck.LayerType{Name: LayerTypeName, Library: LayerLibrary})
}

var (
	ErrMissingData        = errors.New("layer data is required")
	ErrMissingConnection  = errors.New("layer connection is required")
	ErrMissingCredentials = errors.New("layer credentials are required")
)

type LayerOptions struct {
	ID                   string
	Data                 string
	Type                 MapType
	Connection           Connection
	Credentials          Credentials
	FillColor            []int
	LineColor            []int
	PointRadiusMinPixels float64
	Pickable             bool
	// Extra carries any further deck.gl props, in snake_case or camelCase.
	Extra map[string]any
}

func NewLayer(opts LayerOptions) (deck.Layer, error) {
	if strings.TrimSpace(opts.Data) == "" {
		return deck.Layer{}, ErrMissingData
	}
	if opts.Connection == "" {
		return deck.Layer{}, ErrMissingConnection
	}
	if opts.Credentials.AccessToken == "" {
		return deck.Layer{}, ErrMissingCredentials
	}
	mapType, err := ParseMapType(string(opts.Type))
	if err != nil {
		return deck.Layer{}, err
	}

	props := make(map[string]any, len(opts.Extra)+7)
	for k, v := range opts.Extra {
		props[k] = v
	}
	props["data"] = opts.Data
	props["type"] = string(mapType)
	props["connection"] = string(opts.Connection)
	props["credentials"] = opts.Credentials
	props["pickable"] = opts.Pickable
	if len(opts.FillColor) > 0 {
		props["getFillColor"] = opts.FillColor
	}
	if len(opts.LineColor) > 0 {
		props["getLineColor"] = opts.LineColor
	}
	if opts.PointRadiusMinPixels > 0 {
		props["pointRadiusMinPixels"] = opts.PointRadiusMinPixels
	}

	return deck.NewLayer(LayerTypeName, opts.ID, props), nil
}
