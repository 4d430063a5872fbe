package carto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartomap/internal/deck"
)

type fakeToken struct{}

func (fakeToken) AccessToken() string { return "tok-123" }
func (fakeToken) APIBaseURL() string  { return "https://gcp-us-east1.api.carto.com" }

const airportsSQL = "SELECT geom, name FROM carto-demo-data.demo_tables.airports"

func TestLayerCredentials(t *testing.T) {
	creds := LayerCredentials(fakeToken{})
	assert.Equal(t, Credentials{
		APIVersion:  "v3",
		APIBaseURL:  "https://gcp-us-east1.api.carto.com",
		AccessToken: "tok-123",
	}, creds)
}

func TestNewLayer_ConstructionCompleteness(t *testing.T) {
	creds := LayerCredentials(fakeToken{})
	layer, err := NewLayer(LayerOptions{
		Data:                 airportsSQL,
		Type:                 MapTypeQuery,
		Connection:           ConnectionCartoDW,
		Credentials:          creds,
		FillColor:            []int{238, 77, 90},
		PointRadiusMinPixels: 2.5,
		Pickable:             true,
	})
	require.NoError(t, err)

	assert.Equal(t, "CartoLayer", layer.Type())
	assert.NotEmpty(t, layer.ID())
	assert.Equal(t, []string{
		"connection", "credentials", "data", "getFillColor", "pickable", "pointRadiusMinPixels", "type",
	}, layer.PropNames())

	expect := map[string]any{
		"type":                 "query",
		"data":                 airportsSQL,
		"connection":           "carto_dw",
		"credentials":          creds,
		"getFillColor":         []int{238, 77, 90},
		"pointRadiusMinPixels": 2.5,
		"pickable":             true,
	}
	for name, want := range expect {
		got, ok := layer.Prop(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestNewLayer_Extra(t *testing.T) {
	layer, err := NewLayer(LayerOptions{
		ID:          "roads",
		Data:        "carto-demo-data.demo_tables.roads",
		Type:        MapTypeTable,
		Connection:  "bigquery",
		Credentials: LayerCredentials(fakeToken{}),
		LineColor:   []int{0, 0, 0, 128},
		Extra:       map[string]any{"line_width_min_pixels": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "roads", layer.ID())

	v, ok := layer.Prop("lineWidthMinPixels")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = layer.Prop("pointRadiusMinPixels")
	assert.False(t, ok)
	lc, _ := layer.Prop("getLineColor")
	assert.Equal(t, []int{0, 0, 0, 128}, lc)
}

func TestNewLayer_Validation(t *testing.T) {
	base := LayerOptions{
		Data:        airportsSQL,
		Type:        MapTypeQuery,
		Connection:  ConnectionCartoDW,
		Credentials: LayerCredentials(fakeToken{}),
	}

	noData := base
	noData.Data = " "
	_, err := NewLayer(noData)
	assert.ErrorIs(t, err, ErrMissingData)

	noConn := base
	noConn.Connection = ""
	_, err = NewLayer(noConn)
	assert.ErrorIs(t, err, ErrMissingConnection)

	noCreds := base
	noCreds.Credentials = Credentials{}
	_, err = NewLayer(noCreds)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	badType := base
	badType.Type = "raster"
	_, err = NewLayer(badType)
	assert.Error(t, err)
}

func TestParseMapType(t *testing.T) {
	for in, want := range map[string]MapType{"QUERY": MapTypeQuery, " table ": MapTypeTable, "tileset": MapTypeTileset} {
		got, err := ParseMapType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMapType("")
	assert.Error(t, err)
}

func TestRegisterLayer(t *testing.T) {
	r := deck.NewRegistry()
	require.NoError(t, RegisterLayer(r))
	require.NoError(t, RegisterLayer(r))

	assert.Equal(t, []string{"CartoLayer"}, r.Types())
	assert.Equal(t, []deck.Library{LayerLibrary}, r.Libraries())

	layer, err := NewLayer(LayerOptions{
		Data:        airportsSQL,
		Type:        MapTypeQuery,
		Connection:  ConnectionCartoDW,
		Credentials: LayerCredentials(fakeToken{}),
	})
	require.NoError(t, err)
	scene, err := deck.NewScene(deck.NewViewState(0, 0, 1), []deck.Layer{layer}, deck.WithRegistry(r))
	require.NoError(t, err)
	assert.Equal(t, []deck.Library{LayerLibrary}, scene.Libraries())
}
