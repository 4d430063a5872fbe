package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cartomap/internal/auth"
	"cartomap/internal/carto"
	"cartomap/internal/config"
	"cartomap/internal/deck"
	"cartomap/internal/warehouse"
)

var ErrNoAuthenticator = errors.New("an authenticator is required for CARTO layers")

type OpenQuerierFunc func(ctx context.Context, dsn string) (warehouse.Querier, error)

// Deps are the collaborators a render run delegates to.
type Deps struct {
	Authenticator auth.Authenticator
	Registry      *deck.Registry
	Browser       deck.Browser
	OpenQuerier   OpenQuerierFunc
	Logger        *slog.Logger
}

type Result struct {
	Path   string
	Layers int
}

// Run renders cfg to its output file. Steps run in order and the first
// failure ends the run: nothing is written when authentication fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) (*Result, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := deps.Registry
	if registry == nil {
		registry = deck.DefaultRegistry
	}

	var cred *auth.Credential
	if needsCarto(cfg.Layers) {
		if deps.Authenticator == nil {
			return nil, ErrNoAuthenticator
		}
		c, err := deps.Authenticator.Authenticate(ctx)
		if err != nil {
			return nil, fmt.Errorf("authenticating: %w", err)
		}
		cred = c
		logger.Debug("authenticated", "api_base_url", cred.APIBaseURL())
	}

	if err := carto.RegisterLayer(registry); err != nil {
		return nil, err
	}
	logger.Debug("layer types registered", "types", registry.Types(), "libraries", libraryNames(registry.Libraries()))

	layers, err := BuildLayers(ctx, cfg.Layers, cred, deps.OpenQuerier)
	if err != nil {
		return nil, err
	}

	view := deck.NewViewState(cfg.ViewState.Latitude, cfg.ViewState.Longitude, cfg.ViewState.Zoom,
		deck.WithPitch(cfg.ViewState.Pitch), deck.WithBearing(cfg.ViewState.Bearing))

	scene, err := deck.NewScene(view, layers,
		deck.WithRegistry(registry),
		deck.WithMapStyle(cfg.MapStyle),
		deck.WithMapProvider(cfg.MapProvider),
		deck.WithTooltip(cfg.ShowTooltip()),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug("scene built", "map_style", scene.MapStyle(), "libraries", libraryNames(scene.Libraries()))

	path, err := scene.ToHTML(cfg.Output, cfg.ShouldOpenBrowser(), deps.Browser)
	if err != nil {
		return nil, err
	}
	logger.Info("map written", "path", path, "layers", len(layers))
	return &Result{Path: path, Layers: len(layers)}, nil
}

// BuildLayers turns layer configs into deck layers. CARTO layers need cred;
// layers on a local DSN are queried now and inlined as GeoJSON.
func BuildLayers(ctx context.Context, cfgs []config.Layer, cred *auth.Credential, open OpenQuerierFunc) ([]deck.Layer, error) {
	layers := make([]deck.Layer, 0, len(cfgs))
	for i, lc := range cfgs {
		var (
			layer deck.Layer
			err   error
		)
		if warehouse.IsLocal(lc.Connection) {
			layer, err = localLayer(ctx, lc, open)
		} else {
			layer, err = cartoLayer(lc, cred)
		}
		if err != nil {
			return nil, fmt.Errorf("building layer %d: %w", i, err)
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

func cartoLayer(lc config.Layer, cred *auth.Credential) (deck.Layer, error) {
	if cred == nil {
		return deck.Layer{}, carto.ErrMissingCredentials
	}
	return carto.NewLayer(carto.LayerOptions{
		ID:                   lc.ID,
		Data:                 lc.Data,
		Type:                 carto.MapType(lc.Type),
		Connection:           carto.Connection(lc.Connection),
		Credentials:          carto.LayerCredentials(cred),
		FillColor:            lc.FillColor,
		LineColor:            lc.LineColor,
		PointRadiusMinPixels: lc.PointRadiusMinPixels,
		Pickable:             lc.Pickable,
	})
}

func localLayer(ctx context.Context, lc config.Layer, open OpenQuerierFunc) (deck.Layer, error) {
	if open == nil {
		open = warehouse.Open
	}
	var query string
	switch lc.Type {
	case string(carto.MapTypeQuery):
		query = lc.Data
	case string(carto.MapTypeTable):
		query = "SELECT * FROM " + lc.Data
	default:
		return deck.Layer{}, fmt.Errorf("map type %q is not supported for local connections", lc.Type)
	}

	q, err := open(ctx, lc.Connection)
	if err != nil {
		return deck.Layer{}, err
	}
	defer q.Close(ctx)

	rows, err := q.RunSQL(ctx, query, nil)
	if err != nil {
		return deck.Layer{}, err
	}
	fc, err := warehouse.ToFeatureCollection(rows, lc.GeoColumn)
	if err != nil {
		return deck.Layer{}, err
	}

	props := map[string]any{
		"data":     fc,
		"pickable": lc.Pickable,
	}
	if len(lc.FillColor) > 0 {
		props["get_fill_color"] = lc.FillColor
	}
	if len(lc.LineColor) > 0 {
		props["get_line_color"] = lc.LineColor
	}
	if lc.PointRadiusMinPixels > 0 {
		props["point_radius_min_pixels"] = lc.PointRadiusMinPixels
	}
	return deck.NewLayer("GeoJsonLayer", lc.ID, props), nil
}

func libraryNames(libs []deck.Library) []string {
	names := make([]string, 0, len(libs))
	for _, lib := range libs {
		names = append(names, lib.Name)
	}
	return names
}

func needsCarto(layers []config.Layer) bool {
	for _, l := range layers {
		if !warehouse.IsLocal(l.Connection) {
			return true
		}
	}
	return false
}
