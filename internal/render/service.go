package render

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"cartomap/internal/carto"
	"cartomap/internal/config"
	"cartomap/internal/deck"
	"cartomap/internal/warehouse"
)

// Service exposes render and query operations over one loaded config.
type Service struct {
	Config *config.Config
	Deps   Deps
}

// Render renders the configured scene. Empty output keeps the configured path.
func (s *Service) Render(ctx context.Context, output string, openBrowser bool) (*Result, error) {
	cfg := *s.Config
	if output != "" {
		cfg.Output = output
	}
	cfg.OpenBrowser = &openBrowser
	return Run(ctx, &cfg, s.Deps)
}

// Query runs sql on connection: a local DSN directly, anything else through
// the CARTO SQL API. An empty connection uses the first configured layer's.
func (s *Service) Query(ctx context.Context, connection, sql string, params map[string]any) ([]map[string]any, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, fmt.Errorf("sql is required")
	}
	if connection == "" {
		connection = string(carto.ConnectionCartoDW)
		if len(s.Config.Layers) > 0 {
			connection = s.Config.Layers[0].Connection
		}
	}

	var q warehouse.Querier
	if warehouse.IsLocal(connection) {
		open := s.Deps.OpenQuerier
		if open == nil {
			open = warehouse.Open
		}
		local, err := open(ctx, connection)
		if err != nil {
			return nil, err
		}
		q = local
	} else {
		if s.Deps.Authenticator == nil {
			return nil, ErrNoAuthenticator
		}
		cred, err := s.Deps.Authenticator.Authenticate(ctx)
		if err != nil {
			return nil, fmt.Errorf("authenticating: %w", err)
		}
		q = carto.NewSQLClient(carto.LayerCredentials(cred), carto.Connection(connection))
	}
	defer q.Close(ctx)

	return q.RunSQL(ctx, sql, params)
}

// LayerTypes lists custom layer types after making sure CartoLayer is registered.
func (s *Service) LayerTypes() ([]deck.LayerType, error) {
	registry := s.Deps.Registry
	if registry == nil {
		registry = deck.DefaultRegistry
	}
	if err := carto.RegisterLayer(registry); err != nil {
		return nil, err
	}
	names := registry.Types()
	out := make([]deck.LayerType, 0, len(names))
	for _, name := range names {
		lt, _ := registry.Lookup(name)
		out = append(out, lt)
	}
	return out, nil
}

// Connections lists the distinct connections used by configured layers.
func (s *Service) Connections() []string {
	seen := make(map[string]struct{})
	for _, l := range s.Config.Layers {
		seen[l.Connection] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}
