package mcp

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cartomap/internal/auth"
	"cartomap/internal/config"
	"cartomap/internal/deck"
	"cartomap/internal/render"
)

type mockBackend struct {
	renderResult *render.Result
	renderErr    error
	queryRows    []map[string]any
	queryErr     error
	layerTypes   []deck.LayerType

	lastOutput      string
	lastOpen        bool
	lastConnection  string
	lastSQL         string
	lastQueryParams map[string]any
}

func (m *mockBackend) Render(ctx context.Context, output string, openBrowser bool) (*render.Result, error) {
	m.lastOutput = output
	m.lastOpen = openBrowser
	return m.renderResult, m.renderErr
}

func (m *mockBackend) Query(ctx context.Context, connection, sql string, params map[string]any) ([]map[string]any, error) {
	m.lastConnection = connection
	m.lastSQL = sql
	m.lastQueryParams = params
	return m.queryRows, m.queryErr
}

func (m *mockBackend) LayerTypes() ([]deck.LayerType, error) {
	return m.layerTypes, nil
}

func (m *mockBackend) Connections() []string {
	return []string{"carto_dw"}
}

func TestRenderMap(t *testing.T) {
	backend := &mockBackend{renderResult: &render.Result{Path: "/tmp/map.html", Layers: 1}}
	server := NewServer(backend, "test")

	_, output, err := server.handleRenderMap(context.Background(), nil, RenderMapInput{Output: "map.html", OpenBrowser: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Path != "/tmp/map.html" || output.Layers != 1 {
		t.Fatalf("unexpected output: %+v", output)
	}
	if backend.lastOutput != "map.html" || !backend.lastOpen {
		t.Fatalf("unexpected render params")
	}
}

func TestRenderMap_Error(t *testing.T) {
	server := NewServer(&mockBackend{renderErr: errors.New("auth failed")}, "test")
	if _, _, err := server.handleRenderMap(context.Background(), nil, RenderMapInput{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunQuery(t *testing.T) {
	backend := &mockBackend{queryRows: []map[string]any{{"name": "Barajas"}}}
	server := NewServer(backend, "test")

	_, output, err := server.handleRunQuery(context.Background(), nil, RunQueryInput{
		SQL:        "SELECT name FROM airports WHERE iata = @code",
		Connection: "bigquery",
		Params:     map[string]string{"code": "MAD"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Count != 1 || output.Rows[0]["name"] != "Barajas" {
		t.Fatalf("unexpected output: %+v", output)
	}
	if backend.lastConnection != "bigquery" || backend.lastQueryParams["code"] != "MAD" {
		t.Fatalf("unexpected query params")
	}
}

func TestRunQuery_Validation(t *testing.T) {
	server := NewServer(&mockBackend{}, "test")
	if _, _, err := server.handleRunQuery(context.Background(), nil, RunQueryInput{}); err == nil {
		t.Fatalf("expected error")
	}

	_, output, err := server.handleRunQuery(context.Background(), nil, RunQueryInput{SQL: "SELECT 1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Rows == nil || output.Count != 0 {
		t.Fatalf("expected empty rows, got %+v", output)
	}
}

func TestListLayerTypes(t *testing.T) {
	backend := &mockBackend{layerTypes: []deck.LayerType{{
		Name:    "CartoLayer",
		Library: deck.Library{Name: "CartoLayerLibrary", ResourceURI: "https://cdn.example.test/carto.js"},
	}}}
	server := NewServer(backend, "test")

	_, output, err := server.handleListLayerTypes(context.Background(), nil, ListLayerTypesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.LayerTypes) != 1 || output.LayerTypes[0].Library != "CartoLayerLibrary" {
		t.Fatalf("unexpected output: %+v", output)
	}
	if len(output.Connections) != 1 {
		t.Fatalf("unexpected connections: %v", output.Connections)
	}
}

func TestServiceBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Output = filepath.Join(t.TempDir(), "map.html")
	svc := &render.Service{
		Config: cfg,
		Deps: render.Deps{
			Authenticator: auth.Static{Token: "tok", APIBaseURL: "https://api.example.test"},
			Registry:      deck.NewRegistry(),
		},
	}
	server := NewServer(svc, "test")

	_, output, err := server.handleRenderMap(context.Background(), nil, RenderMapInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Path != cfg.Output || output.Layers != 1 {
		t.Fatalf("unexpected output: %+v", output)
	}
}
