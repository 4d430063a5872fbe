package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type RenderMapInput struct {
	Output      string `json:"output,omitempty" jsonschema:"output html path, defaults to the configured one"`
	OpenBrowser bool   `json:"open_browser,omitempty" jsonschema:"open the result in the default browser"`
}

type RenderMapOutput struct {
	Path   string `json:"path"`
	Layers int    `json:"layers"`
}

type RunQueryInput struct {
	SQL        string            `json:"sql" jsonschema:"SQL to execute"`
	Connection string            `json:"connection,omitempty" jsonschema:"CARTO connection name or local postgres/sqlite DSN"`
	Params     map[string]string `json:"params,omitempty" jsonschema:"query parameters"`
}

type RunQueryOutput struct {
	Rows  []map[string]any `json:"rows"`
	Count int              `json:"count"`
}

type ListLayerTypesInput struct{}

type LayerTypeOutput struct {
	Name        string `json:"name"`
	Library     string `json:"library"`
	ResourceURI string `json:"resource_uri"`
}

type ListLayerTypesOutput struct {
	LayerTypes  []LayerTypeOutput `json:"layer_types"`
	Connections []string          `json:"connections"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "render_map",
		Description: "Render the configured map scene to a standalone HTML file",
	}, s.handleRenderMap)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "run_query",
		Description: "Run SQL against a CARTO connection or a local warehouse",
	}, s.handleRunQuery)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_layer_types",
		Description: "List custom layer types and configured connections",
	}, s.handleListLayerTypes)
}

func (s *Server) handleRenderMap(ctx context.Context, req *sdk.CallToolRequest, input RenderMapInput) (*sdk.CallToolResult, RenderMapOutput, error) {
	res, err := s.backend.Render(ctx, input.Output, input.OpenBrowser)
	if err != nil {
		return nil, RenderMapOutput{}, err
	}
	return nil, RenderMapOutput{Path: res.Path, Layers: res.Layers}, nil
}

func (s *Server) handleRunQuery(ctx context.Context, req *sdk.CallToolRequest, input RunQueryInput) (*sdk.CallToolResult, RunQueryOutput, error) {
	if input.SQL == "" {
		return nil, RunQueryOutput{}, fmt.Errorf("sql is required")
	}
	var params map[string]any
	if len(input.Params) > 0 {
		params = make(map[string]any, len(input.Params))
		for k, v := range input.Params {
			params[k] = v
		}
	}
	rows, err := s.backend.Query(ctx, input.Connection, input.SQL, params)
	if err != nil {
		return nil, RunQueryOutput{}, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return nil, RunQueryOutput{Rows: rows, Count: len(rows)}, nil
}

func (s *Server) handleListLayerTypes(ctx context.Context, req *sdk.CallToolRequest, input ListLayerTypesInput) (*sdk.CallToolResult, ListLayerTypesOutput, error) {
	types, err := s.backend.LayerTypes()
	if err != nil {
		return nil, ListLayerTypesOutput{}, err
	}
	out := ListLayerTypesOutput{
		LayerTypes:  make([]LayerTypeOutput, 0, len(types)),
		Connections: s.backend.Connections(),
	}
	for _, lt := range types {
		out.LayerTypes = append(out.LayerTypes, LayerTypeOutput{
			Name:        lt.Name,
			Library:     lt.Library.Name,
			ResourceURI: lt.Library.ResourceURI,
		})
	}
	return nil, out, nil
}
