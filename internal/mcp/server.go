package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"cartomap/internal/deck"
	"cartomap/internal/render"
)

// Backend is what the tools delegate to; *render.Service implements it.
type Backend interface {
	Render(ctx context.Context, output string, openBrowser bool) (*render.Result, error)
	Query(ctx context.Context, connection, sql string, params map[string]any) ([]map[string]any, error)
	LayerTypes() ([]deck.LayerType, error)
	Connections() []string
}

type Server struct {
	backend Backend
	mcp     *sdk.Server
}

func NewServer(backend Backend, version string) *Server {
	s := &Server{
		backend: backend,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "cartomap",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
