package warehouse

import (
	"context"
	"fmt"
	"strings"

	"cartomap/internal/warehouse/postgres"
	"cartomap/internal/warehouse/sqlite"
)

// Querier runs SQL against a data warehouse and returns rows keyed by column.
type Querier interface {
	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	Close(ctx context.Context) error
}

var (
	_ Querier = (*postgres.Client)(nil)
	_ Querier = (*sqlite.Client)(nil)
)

// IsLocal reports whether connection is a DSN this process can query itself
// rather than a named CARTO connection.
func IsLocal(connection string) bool {
	for _, prefix := range []string{"postgres://", "postgresql://", "sqlite://"} {
		if strings.HasPrefix(connection, prefix) {
			return true
		}
	}
	return false
}

// Open connects to a local warehouse DSN.
func Open(ctx context.Context, dsn string) (Querier, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported warehouse dsn %q", redact(dsn))
	}
}

func redact(dsn string) string {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return "<invalid>"
	}
	return scheme + "://..."
}
