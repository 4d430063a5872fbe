package render

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartomap/internal/auth"
	"cartomap/internal/config"
	"cartomap/internal/deck"
)

func TestService_Render(t *testing.T) {
	cfg, dir := testConfig(t)
	browser := &recordingBrowser{}
	svc := &Service{Config: cfg, Deps: Deps{Authenticator: &countingAuth{}, Registry: deck.NewRegistry(), Browser: browser}}

	res, err := svc.Render(context.Background(), filepath.Join(dir, "other.html"), false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "other.html"), res.Path)
	assert.Empty(t, browser.urls)
	assert.Equal(t, filepath.Join(dir, "carto_layer_geo_query.html"), cfg.Output, "service must not mutate its config")

	_, err = os.Stat(res.Path)
	assert.NoError(t, err)
}

func TestService_QueryCarto(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v3/sql/carto_dw/query", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"rows": []map[string]any{{"name": "Barajas"}}})
	}))
	defer srv.Close()

	svc := &Service{
		Config: config.Default(),
		Deps: Deps{Authenticator: auth.AuthenticatorFunc(func(ctx context.Context) (*auth.Credential, error) {
			return auth.Static{Token: "svc-token", APIBaseURL: srv.URL}.Authenticate(ctx)
		})},
	}
	rows, err := svc.Query(context.Background(), "", "SELECT name FROM airports", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Barajas", rows[0]["name"])
	assert.Equal(t, "Bearer svc-token", gotAuth)
}

func TestService_QueryLocal(t *testing.T) {
	authn := &countingAuth{}
	svc := &Service{Config: config.Default(), Deps: Deps{Authenticator: authn}}
	rows, err := svc.Query(context.Background(), "sqlite://:memory:", "SELECT 2 AS two", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0]["two"])
	assert.Equal(t, 0, authn.calls)
}

func TestService_QueryErrors(t *testing.T) {
	svc := &Service{Config: config.Default()}
	_, err := svc.Query(context.Background(), "", " ", nil)
	assert.Error(t, err)

	_, err = svc.Query(context.Background(), "carto_dw", "SELECT 1", nil)
	assert.ErrorIs(t, err, ErrNoAuthenticator)

	authErr := errors.New("denied")
	svc.Deps.Authenticator = &countingAuth{err: authErr}
	_, err = svc.Query(context.Background(), "carto_dw", "SELECT 1", nil)
	assert.ErrorIs(t, err, authErr)
}

func TestService_LayerTypesAndConnections(t *testing.T) {
	cfg := config.Default()
	cfg.Layers = append(cfg.Layers, config.Layer{Connection: "sqlite://:memory:"}, config.Layer{Connection: "carto_dw"})
	svc := &Service{Config: cfg, Deps: Deps{Registry: deck.NewRegistry()}}

	types, err := svc.LayerTypes()
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "CartoLayer", types[0].Name)

	assert.Equal(t, []string{"carto_dw", "sqlite://:memory:"}, svc.Connections())
}
