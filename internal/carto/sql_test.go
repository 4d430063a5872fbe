package carto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLClient_RunSQL(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody sqlRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows":[{"name":"Madrid-Barajas","geom":"POINT(-3.56 40.47)"}],"schema":[]}`))
	}))
	defer srv.Close()

	creds := Credentials{APIVersion: APIVersion, APIBaseURL: srv.URL, AccessToken: "tok"}
	client := NewSQLClient(creds, ConnectionCartoDW, WithHTTPClient(srv.Client()))

	rows, err := client.RunSQL(context.Background(), airportsSQL, map[string]any{"limit": "10"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Madrid-Barajas", rows[0]["name"])

	assert.Equal(t, "/v3/sql/carto_dw/query", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, airportsSQL, gotBody.Query)
	assert.Equal(t, map[string]any{"limit": "10"}, gotBody.QueryParameters)
	assert.NoError(t, client.Close(context.Background()))
}

func TestSQLClient_EmptyRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewSQLClient(Credentials{APIVersion: APIVersion, APIBaseURL: srv.URL, AccessToken: "tok"}, "bq")
	rows, err := client.RunSQL(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSQLClient_Errors(t *testing.T) {
	t.Run("api error message surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
		}))
		defer srv.Close()

		client := NewSQLClient(Credentials{APIVersion: APIVersion, APIBaseURL: srv.URL, AccessToken: "bad"}, ConnectionCartoDW)
		_, err := client.RunSQL(context.Background(), "SELECT 1", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, err.Error(), "Unauthorized")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client := NewSQLClient(Credentials{APIVersion: APIVersion, APIBaseURL: srv.URL, AccessToken: "tok"}, ConnectionCartoDW)
		_, err := client.RunSQL(context.Background(), "SELECT 1", nil)
		assert.Error(t, err)
	})

	t.Run("empty query", func(t *testing.T) {
		client := NewSQLClient(Credentials{APIBaseURL: "http://unused"}, ConnectionCartoDW)
		_, err := client.RunSQL(context.Background(), "  ", nil)
		assert.Error(t, err)
	})
}
