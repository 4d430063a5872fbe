package carto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SQLClient runs queries through the CARTO SQL API against one connection.
type SQLClient struct {
	creds      Credentials
	connection Connection
	http       *http.Client
}

type SQLOption func(*SQLClient)

func WithHTTPClient(c *http.Client) SQLOption {
	return func(s *SQLClient) { s.http = c }
}

func NewSQLClient(creds Credentials, connection Connection, opts ...SQLOption) *SQLClient {
	c := &SQLClient{
		creds:      creds,
		connection: connection,
		http:       &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sqlRequest struct {
	Query           string         `json:"q"`
	QueryParameters map[string]any `json:"queryParameters,omitempty"`
}

type sqlResponse struct {
	Rows  []map[string]any `json:"rows"`
	Error any              `json:"error"`
}

func (c *SQLClient) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("running sql: query is required")
	}

	endpoint, err := url.JoinPath(c.creds.APIBaseURL, c.creds.APIVersion, "sql", string(c.connection), "query")
	if err != nil {
		return nil, fmt.Errorf("running sql: building endpoint: %w", err)
	}

	body, err := json.Marshal(sqlRequest{Query: query, QueryParameters: params})
	if err != nil {
		return nil, fmt.Errorf("running sql: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("running sql: reading response: %w", err)
	}

	var decoded sqlResponse
	decodeErr := json.Unmarshal(payload, &decoded)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(payload))
		if decodeErr == nil && decoded.Error != nil {
			msg = fmt.Sprint(decoded.Error)
		}
		return nil, fmt.Errorf("running sql: status %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("running sql: decoding response: %w", decodeErr)
	}
	if decoded.Rows == nil {
		decoded.Rows = make([]map[string]any, 0)
	}
	return decoded.Rows, nil
}

func (c *SQLClient) Close(ctx context.Context) error {
	return nil
}
