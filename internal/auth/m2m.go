package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// M2M authenticates a machine-to-machine client with the client-credentials grant.
type M2M struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Audience     string
	APIBaseURL   string
	HTTPClient   *http.Client
}

func (m *M2M) Authenticate(ctx context.Context) (*Credential, error) {
	if m.ClientID == "" {
		return nil, ErrNoClientID
	}
	cc := clientcredentials.Config{
		ClientID:     m.ClientID,
		ClientSecret: m.ClientSecret,
		TokenURL:     m.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if m.Audience != "" {
		cc.EndpointParams = url.Values{"audience": {m.Audience}}
	}
	if m.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.HTTPClient)
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("m2m authentication: %w", err)
	}
	return NewCredential(tok, m.APIBaseURL), nil
}
