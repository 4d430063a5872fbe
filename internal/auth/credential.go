package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"cartomap/internal/config"
)

var (
	ErrNoClientID    = errors.New("oauth client id is required: set auth.client_id or CARTOMAP_AUTH_CLIENT_ID")
	ErrNoToken       = errors.New("access token is required")
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrAuthDenied    = errors.New("authorization denied")
)

// Credential is an authenticated CARTO session.
type Credential struct {
	accessToken string
	tokenType   string
	expiry      time.Time
	apiBaseURL  string
}

func NewCredential(tok *oauth2.Token, apiBaseURL string) *Credential {
	return &Credential{
		accessToken: tok.AccessToken,
		tokenType:   tok.Type(),
		expiry:      tok.Expiry,
		apiBaseURL:  apiBaseURL,
	}
}

func (c *Credential) AccessToken() string { return c.accessToken }
func (c *Credential) TokenType() string   { return c.tokenType }
func (c *Credential) Expiry() time.Time   { return c.expiry }
func (c *Credential) APIBaseURL() string  { return c.apiBaseURL }

// Authenticator obtains a Credential. Implementations do not retry.
type Authenticator interface {
	Authenticate(ctx context.Context) (*Credential, error)
}

type AuthenticatorFunc func(ctx context.Context) (*Credential, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context) (*Credential, error) { return f(ctx) }

// Static authenticates with a pre-issued access token.
type Static struct {
	Token      string
	APIBaseURL string
}

func (s Static) Authenticate(ctx context.Context) (*Credential, error) {
	if s.Token == "" {
		return nil, ErrNoToken
	}
	return NewCredential(&oauth2.Token{AccessToken: s.Token, TokenType: "Bearer"}, s.APIBaseURL), nil
}

// FromConfig picks the authenticator for cfg.Method.
func FromConfig(cfg config.AuthConfig, opener URLOpener, logger *slog.Logger) (Authenticator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.ResolvedMethod() {
	case config.AuthToken:
		return Static{Token: cfg.AccessToken, APIBaseURL: cfg.APIBaseURL}, nil
	case config.AuthM2M:
		return &M2M{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Audience:     cfg.Audience,
			APIBaseURL:   cfg.APIBaseURL,
		}, nil
	case config.AuthOAuth:
		o := &OAuth{
			ClientID:    cfg.ClientID,
			AuthURL:     cfg.AuthURL,
			TokenURL:    cfg.TokenURL,
			Audience:    cfg.Audience,
			RedirectURL: cfg.RedirectURL,
			APIBaseURL:  cfg.APIBaseURL,
			Timeout:     cfg.Timeout,
			Opener:      opener,
			Logger:      logger,
		}
		if cfg.CacheEnabled() {
			path := cfg.CacheFile
			if path == "" {
				p, err := DefaultCachePath()
				if err != nil {
					return nil, err
				}
				path = p
			}
			o.Cache = &TokenCache{Path: path}
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported auth method: %s", cfg.Method)
	}
}
