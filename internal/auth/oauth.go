package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// URLOpener shows a URL to the user, typically in a browser.
type URLOpener interface {
	Open(url string) error
}

var Scopes = []string{"openid", "profile", "email", "offline_access"}

// OAuth runs the interactive authorization-code flow with PKCE. A cached
// token is reused while valid and refreshed when it carries a refresh token.
type OAuth struct {
	ClientID    string
	AuthURL     string
	TokenURL    string
	Audience    string
	RedirectURL string
	APIBaseURL  string
	Timeout     time.Duration
	Cache       *TokenCache
	Opener      URLOpener
	Logger      *slog.Logger
	HTTPClient  *http.Client
}

func (o *OAuth) Authenticate(ctx context.Context) (*Credential, error) {
	if o.ClientID == "" {
		return nil, ErrNoClientID
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if o.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.HTTPClient)
	}

	conf := &oauth2.Config{
		ClientID: o.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   o.AuthURL,
			TokenURL:  o.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: o.RedirectURL,
		Scopes:      Scopes,
	}

	if tok := o.cachedToken(ctx, conf, logger); tok != nil {
		return NewCredential(tok, o.APIBaseURL), nil
	}

	ln, redirect, err := listenForCallback(o.RedirectURL)
	if err != nil {
		return nil, err
	}
	conf.RedirectURL = redirect.String()

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
	if o.Audience != "" {
		opts = append(opts, oauth2.SetAuthURLParam("audience", o.Audience))
	}
	authURL := conf.AuthCodeURL(state, opts...)

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := serveCallback(waitCtx, ln, redirect.Path, state)

	logger.Info("opening browser for CARTO login", "url", authURL)
	if o.Opener != nil {
		if err := o.Opener.Open(authURL); err != nil {
			logger.Warn("could not open browser, visit the url manually", "error", err)
		}
	}

	res := <-results
	if res.err != nil {
		return nil, fmt.Errorf("oauth callback: %w", res.err)
	}

	tok, err := conf.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	if o.Cache != nil {
		if err := o.Cache.Save(tok); err != nil {
			logger.Warn("token not cached", "error", err)
		}
	}
	return NewCredential(tok, o.APIBaseURL), nil
}

func (o *OAuth) cachedToken(ctx context.Context, conf *oauth2.Config, logger *slog.Logger) *oauth2.Token {
	if o.Cache == nil {
		return nil
	}
	tok, err := o.Cache.Load()
	if err != nil {
		logger.Debug("no usable cached token", "error", err)
		return nil
	}
	if tok.Valid() {
		logger.Debug("using cached token", "expiry", tok.Expiry)
		return tok
	}
	if tok.RefreshToken == "" {
		return nil
	}

	fresh, err := conf.TokenSource(ctx, tok).Token()
	if err != nil {
		logger.Info("cached token could not be refreshed", "error", err)
		return nil
	}
	if err := o.Cache.Save(fresh); err != nil {
		logger.Warn("token not cached", "error", err)
	}
	return fresh
}

// listenForCallback binds the redirect address. Port 0 picks a free port and
// the returned URL carries the real one.
func listenForCallback(redirectURL string) (net.Listener, *url.URL, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redirect url: %w", err)
	}
	if u.Scheme != "http" {
		return nil, nil, fmt.Errorf("redirect url must use http, got %q", u.Scheme)
	}
	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("listening for oauth callback: %w", err)
	}
	host := u.Hostname()
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	u.Host = net.JoinHostPort(host, port)
	if u.Path == "" {
		u.Path = "/"
	}
	return ln, u, nil
}

type callbackResult struct {
	code string
	err  error
}

// serveCallback serves the redirect path on ln until a callback arrives or
// ctx ends. The server is shut down before the result is delivered.
func serveCallback(ctx context.Context, ln net.Listener, path, expectedState string) <-chan callbackResult {
	got := make(chan callbackResult, 1)
	deliver := func(r callbackResult) {
		select {
		case got <- r:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != expectedState {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			deliver(callbackResult{err: ErrStateMismatch})
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "Authentication failed: "+e, http.StatusBadRequest)
			deliver(callbackResult{err: fmt.Errorf("%w: %s %s", ErrAuthDenied, e, q.Get("error_description"))})
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code received", http.StatusBadRequest)
			deliver(callbackResult{err: errors.New("no authorization code received")})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body style="font-family: sans-serif; text-align: center; padding: 50px;">` +
			`<h1>Logged in to CARTO</h1><p>You can close this tab and return to the terminal.</p>` +
			`<script>window.close();</script></body></html>`))
		deliver(callbackResult{code: code})
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	out := make(chan callbackResult, 1)
	go func() {
		var res callbackResult
		select {
		case res = <-got:
		case err := <-serveErr:
			res = callbackResult{err: err}
		case <-ctx.Done():
			res = callbackResult{err: ctx.Err()}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		out <- res
	}()
	return out
}
