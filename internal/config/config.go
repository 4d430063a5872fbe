package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "cartomap.yaml"

// DefaultClientID is the OAuth client used when none is configured. Release
// builds set it with -ldflags "-X cartomap/internal/config.DefaultClientID=...".
var DefaultClientID string

const (
	AuthOAuth = "oauth"
	AuthM2M   = "m2m"
	AuthToken = "token"
)

type Config struct {
	Version     int        `yaml:"version"`
	Output      string     `yaml:"output"`
	OpenBrowser *bool      `yaml:"open_browser"`
	MapStyle    string     `yaml:"map_style"`
	MapProvider string     `yaml:"map_provider"`
	Tooltip     *bool      `yaml:"tooltip"`
	ViewState   ViewState  `yaml:"view_state"`
	Auth        AuthConfig `yaml:"auth"`
	Layers      []Layer    `yaml:"layers"`
}

type ViewState struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Zoom      float64 `yaml:"zoom"`
	Pitch     float64 `yaml:"pitch"`
	Bearing   float64 `yaml:"bearing"`
}

type AuthConfig struct {
	Method       string        `yaml:"method"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	AccessToken  string        `yaml:"access_token"`
	AuthURL      string        `yaml:"auth_url"`
	TokenURL     string        `yaml:"token_url"`
	Audience     string        `yaml:"audience"`
	RedirectURL  string        `yaml:"redirect_url"`
	APIBaseURL   string        `yaml:"api_base_url"`
	CacheFile    string        `yaml:"cache_file"`
	UseCache     *bool         `yaml:"use_cache"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Layer struct {
	ID                   string  `yaml:"id"`
	Type                 string  `yaml:"type"`
	Connection           string  `yaml:"connection"`
	Data                 string  `yaml:"data"`
	GeoColumn            string  `yaml:"geo_column"`
	FillColor            []int   `yaml:"fill_color"`
	LineColor            []int   `yaml:"line_color"`
	PointRadiusMinPixels float64 `yaml:"point_radius_min_pixels"`
	Pickable             bool    `yaml:"pickable"`
}

// Default returns the airports scene rendered when no config file exists.
func Default() *Config {
	cfg := &Config{
		Version:  1,
		Output:   "carto_layer_geo_query.html",
		MapStyle: "road",
		ViewState: ViewState{
			Latitude:  0,
			Longitude: 0,
			Zoom:      1,
		},
		Layers: []Layer{{
			ID:                   "airports",
			Type:                 "query",
			Connection:           "carto_dw",
			Data:                 "SELECT geom, name FROM carto-demo-data.demo_tables.airports",
			FillColor:            []int{238, 77, 90},
			PointRadiusMinPixels: 2.5,
			Pickable:             true,
		}},
	}
	applyDefaults(cfg)
	return cfg
}

// Resolve loads path, or DefaultPath when path is empty. A missing DefaultPath
// yields Default(); a missing explicit path is an error. Environment overrides
// are applied in both cases.
func Resolve(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		loaded, err := read(DefaultPath)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, os.ErrNotExist):
			cfg = Default()
		default:
			return nil, err
		}
	} else {
		loaded, err := read(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnv(cfg)
	return finish(cfg)
}

// Load reads path without environment overrides.
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	return finish(cfg)
}

func read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func finish(cfg *Config) (*Config, error) {
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.Auth.Method = cfg.Auth.ResolvedMethod()
	return cfg, nil
}

func (c *Config) ShouldOpenBrowser() bool {
	return c.OpenBrowser == nil || *c.OpenBrowser
}

func (c *Config) ShowTooltip() bool {
	return c.Tooltip == nil || *c.Tooltip
}

func (a AuthConfig) CacheEnabled() bool {
	return a.UseCache == nil || *a.UseCache
}

// ResolvedMethod is Method, or when unset, token if an access token is
// present and oauth otherwise.
func (a AuthConfig) ResolvedMethod() string {
	switch {
	case a.Method != "":
		return a.Method
	case a.AccessToken != "":
		return AuthToken
	default:
		return AuthOAuth
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Output == "" {
		cfg.Output = "carto_layer_geo_query.html"
	}
	if cfg.MapStyle == "" {
		cfg.MapStyle = "road"
	}
	if cfg.MapProvider == "" {
		cfg.MapProvider = "carto"
	}
	a := &cfg.Auth
	if a.ClientID == "" {
		a.ClientID = DefaultClientID
	}
	if a.AuthURL == "" {
		a.AuthURL = "https://auth.carto.com/authorize"
	}
	if a.TokenURL == "" {
		a.TokenURL = "https://auth.carto.com/oauth/token"
	}
	if a.Audience == "" {
		a.Audience = "carto-cloud-native-api"
	}
	if a.RedirectURL == "" {
		a.RedirectURL = "http://127.0.0.1:8765/callback"
	}
	if a.APIBaseURL == "" {
		a.APIBaseURL = "https://gcp-us-east1.api.carto.com"
	}
	if a.Timeout == 0 {
		a.Timeout = 5 * time.Minute
	}
	for i := range cfg.Layers {
		if cfg.Layers[i].Type == "" {
			cfg.Layers[i].Type = "query"
		}
		if cfg.Layers[i].GeoColumn == "" {
			cfg.Layers[i].GeoColumn = "geom"
		}
	}
}

var envKeys = []string{
	"output",
	"auth.method",
	"auth.client_id",
	"auth.client_secret",
	"auth.access_token",
	"auth.api_base_url",
	"auth.redirect_url",
}

func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("CARTOMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	targets := map[string]*string{
		"output":             &cfg.Output,
		"auth.method":        &cfg.Auth.Method,
		"auth.client_id":     &cfg.Auth.ClientID,
		"auth.client_secret": &cfg.Auth.ClientSecret,
		"auth.access_token":  &cfg.Auth.AccessToken,
		"auth.api_base_url":  &cfg.Auth.APIBaseURL,
		"auth.redirect_url":  &cfg.Auth.RedirectURL,
	}
	for _, key := range envKeys {
		if v.IsSet(key) {
			*targets[key] = v.GetString(key)
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return fmt.Errorf("output path is required")
	}

	vs := cfg.ViewState
	if vs.Latitude < -90 || vs.Latitude > 90 {
		return fmt.Errorf("view_state latitude out of range: %v", vs.Latitude)
	}
	if vs.Longitude < -180 || vs.Longitude > 180 {
		return fmt.Errorf("view_state longitude out of range: %v", vs.Longitude)
	}
	if vs.Zoom < 0 || vs.Zoom > 24 {
		return fmt.Errorf("view_state zoom out of range: %v", vs.Zoom)
	}

	switch cfg.Auth.Method {
	case "", AuthOAuth, AuthM2M, AuthToken:
	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.Auth.Method)
	}

	seen := make(map[string]struct{})
	for i, layer := range cfg.Layers {
		if strings.TrimSpace(layer.Data) == "" {
			return fmt.Errorf("layer %d data is required", i)
		}
		if strings.TrimSpace(layer.Connection) == "" {
			return fmt.Errorf("layer %d connection is required", i)
		}
		switch layer.Type {
		case "query", "table", "tileset":
		default:
			return fmt.Errorf("layer %d has unsupported type: %s", i, layer.Type)
		}
		if err := validateColor(layer.FillColor); err != nil {
			return fmt.Errorf("layer %d fill_color: %w", i, err)
		}
		if err := validateColor(layer.LineColor); err != nil {
			return fmt.Errorf("layer %d line_color: %w", i, err)
		}
		if layer.PointRadiusMinPixels < 0 {
			return fmt.Errorf("layer %d point_radius_min_pixels must not be negative", i)
		}
		if layer.ID == "" {
			continue
		}
		key := strings.ToLower(layer.ID)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("duplicate layer id: %s", layer.ID)
		}
		seen[key] = struct{}{}
	}

	return nil
}

func validateColor(c []int) error {
	if len(c) == 0 {
		return nil
	}
	if len(c) != 3 && len(c) != 4 {
		return fmt.Errorf("expected 3 or 4 components, got %d", len(c))
	}
	for _, v := range c {
		if v < 0 || v > 255 {
			return fmt.Errorf("component %d out of range", v)
		}
	}
	return nil
}
