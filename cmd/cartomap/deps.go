package main

import (
	"log/slog"

	"cartomap/internal/auth"
	"cartomap/internal/config"
	"cartomap/internal/deck"
	"cartomap/internal/render"
	"cartomap/internal/warehouse"
)

func loadConfig() (*config.Config, error) {
	return config.Resolve(flags.configPath)
}

func newDeps(cfg *config.Config) (render.Deps, error) {
	logger := slog.Default()
	browser := deck.SystemBrowser{}
	authn, err := auth.FromConfig(cfg.Auth, browser, logger)
	if err != nil {
		return render.Deps{}, err
	}
	return render.Deps{
		Authenticator: authn,
		Registry:      deck.DefaultRegistry,
		Browser:       browser,
		OpenQuerier:   warehouse.Open,
		Logger:        logger,
	}, nil
}

func newService() (*render.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	deps, err := newDeps(cfg)
	if err != nil {
		return nil, err
	}
	return &render.Service{Config: cfg, Deps: deps}, nil
}
