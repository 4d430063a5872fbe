package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"cartomap/internal/auth"
)

func loginCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with CARTO and cache the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Ignore any cached token")
	return cmd
}

func runLogin(cmd *cobra.Command, force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, err := newDeps(cfg)
	if err != nil {
		return err
	}

	if o, ok := deps.Authenticator.(*auth.OAuth); ok && force && o.Cache != nil {
		if err := o.Cache.Clear(); err != nil {
			return err
		}
	}

	cred, err := deps.Authenticator.Authenticate(cmd.Context())
	if err != nil {
		return err
	}
	slog.Info("logged in", "method", cfg.Auth.Method, "api_base_url", cred.APIBaseURL())
	if !cred.Expiry().IsZero() {
		cmd.Printf("token valid until %s\n", cred.Expiry().Local().Format(time.RFC1123))
	}
	return nil
}
