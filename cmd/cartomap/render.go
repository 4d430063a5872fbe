package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cartomap/internal/render"
)

func renderCmd() *cobra.Command {
	var output string
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the configured scene to HTML and open it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, output, noBrowser)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output HTML path (overrides config)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the result in a browser")
	return cmd
}

func runRender(cmd *cobra.Command, output string, noBrowser bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if output != "" {
		cfg.Output = output
	}
	if noBrowser {
		off := false
		cfg.OpenBrowser = &off
	}

	deps, err := newDeps(cfg)
	if err != nil {
		return err
	}

	res, err := render.Run(cmd.Context(), cfg, deps)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}
