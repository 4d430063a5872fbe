package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"cartomap/internal/logging"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

var flags globalFlags

func main() {
	root := &cobra.Command{
		Use:           "cartomap",
		Short:         "Render CARTO data-warehouse queries as deck.gl maps",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.New(flags.logLevel, flags.logFormat, cmd.ErrOrStderr())
		},
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default cartomap.yaml, built-in scene if absent)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(renderCmd())
	root.AddCommand(loginCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
