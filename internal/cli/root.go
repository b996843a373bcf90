package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var port, configPath string

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "tietotesti",
		Short:        "TietoTesti quiz service: play, leaderboard and teacher workspace",
		SilenceUsage: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&port, "port", "", "port to listen on (overrides config and PORT)")
	flags.StringVar(&configPath, "config", defaultConfig, "path to YAML config")

	cmd.AddCommand(
		NewStartCmd(&configPath, &port),
		NewMigrateCmd(&configPath),
		NewTeacherCmd(&configPath),
	)
	return cmd
}
