package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/lockable/internal/config"
	"github.com/oshokin/lockable/internal/service/server"
	"github.com/oshokin/lockable/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where the guard state is persisted.
	stateFile string

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "lockable-server [listen-address]",
		Short: "Run the lock gRPC server and own the guard.",
		Long: `Starts the gRPC lock server that owns a single admin-only guard.

Anyone may read the guard state; only the admin may lock or unlock it.
The admin is pinned by the "admin" setting or, for a brand new guard, is the user
running this server. Once persisted, the admin never changes.

Only the port from server_addr is used for listening (e.g., :8080).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:8080).
The guard state is persisted to a JSON file for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the lockable-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "path to persist the guard state (overrides config)")
}
