package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/lockable/internal/config"
	"github.com/oshokin/lockable/internal/service/client"
	"github.com/oshokin/lockable/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the server address from config.
	serverAddress string
	// maxAttempts bounds retries of transient failures.
	maxAttempts int

	// rootCmd groups the client operations.
	rootCmd = &cobra.Command{
		Use:   "lockable-client",
		Short: "Read or toggle the guard on a lock server.",
		Long: `Talks to a lockable-server.

"status" is open to everyone. "lock" and "unlock" succeed only for the guard admin;
other callers are rejected and the guard is left untouched. Rejections are final,
connection problems are retried.`,
		SilenceUsage: true,
	}
)

// newOperationCommand builds a subcommand running one client operation.
func newOperationCommand(operation, short string) *cobra.Command {
	return &cobra.Command{
		Use:   operation,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			state, err := client.Run(ctx, &client.Options{
				ConfigPath:    cfgPath,
				ServerAddress: serverAddress,
				Operation:     operation,
				MaxAttempts:   maxAttempts,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), client.FormatState(state))

			return nil
		},
	}
}

// Execute runs the lockable-client CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "lock server address (overrides config)")
	rootCmd.PersistentFlags().
		IntVarP(&maxAttempts, "attempts", "a", 0, "maximum attempts on transient failures (0 = default)")

	rootCmd.AddCommand(
		newOperationCommand(client.OperationStatus, "Print the guard state."),
		newOperationCommand(client.OperationLock, "Lock the guard (admin only)."),
		newOperationCommand(client.OperationUnlock, "Unlock the guard (admin only)."),
	)
}
