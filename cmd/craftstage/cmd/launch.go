package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/craftstage/internal/service/launcher"
)

var (
	// offline launches from the stored receipt.
	offline bool

	// launchCmd installs a release when needed and starts it.
	launchCmd = &cobra.Command{
		Use:   "launch <release>",
		Short: "Install a release if needed and start the game",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return launcher.Run(ctx, &launcher.Options{
				ConfigPath:  configPath,
				Root:        rootDir,
				ReleaseID:   args[0],
				Offline:     offline,
				MetricsFile: metricsFile,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	launchCmd.Flags().BoolVar(&offline, "offline", false, "skip the network and launch the last installed copy")
	rootCmd.AddCommand(launchCmd)
}
