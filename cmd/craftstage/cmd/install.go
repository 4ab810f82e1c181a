package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/craftstage/internal/service/installer"
)

// installCmd stages a release without starting it.
var installCmd = &cobra.Command{
	Use:   "install <release>",
	Short: "Download a release, its libraries, assets and runtime",
	Long: "Download a release, its libraries, assets and runtime into the installation root.\n" +
		"The release is a catalog id or one of the aliases latest and latest-snapshot.",
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return installer.Run(ctx, &installer.Options{
			ConfigPath:  configPath,
			Root:        rootDir,
			ReleaseID:   args[0],
			MetricsFile: metricsFile,
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(installCmd)
}
