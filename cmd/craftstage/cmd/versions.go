package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/craftstage/internal/logger"
	"github.com/oshokin/craftstage/internal/service/catalog"
)

var (
	// releaseType filters the listed releases.
	releaseType string
	// limit caps the number of listed releases.
	limit int

	// versionsCmd prints the remote catalog.
	versionsCmd = &cobra.Command{
		Use:   "versions",
		Short: "List releases available in the catalog",
		Args:  cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, _ []string) {
			// Keep the table readable unless the user asked for logs.
			if !cmd.Flag("log-level").Changed {
				logger.SetLogger(logger.New(nil, logger.WithFloor(zapcore.WarnLevel)))
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return catalog.Run(ctx, &catalog.Options{
				ConfigPath: configPath,
				Type:       releaseType,
				Limit:      limit,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	versionsCmd.Flags().StringVarP(&releaseType, "type", "t", "", "only list releases of this type (release, snapshot, old_beta, old_alpha)")
	versionsCmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most this many releases")
	rootCmd.AddCommand(versionsCmd)
}
