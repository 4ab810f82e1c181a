package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/logger"
)

var (
	// overwrite replaces an existing configuration file.
	overwrite bool

	// initCmd writes a configuration file holding the defaults.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := logger.WithName(context.Background(), "init")

			path, err := config.Init(configPath, rootDir, overwrite)
			if err != nil {
				return err
			}

			logger.InfoKV(ctx, "Configuration written", "path", path)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().BoolVarP(&overwrite, "force", "f", false, "overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}
