package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/craftstage/internal/service/verifier"
)

var (
	// repair removes damaged files found by verify.
	repair bool

	// verifyCmd checks an installed release against published digests.
	verifyCmd = &cobra.Command{
		Use:   "verify <release>",
		Short: "Check installed files against their published checksums",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return verifier.Run(ctx, &verifier.Options{
				ConfigPath: configPath,
				Root:       rootDir,
				ReleaseID:  args[0],
				Repair:     repair,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	verifyCmd.Flags().BoolVar(&repair, "repair", false, "delete damaged files so that the next install downloads them again")
	rootCmd.AddCommand(verifyCmd)
}
