package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand returns the `version` subcommand. With --short it prints the
// release number alone.
func NewCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the craftstage build",
		Long: "Show the craftstage release, the commit and time it was built from, " +
			"and the Go toolchain and platform of the binary. Include this line when reporting a failed install.",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			line := Full()
			if short {
				line = Short()
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the release number")

	return cmd
}
