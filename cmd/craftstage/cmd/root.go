package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/logger"
	"github.com/oshokin/craftstage/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// rootDir overrides the configured installation root.
	rootDir string
	// logLevel is the minimum level of log messages.
	logLevel string
	// metricsFile receives a Prometheus textfile export.
	metricsFile string

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:           "craftstage",
		Short:         "Install and launch game releases from the official catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			lvl, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(lvl)

			return nil
		},
	}
)

// Execute runs the craftstage CLI and exits with non-zero status on error.
func Execute() {
	rootCmd.AddCommand(version.NewCommand())

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "craftstage:", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" when present)")
	flags.StringVarP(&rootDir, "root", "r", "", "installation root, overrides the configuration")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&metricsFile, "metrics-file", "", "write download metrics in Prometheus text format to this file")
}
