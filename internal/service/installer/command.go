package installer

import (
	"context"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/logger"
	"github.com/oshokin/craftstage/internal/metrics"
)

// Options are inputs accepted by the install entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Root overrides the configured installation root when set.
	Root string
	// ReleaseID is a catalog id or one of the latest aliases.
	ReleaseID string
	// MetricsFile receives a Prometheus textfile export when set.
	MetricsFile string
}

// Run installs a release and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "install")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.Root != "" {
		cfg.Root = opts.Root
	}

	recorder := metrics.New()
	defer ExportMetrics(ctx, recorder, opts.MetricsFile)

	if _, err = NewFromConfig(cfg, recorder).Install(ctx, opts.ReleaseID); err != nil {
		logger.ErrorKV(ctx, "Install failed", "error", err)
		return err
	}

	return nil
}

// ExportMetrics writes the recorder to path. Export failures are logged only.
func ExportMetrics(ctx context.Context, recorder *metrics.Recorder, path string) {
	if path == "" {
		return
	}

	if err := recorder.WriteTextfile(path); err != nil {
		logger.WarnKV(ctx, "Unable to export metrics", "path", path, "error", err)
	}
}
