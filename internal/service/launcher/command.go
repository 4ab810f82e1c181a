package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/domain/platform"
	"github.com/oshokin/craftstage/internal/domain/release"
	"github.com/oshokin/craftstage/internal/logger"
	"github.com/oshokin/craftstage/internal/metrics"
	"github.com/oshokin/craftstage/internal/repository/receipt"
	"github.com/oshokin/craftstage/internal/service/installer"
)

// errOfflineAlias is returned when an alias is used without catalog access.
var errOfflineAlias = errors.New("release aliases need the catalog; pass a concrete id with --offline")

// Options are inputs accepted by the launch entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Root overrides the configured installation root when set.
	Root string
	// ReleaseID is a catalog id or one of the latest aliases.
	ReleaseID string
	// Offline launches from the stored receipt without network access.
	Offline bool
	// MetricsFile receives a Prometheus textfile export when set.
	MetricsFile string
}

// Run installs the release unless offline, then starts the game and waits
// for it to exit.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "launch")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.Root != "" {
		cfg.Root = opts.Root
	}

	rec, err := resolve(ctx, cfg, opts)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to prepare release", "release", opts.ReleaseID, "error", err)
		return err
	}

	gameDir, err := filepath.Abs(cfg.Root)
	if err != nil {
		return fmt.Errorf("resolve game directory: %w", err)
	}

	cmd := BuildCommand(ctx, rec, Target{
		GameDir:   gameDir,
		MaxMemory: cfg.MaxMemory,
		Player:    cfg.Player,
		Platform:  platform.Current(),
	})

	if err = cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", rec.JavaPath, err)
	}

	logger.InfoKV(ctx, "Game started", "release", rec.VersionID, "pid", cmd.Process.Pid)

	if err = cmd.Wait(); err != nil {
		return fmt.Errorf("game exited: %w", err)
	}

	logger.Info(ctx, "Game exited")

	return nil
}

// resolve returns the receipt to launch from, installing first when online.
func resolve(ctx context.Context, cfg *config.Config, opts *Options) (*receipt.Receipt, error) {
	if opts.Offline {
		if opts.ReleaseID == "latest" || opts.ReleaseID == "latest-snapshot" {
			return nil, errOfflineAlias
		}

		return receipt.NewFileRepository(release.NewLayout(cfg.Root)).Load(ctx, opts.ReleaseID)
	}

	recorder := metrics.New()
	defer installer.ExportMetrics(ctx, recorder, opts.MetricsFile)

	inst, err := installer.NewFromConfig(cfg, recorder).Install(ctx, opts.ReleaseID)
	if err != nil {
		return nil, err
	}

	return inst.Receipt(), nil
}
