package verifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/domain/platform"
	"github.com/oshokin/craftstage/internal/domain/release"
	"github.com/oshokin/craftstage/internal/logger"
)

var (
	// ErrCorrupt is returned when files are missing or damaged and were not repaired.
	ErrCorrupt = errors.New("installation has missing or damaged files")
	// errNotInstalled is returned when the release descriptor is not cached locally.
	errNotInstalled = errors.New("release is not installed")
)

// Options are inputs accepted by the verify entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Root overrides the configured installation root when set.
	Root string
	// ReleaseID is the installed release to check.
	ReleaseID string
	// Repair deletes damaged files so that the next install replaces them.
	Repair bool
	// Output receives the problem table; nil means stdout.
	Output io.Writer
}

// Run verifies an installed release without network access.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithKV(logger.WithName(ctx, "verify"), "release", opts.ReleaseID)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.Root != "" {
		cfg.Root = opts.Root
	}

	layout := release.NewLayout(cfg.Root)

	d, index, err := loadRelease(layout, opts.ReleaseID)
	if err != nil {
		return err
	}

	report, err := New(layout, platform.Current(), cfg.Concurrency).Verify(ctx, d, index)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Verification finished", "checked", report.Checked, "problems", len(report.Problems))

	if report.OK() {
		return nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	Render(out, report)

	if !opts.Repair {
		return fmt.Errorf("%d of %d files: %w", len(report.Problems), report.Checked, ErrCorrupt)
	}

	if err = Repair(report); err != nil {
		return err
	}

	logger.Info(ctx, "Damaged files removed, run install to fetch them again")

	return nil
}

// loadRelease reads the cached descriptor and, when present, the asset index.
func loadRelease(layout release.Layout, id string) (*release.Descriptor, *release.AssetIndex, error) {
	if err := release.ValidateName(id); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(layout.DescriptorPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("%s: %w", id, errNotInstalled)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("read descriptor: %w", err)
	}

	d, err := release.DecodeDescriptor(data)
	if err != nil {
		return nil, nil, err
	}

	indexPath, err := layout.AssetIndexPath(d.Assets)
	if err != nil {
		return nil, nil, err
	}

	data, err = os.ReadFile(indexPath)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil, nil
	}

	if err != nil {
		return nil, nil, fmt.Errorf("read asset index: %w", err)
	}

	index, err := release.DecodeAssetIndex(data)
	if err != nil {
		return nil, nil, err
	}

	return d, index, nil
}

// Render writes the problems of report as a table.
func Render(w io.Writer, report *Report) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Kind", "Problem", "Path"})

	for _, p := range report.Problems {
		tw.AppendRow(table.Row{p.Kind, p.Reason, p.Path})
	}

	tw.Render()
}
