package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/domain/release"
	"github.com/oshokin/craftstage/internal/fetch"
	"github.com/oshokin/craftstage/internal/logger"
)

// Options are inputs accepted by the versions entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Type keeps only releases of this type (release, snapshot, old_beta, old_alpha).
	Type string
	// Limit caps the number of printed rows; zero prints everything.
	Limit int
	// Output receives the table; nil means stdout.
	Output io.Writer
}

// Run fetches the catalog and prints it as a table.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "versions")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	catalog, err := Fetch(ctx, fetch.NewHTTPFetcher(fetch.WithTimeout(cfg.Timeout)), cfg.CatalogURL)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	entries := catalog.Filter(opts.Type)
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	logger.DebugKV(ctx, "Catalog fetched", "releases", len(catalog.Versions), "shown", len(entries))

	Render(out, catalog.Latest, entries)

	return nil
}

// Fetch downloads and decodes the catalog at url.
func Fetch(ctx context.Context, fetcher fetch.Fetcher, url string) (*release.Catalog, error) {
	body, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	return release.DecodeCatalog(body)
}

// Render writes entries as a table, marking the latest release and snapshot.
func Render(w io.Writer, latest release.Latest, entries []release.CatalogEntry) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Type", "Released", "Age", ""})

	for _, e := range entries {
		var mark string

		switch e.ID {
		case latest.Release:
			mark = "latest"
		case latest.Snapshot:
			mark = "latest-snapshot"
		}

		released, age := "", ""
		if !e.ReleaseTime.IsZero() {
			released = e.ReleaseTime.Format("2006-01-02")
			age = humanize.Time(e.ReleaseTime)
		}

		tw.AppendRow(table.Row{e.ID, e.Type, released, age, mark})
	}

	tw.AppendFooter(table.Row{"", "", "", "Total", len(entries)})
	tw.Render()
}
