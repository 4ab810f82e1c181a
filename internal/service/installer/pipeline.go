package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/craftstage/internal/domain/release"
	"github.com/oshokin/craftstage/internal/download"
	"github.com/oshokin/craftstage/internal/logger"
)

// Install resolves releaseID against the catalog and stages it under the
// installation root. Any failure aborts the install; files already written
// stay in place and are reused by the next run.
func (in *Installer) Install(ctx context.Context, releaseID string) (*Installation, error) {
	ctx = logger.WithKV(logger.WithName(ctx, "installer"), "release", releaseID)

	if err := os.MkdirAll(in.layout.Root, download.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create installation root: %w", err)
	}

	unlock, err := in.marker.acquire(ctx)
	if err != nil {
		return nil, err
	}

	defer unlock()

	logger.InfoKV(ctx, "Resolving release", "catalog", in.settings.CatalogURL, "platform", in.settings.Platform)

	catalog, err := in.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := catalog.Resolve(releaseID)
	if err != nil {
		return nil, err
	}

	descriptor, err := in.fetchDescriptor(ctx, entry)
	if err != nil {
		return nil, err
	}

	steps := []struct {
		name string
		run  func(context.Context, *release.Descriptor) error
	}{
		{"libraries", in.installLibraries},
		{"assets", in.installAssets},
		{"client", in.installClient},
		{"runtime", in.installRuntime},
	}

	for _, step := range steps {
		err = in.phase(ctx, step.name, func(ctx context.Context) error {
			return step.run(ctx, descriptor)
		})
		if err != nil {
			return nil, fmt.Errorf("install %s: %w", step.name, err)
		}
	}

	classpath, err := BuildClasspath(descriptor, in.layout, in.settings.Platform)
	if err != nil {
		return nil, fmt.Errorf("build classpath: %w", err)
	}

	installation, err := in.finish(descriptor, classpath)
	if err != nil {
		return nil, err
	}

	if err = in.receipts.Save(ctx, installation.Receipt()); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Release installed", "java", installation.JavaPath)

	return installation, nil
}

// FetchCatalog downloads and decodes the release catalog.
func (in *Installer) FetchCatalog(ctx context.Context) (*release.Catalog, error) {
	body, err := in.fetcher.Fetch(ctx, in.settings.CatalogURL)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	in.metrics.Fetched(kindCatalog, len(body))

	return release.DecodeCatalog(body)
}

// fetchDescriptor downloads the descriptor, stores it verbatim as the local
// cache and decodes it.
func (in *Installer) fetchDescriptor(ctx context.Context, entry release.CatalogEntry) (*release.Descriptor, error) {
	logger.Info(ctx, "Downloading release descriptor")

	body, err := in.downloads.Refresh(ctx, entry.URL, in.layout.DescriptorPath(entry.ID),
		download.WithSHA1(entry.SHA1),
		download.WithKind(kindDescriptor))
	if err != nil {
		return nil, fmt.Errorf("fetch descriptor: %w", err)
	}

	return release.DecodeDescriptor(body)
}

// installClient downloads the client archive unless it is already present.
func (in *Installer) installClient(ctx context.Context, d *release.Descriptor) error {
	client := d.Downloads.Client

	fetched, err := in.downloads.FetchIfAbsent(ctx, client.URL, in.layout.ClientPath(d.ID),
		download.WithSHA1(client.SHA1),
		download.WithKind(kindClient))
	if err != nil {
		return err
	}

	if !fetched {
		logger.Info(ctx, "Client already installed")
	}

	return nil
}

// finish resolves the absolute paths handed to the launch step.
func (in *Installer) finish(d *release.Descriptor, classpath string) (*Installation, error) {
	paths := map[string]string{
		"natives": in.layout.NativesDir(d.ID),
		"java":    in.layout.JavaExecutable(d.JavaVersion.Component, in.settings.Platform),
		"client":  in.layout.ClientPath(d.ID),
		"assets":  in.layout.AssetsDir(),
	}

	for name, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s path: %w", name, err)
		}

		paths[name] = abs
	}

	return &Installation{
		Descriptor: d,
		Classpath:  classpath,
		NativesDir: paths["natives"],
		JavaPath:   paths["java"],
		ClientPath: paths["client"],
		AssetsDir:  paths["assets"],
	}, nil
}
