package installer

import (
	"context"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/oshokin/craftstage/internal/archive"
	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/domain/platform"
	"github.com/oshokin/craftstage/internal/domain/release"
	"github.com/oshokin/craftstage/internal/download"
	"github.com/oshokin/craftstage/internal/fetch"
	"github.com/oshokin/craftstage/internal/logger"
	"github.com/oshokin/craftstage/internal/metrics"
	"github.com/oshokin/craftstage/internal/repository/receipt"
)

// Download kinds used in logs and metrics.
const (
	kindCatalog         = "catalog"
	kindDescriptor      = "descriptor"
	kindLibrary         = "library"
	kindAssetIndex      = "asset-index"
	kindAsset           = "asset"
	kindClient          = "client"
	kindRuntime         = "runtime"
	kindRuntimeManifest = "runtime-manifest"
)

// Settings are the endpoints and limits an Installer works with.
type Settings struct {
	CatalogURL         string
	AssetsURL          string
	RuntimeManifestURL string
	Root               string
	Platform           platform.Platform
	Concurrency        int
}

// Installer runs the installation pipeline against one installation root.
type Installer struct {
	settings  Settings
	layout    release.Layout
	fetcher   fetch.Fetcher
	downloads *download.Orchestrator
	extractor archive.Extractor
	receipts  receipt.Repository
	metrics   *metrics.Recorder
	marker    *marker
}

// Installation is everything the launch step needs.
type Installation struct {
	Descriptor *release.Descriptor
	Classpath  string
	NativesDir string
	JavaPath   string
	ClientPath string
	AssetsDir  string
}

// New wires an installer from its collaborators. recorder may be nil.
func New(settings Settings, fetcher fetch.Fetcher, extractor archive.Extractor, recorder *metrics.Recorder) *Installer {
	if settings.Concurrency <= 0 {
		settings.Concurrency = 1
	}

	layout := release.NewLayout(settings.Root)

	return &Installer{
		settings:  settings,
		layout:    layout,
		fetcher:   fetcher,
		downloads: download.New(fetcher, recorder),
		extractor: extractor,
		receipts:  receipt.NewFileRepository(layout),
		metrics:   recorder,
		marker:    newMarker(layout.MarkerPath()),
	}
}

// NewFromConfig wires an installer for the current platform over HTTP.
func NewFromConfig(cfg *config.Config, recorder *metrics.Recorder) *Installer {
	settings := Settings{
		CatalogURL:         cfg.CatalogURL,
		AssetsURL:          cfg.AssetsURL,
		RuntimeManifestURL: cfg.RuntimeManifestURL,
		Root:               cfg.Root,
		Platform:           platform.Current(),
		Concurrency:        cfg.Concurrency,
	}

	return New(settings, fetch.NewHTTPFetcher(fetch.WithTimeout(cfg.Timeout)), archive.ZipExtractor{}, recorder)
}

// Layout exposes the resolved installation root layout.
func (in *Installer) Layout() release.Layout {
	return in.layout
}

// Receipt converts the installation into its persisted form.
func (inst *Installation) Receipt() *receipt.Receipt {
	return &receipt.Receipt{
		VersionID:   inst.Descriptor.ID,
		ReleaseType: inst.Descriptor.Type,
		MainClass:   inst.Descriptor.MainClass,
		Classpath:   inst.Classpath,
		NativesDir:  inst.NativesDir,
		JavaPath:    inst.JavaPath,
		AssetsDir:   inst.AssetsDir,
		AssetsID:    inst.Descriptor.Assets,
		InstalledAt: time.Now(),
	}
}

// newPool returns a bounded pool that cancels remaining work on the first error.
func (in *Installer) newPool(ctx context.Context) *pool.ContextPool {
	return pool.New().
		WithMaxGoroutines(in.settings.Concurrency).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
}

// phase runs fn and records its duration.
func (in *Installer) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	started := time.Now()
	err := fn(logger.WithName(ctx, name))

	in.metrics.ObservePhase(name, time.Since(started))

	return err
}

// joinURL appends a slash-separated key to a base URL.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
