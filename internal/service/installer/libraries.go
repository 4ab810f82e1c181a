package installer

import (
	"context"
	"fmt"

	"github.com/oshokin/craftstage/internal/domain/release"
	"github.com/oshokin/craftstage/internal/download"
	"github.com/oshokin/craftstage/internal/logger"
)

// localLibrary is an applicable library with its resolved artifact path.
type localLibrary struct {
	release.Library

	path string
}

// installLibraries downloads every applicable library artifact and then
// unpacks native bundles into the release natives directory in manifest order.
func (in *Installer) installLibraries(ctx context.Context, d *release.Descriptor) error {
	libraries, err := in.applicableLibraries(ctx, d)
	if err != nil {
		return err
	}

	var (
		seen = make(map[string]struct{}, len(libraries))
		p    = in.newPool(ctx)
	)

	for _, lib := range libraries {
		if _, dup := seen[lib.path]; dup {
			continue
		}

		seen[lib.path] = struct{}{}
		artifact := lib.Downloads.Artifact

		p.Go(func(ctx context.Context) error {
			_, err := in.downloads.FetchIfAbsent(ctx, artifact.URL, lib.path,
				download.WithSHA1(artifact.SHA1),
				download.WithKind(kindLibrary))
			if err != nil {
				return fmt.Errorf("library %s: %w", lib.Name, err)
			}

			return nil
		})
	}

	if err = p.Wait(); err != nil {
		return err
	}

	nativesDir := in.layout.NativesDir(d.ID)

	for _, lib := range libraries {
		if !lib.IsNative() {
			continue
		}

		logger.DebugKV(ctx, "Extracting natives", "library", lib.Name)

		if err = in.extractor.Extract(lib.path, nativesDir); err != nil {
			return fmt.Errorf("extract natives of %s: %w", lib.Name, err)
		}
	}

	logger.InfoKV(ctx, "Libraries installed", "count", len(libraries))

	return nil
}

// applicableLibraries returns the libraries with an artifact whose rules allow
// them on the installer platform, in manifest order. An artifact path outside
// the libraries directory fails the whole phase before anything is fetched.
func (in *Installer) applicableLibraries(ctx context.Context, d *release.Descriptor) ([]localLibrary, error) {
	result := make([]localLibrary, 0, len(d.Libraries))

	for _, lib := range d.Libraries {
		if rule, blocked := release.BlockingRule(lib.Rules, in.settings.Platform); blocked {
			logger.DebugKV(ctx, "Skipping library", "library", lib.Name, "rule", rule.Action)

			continue
		}

		if lib.Downloads.Artifact == nil {
			continue
		}

		path, err := in.layout.LibraryPath(lib.Downloads.Artifact.Path)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", lib.Name, err)
		}

		result = append(result, localLibrary{Library: lib, path: path})
	}

	return result, nil
}
