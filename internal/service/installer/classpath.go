package installer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oshokin/craftstage/internal/domain/platform"
	"github.com/oshokin/craftstage/internal/domain/release"
)

// BuildClasspath lists the absolute paths of applicable non-native library
// artifacts in manifest order, then the client archive, joined by the
// platform's path list separator. Repeated artifacts are kept.
func BuildClasspath(d *release.Descriptor, layout release.Layout, p platform.Platform) (string, error) {
	entries := make([]string, 0, len(d.Libraries)+1)

	for _, lib := range d.Libraries {
		if lib.Downloads.Artifact == nil || lib.IsNative() || !lib.Applies(p) {
			continue
		}

		local, err := layout.LibraryPath(lib.Downloads.Artifact.Path)
		if err != nil {
			return "", fmt.Errorf("library %s: %w", lib.Name, err)
		}

		abs, err := filepath.Abs(local)
		if err != nil {
			return "", fmt.Errorf("resolve library %s: %w", lib.Name, err)
		}

		entries = append(entries, abs)
	}

	client, err := filepath.Abs(layout.ClientPath(d.ID))
	if err != nil {
		return "", fmt.Errorf("resolve client archive: %w", err)
	}

	entries = append(entries, client)

	return strings.Join(entries, p.PathListSeparator()), nil
}
