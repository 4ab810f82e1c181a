package release

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oshokin/craftstage/internal/domain/platform"
)

// ErrUnsafePath is returned for remote names that would resolve outside the installation root.
var ErrUnsafePath = errors.New("path escapes installation root")

// Layout resolves every path inside an installation root.
type Layout struct {
	// Root is the installation root; it is never relocated mid-run.
	Root string
}

// NewLayout returns a layout for root.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// LibrariesDir mirrors the upstream artifact path layout.
func (l Layout) LibrariesDir() string {
	return filepath.Join(l.Root, "libraries")
}

// LibraryPath is the local path of a library artifact. Artifact paths
// climbing out of the libraries directory are rejected.
func (l Layout) LibraryPath(artifactPath string) (string, error) {
	return Within(l.LibrariesDir(), artifactPath)
}

// VersionDir holds the cached descriptor, client archive and natives of a release.
func (l Layout) VersionDir(id string) string {
	return filepath.Join(l.Root, "versions", id)
}

// DescriptorPath is the cached descriptor of a release.
func (l Layout) DescriptorPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".json")
}

// ClientPath is the client archive of a release.
func (l Layout) ClientPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".jar")
}

// ReceiptPath is the install receipt of a release.
func (l Layout) ReceiptPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".receipt.json")
}

// NativesDir receives extracted native bundles of a release.
func (l Layout) NativesDir(id string) string {
	return filepath.Join(l.VersionDir(id), "natives")
}

// AssetsDir is the root of the asset store.
func (l Layout) AssetsDir() string {
	return filepath.Join(l.Root, "assets")
}

// AssetIndexPath is the stored asset index for assetsID.
func (l Layout) AssetIndexPath(assetsID string) (string, error) {
	if err := ValidateName(assetsID); err != nil {
		return "", err
	}

	return filepath.Join(l.AssetsDir(), "indexes", assetsID+".json"), nil
}

// AssetObjectPath is the content-addressed location of an object.
func (l Layout) AssetObjectPath(hash string) string {
	return filepath.Join(l.AssetsDir(), "objects", filepath.FromSlash(ObjectKey(hash)))
}

// RuntimeDir is the directory a runtime image is materialised into.
func (l Layout) RuntimeDir(component, platformToken string) string {
	return filepath.Join(l.Root, "runtime", component, platformToken, component)
}

// JavaExecutable is the java binary inside a materialised runtime image.
func (l Layout) JavaExecutable(component string, p platform.Platform) string {
	dir := l.RuntimeDir(component, p.RuntimeToken())
	if p.OS == platform.Darwin {
		dir = filepath.Join(dir, "jre.bundle", "Contents", "Home")
	}

	return filepath.Join(dir, "bin", "java"+p.ExecutableExt())
}

// MarkerPath guards the root against concurrent installs.
func (l Layout) MarkerPath() string {
	return filepath.Join(l.Root, ".craftstage-install.lock")
}

// Within joins the slash-separated rel onto dir and rejects results outside dir.
func Within(dir, rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%q: %w", rel, ErrUnsafePath)
	}

	return filepath.Join(dir, local), nil
}

// ValidateName checks that a remote id is usable as a single path element.
// Release ids, asset index ids and runtime components are such names.
func ValidateName(name string) error {
	if name == "." || strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) {
		return fmt.Errorf("name %q: %w", name, ErrUnsafePath)
	}

	return nil
}
