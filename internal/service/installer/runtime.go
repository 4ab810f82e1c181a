package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/oshokin/craftstage/internal/domain/release"
	"github.com/oshokin/craftstage/internal/download"
	"github.com/oshokin/craftstage/internal/logger"
)

// installRuntime materialises the runtime image the release asks for.
// Files and directories are created first; links are copies of their
// targets and are written only after every file exists.
func (in *Installer) installRuntime(ctx context.Context, d *release.Descriptor) error {
	var (
		component = d.JavaVersion.Component
		token     = in.settings.Platform.RuntimeToken()
	)

	if token == "" {
		return &RuntimeUnavailableError{Component: component, Platform: in.settings.Platform.String()}
	}

	image, err := in.fetchRuntimeImage(ctx, token, component)
	if err != nil {
		return err
	}

	var (
		base           = in.layout.RuntimeDir(component, token)
		regular, links = image.Partition()
		p              = in.newPool(ctx)
	)

	for _, entry := range regular {
		p.Go(func(ctx context.Context) error {
			return in.materialise(ctx, base, entry)
		})
	}

	if err = p.Wait(); err != nil {
		return err
	}

	writer := newLinkSet(base, links)

	for _, entry := range links {
		if err = writer.materialise(entry); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Runtime installed",
		"component", component,
		"platform", token,
		"entries", len(regular)+len(links))

	return nil
}

// materialise creates a directory entry or downloads a file entry.
func (in *Installer) materialise(ctx context.Context, base string, entry release.RuntimeEntry) error {
	target, err := release.Within(base, entry.Path)
	if err != nil {
		return err
	}

	if entry.Type == release.KindDirectory {
		if err = os.MkdirAll(target, download.DefaultDirMode); err != nil {
			return fmt.Errorf("create runtime directory: %w", err)
		}

		return nil
	}

	raw := entry.Downloads.Raw

	_, err = in.downloads.FetchIfAbsent(ctx, raw.URL, target,
		download.WithSHA1(raw.SHA1),
		download.WithMode(download.ExecutableFileMode),
		download.WithKind(kindRuntime))
	if err != nil {
		return fmt.Errorf("runtime file %s: %w", entry.Path, err)
	}

	return nil
}

// fetchRuntimeImage resolves and decodes the image manifest for one
// platform/component pair.
func (in *Installer) fetchRuntimeImage(ctx context.Context, token, component string) (*release.RuntimeImage, error) {
	body, err := in.fetcher.Fetch(ctx, in.settings.RuntimeManifestURL)
	if err != nil {
		return nil, fmt.Errorf("fetch runtime manifest: %w", err)
	}

	in.metrics.Fetched(kindRuntimeManifest, len(body))

	manifest, err := release.DecodeRuntimeManifest(body)
	if err != nil {
		return nil, err
	}

	ref, ok := manifest.Select(token, component)
	if !ok {
		return nil, &RuntimeUnavailableError{Component: component, Platform: token}
	}

	body, err = in.fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch runtime image manifest: %w", err)
	}

	in.metrics.Fetched(kindRuntimeManifest, len(body))

	return release.DecodeRuntimeImage(body)
}

// linkStates track link materialisation.
const (
	linkVisiting = iota + 1
	linkDone
)

// linkSet writes image links as copies of their targets. A link whose
// target is another link of the image is written after that link.
type linkSet struct {
	base   string
	byPath map[string]release.RuntimeEntry
	state  map[string]int
}

func newLinkSet(base string, links []release.RuntimeEntry) *linkSet {
	s := &linkSet{
		base:   base,
		byPath: make(map[string]release.RuntimeEntry, len(links)),
		state:  make(map[string]int, len(links)),
	}

	for _, l := range links {
		s.byPath[path.Clean(l.Path)] = l
	}

	return s
}

// materialise writes entry, resolving link targets first.
func (s *linkSet) materialise(entry release.RuntimeEntry) error {
	key := path.Clean(entry.Path)

	switch s.state[key] {
	case linkDone:
		return nil
	case linkVisiting:
		return fmt.Errorf("%s: %w", entry.Path, errLinkCycle)
	}

	s.state[key] = linkVisiting
	target := path.Join(path.Dir(key), entry.Target)

	if dependency, ok := s.byPath[target]; ok {
		if err := s.materialise(dependency); err != nil {
			return err
		}
	}

	if err := copyLink(s.base, entry.Path, target); err != nil {
		return err
	}

	s.state[key] = linkDone

	return nil
}

// copyLink writes the bytes of target onto link, both relative to base.
// An existing link file is kept.
func copyLink(base, link, target string) error {
	linkPath, err := release.Within(base, link)
	if err != nil {
		return err
	}

	if download.Exists(linkPath) {
		return nil
	}

	source, err := release.Within(base, target)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("read link target of %s: %w", link, err)
	}

	if err = os.MkdirAll(filepath.Dir(linkPath), download.DefaultDirMode); err != nil {
		return fmt.Errorf("create link directory: %w", err)
	}

	if err = download.Write(linkPath, data, download.ExecutableFileMode); err != nil {
		return fmt.Errorf("write link %s: %w", link, err)
	}

	return nil
}

// IsRuntimeUnavailable reports whether err carries a RuntimeUnavailableError.
func IsRuntimeUnavailable(err error) bool {
	var target *RuntimeUnavailableError

	return errors.As(err, &target)
}
