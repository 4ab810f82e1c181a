package release

import (
	"fmt"
	"sort"
)

// RuntimeRelease is one published build of a runtime component.
type RuntimeRelease struct {
	Manifest Download `json:"manifest"`
	Version  struct {
		Name     string `json:"name"`
		Released string `json:"released"`
	} `json:"version"`
}

// RuntimeManifest maps platform token → component name → published builds.
type RuntimeManifest map[string]map[string][]RuntimeRelease

// DecodeRuntimeManifest parses the top-level runtime manifest.
func DecodeRuntimeManifest(data []byte) (RuntimeManifest, error) {
	var m RuntimeManifest
	if err := decode("runtime manifest", data, &m); err != nil {
		return nil, err
	}

	return m, nil
}

// Select returns the image manifest reference for the platform/component
// pair. Ties between several builds are broken by taking the first.
func (m RuntimeManifest) Select(platformToken, component string) (Download, bool) {
	builds := m[platformToken][component]
	if len(builds) == 0 || builds[0].Manifest.URL == "" {
		return Download{}, false
	}

	return builds[0].Manifest, true
}

// FileKind is the type of a runtime image entry.
type FileKind string

// Runtime image entry kinds.
const (
	KindFile      FileKind = "file"
	KindDirectory FileKind = "directory"
	KindLink      FileKind = "link"
)

// RuntimeDownloads holds the raw download of a runtime file.
type RuntimeDownloads struct {
	Raw Download `json:"raw"`
}

// RuntimeFile is one entry of a runtime image.
type RuntimeFile struct {
	Type       FileKind          `json:"type"`
	Executable bool              `json:"executable,omitempty"`
	Target     string            `json:"target,omitempty"`
	Downloads  *RuntimeDownloads `json:"downloads,omitempty"`
}

// RuntimeImage maps local relative paths to image entries.
type RuntimeImage struct {
	Files map[string]RuntimeFile `json:"files"`
}

// RuntimeEntry is a RuntimeFile together with its relative path.
type RuntimeEntry struct {
	Path string
	RuntimeFile
}

// DecodeRuntimeImage parses an image manifest and enforces that files carry
// a download and links carry a target.
func DecodeRuntimeImage(data []byte) (*RuntimeImage, error) {
	var img RuntimeImage
	if err := decode("runtime image", data, &img); err != nil {
		return nil, err
	}

	for p, f := range img.Files {
		switch f.Type {
		case KindFile:
			if f.Downloads == nil || f.Downloads.Raw.URL == "" {
				return nil, missing("runtime image", fmt.Sprintf("files[%q].downloads.raw", p))
			}
		case KindLink:
			if f.Target == "" {
				return nil, missing("runtime image", fmt.Sprintf("files[%q].target", p))
			}
		}
	}

	return &img, nil
}

// Partition splits the image into entries materialised in the first pass
// (files and directories) and links, each sorted by path. Unknown kinds are dropped.
func (img *RuntimeImage) Partition() (regular, links []RuntimeEntry) {
	for p, f := range img.Files {
		entry := RuntimeEntry{Path: p, RuntimeFile: f}

		switch f.Type {
		case KindFile, KindDirectory:
			regular = append(regular, entry)
		case KindLink:
			links = append(links, entry)
		}
	}

	byPath := func(entries []RuntimeEntry) func(i, j int) bool {
		return func(i, j int) bool { return entries[i].Path < entries[j].Path }
	}

	sort.Slice(regular, byPath(regular))
	sort.Slice(links, byPath(links))

	return regular, links
}
