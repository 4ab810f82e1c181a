package release

import (
	"fmt"
	"strings"

	"github.com/oshokin/craftstage/internal/domain/platform"
)

// defaultJavaComponent is used by descriptors that predate the javaVersion block.
const defaultJavaComponent = "jre-legacy"

// Download is a remote file reference with optional integrity metadata.
type Download struct {
	ID   string `json:"id,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// JavaVersion names the runtime component a release needs.
type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// Downloads holds the client archive reference.
type Downloads struct {
	Client Download `json:"client"`
}

// Descriptor is the authoritative per-release manifest.
type Descriptor struct {
	ID                     string      `json:"id"`
	Assets                 string      `json:"assets"`
	AssetIndex             Download    `json:"assetIndex"`
	ComplianceLevel        int         `json:"complianceLevel"`
	MainClass              string      `json:"mainClass"`
	MinimumLauncherVersion int         `json:"minimumLauncherVersion"`
	Type                   string      `json:"type"`
	Downloads              Downloads   `json:"downloads"`
	JavaVersion            JavaVersion `json:"javaVersion"`
	Libraries              []Library   `json:"libraries"`
}

// Artifact is the downloadable file of a library.
type Artifact struct {
	Path string `json:"path"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// LibraryDownloads wraps the library artifact.
type LibraryDownloads struct {
	Artifact *Artifact `json:"artifact,omitempty"`
}

// Library is a declared dependency of a release.
type Library struct {
	Name      string           `json:"name"`
	Downloads LibraryDownloads `json:"downloads"`
	Rules     []Rule           `json:"rules,omitempty"`
}

// Coordinate is the parsed group:artifact:version:classifier identifier.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
}

// ParseCoordinate splits a library name into at most four segments;
// missing segments stay empty and anything past the third colon belongs
// to the classifier.
func ParseCoordinate(name string) Coordinate {
	var parts [4]string

	copy(parts[:], strings.SplitN(name, ":", len(parts)))

	return Coordinate{
		Group:      parts[0],
		Artifact:   parts[1],
		Version:    parts[2],
		Classifier: parts[3],
	}
}

// IsNative reports whether the coordinate names a native bundle.
func (c Coordinate) IsNative() bool {
	return c.Classifier != ""
}

// Coordinate parses the library name.
func (l *Library) Coordinate() Coordinate {
	return ParseCoordinate(l.Name)
}

// IsNative reports whether the library is a native bundle rather than a classpath jar.
func (l *Library) IsNative() bool {
	return l.Coordinate().IsNative()
}

// Applies evaluates the library rules against p.
func (l *Library) Applies(p platform.Platform) bool {
	return Applies(l.Rules, p)
}

// DecodeDescriptor parses a release descriptor and checks the fields the
// installation pipeline depends on.
func DecodeDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := decode("descriptor", data, &d); err != nil {
		return nil, err
	}

	switch {
	case d.ID == "":
		return nil, missing("descriptor", "id")
	case d.MainClass == "":
		return nil, missing("descriptor", "mainClass")
	case d.Downloads.Client.URL == "":
		return nil, missing("descriptor", "downloads.client.url")
	case d.AssetIndex.URL == "":
		return nil, missing("descriptor", "assetIndex.url")
	}

	if d.Assets == "" {
		d.Assets = d.AssetIndex.ID
	}

	if d.JavaVersion.Component == "" {
		d.JavaVersion = JavaVersion{Component: defaultJavaComponent, MajorVersion: 8}
	}

	for i := range d.Libraries {
		a := d.Libraries[i].Downloads.Artifact
		if a == nil {
			continue
		}

		if a.Path == "" || a.URL == "" {
			return nil, missing("descriptor", fmt.Sprintf("libraries[%d].downloads.artifact", i))
		}

		if _, err := Within(".", a.Path); err != nil {
			return nil, escaping("descriptor", fmt.Sprintf("libraries[%d].downloads.artifact.path", i), err)
		}
	}

	for field, name := range map[string]string{
		"id":                    d.ID,
		"assets":                d.Assets,
		"javaVersion.component": d.JavaVersion.Component,
	} {
		if err := ValidateName(name); err != nil {
			return nil, escaping("descriptor", field, err)
		}
	}

	return &d, nil
}
