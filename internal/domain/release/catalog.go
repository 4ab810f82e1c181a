package release

import (
	"errors"
	"fmt"
	"time"
)

// ErrReleaseNotFound is returned when the catalog has no entry for a release id.
var ErrReleaseNotFound = errors.New("release not found in catalog")

// CatalogEntry is one row of the remote release catalog.
type CatalogEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	SHA1        string    `json:"sha1,omitempty"`
	ReleaseTime time.Time `json:"releaseTime"`
}

// Latest names the newest release and snapshot.
type Latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// Catalog is the remote index of installable releases.
type Catalog struct {
	Latest   Latest         `json:"latest"`
	Versions []CatalogEntry `json:"versions"`
}

// DecodeCatalog parses the release catalog document.
func DecodeCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := decode("catalog", data, &c); err != nil {
		return nil, err
	}

	for i, v := range c.Versions {
		if v.ID == "" || v.URL == "" {
			return nil, missing("catalog", fmt.Sprintf("versions[%d].id/url", i))
		}

		if err := ValidateName(v.ID); err != nil {
			return nil, escaping("catalog", fmt.Sprintf("versions[%d].id", i), err)
		}
	}

	return &c, nil
}

// Resolve returns the entry for id. The aliases "latest" and "latest-snapshot"
// follow the catalog's Latest block.
func (c *Catalog) Resolve(id string) (CatalogEntry, error) {
	switch id {
	case "latest":
		id = c.Latest.Release
	case "latest-snapshot":
		id = c.Latest.Snapshot
	}

	for _, v := range c.Versions {
		if v.ID == id {
			return v, nil
		}
	}

	return CatalogEntry{}, fmt.Errorf("%q: %w", id, ErrReleaseNotFound)
}

// Filter returns the entries of the given type in catalog order; an empty
// type returns every entry.
func (c *Catalog) Filter(releaseType string) []CatalogEntry {
	if releaseType == "" {
		return c.Versions
	}

	out := make([]CatalogEntry, 0, len(c.Versions))

	for _, v := range c.Versions {
		if v.Type == releaseType {
			out = append(out, v)
		}
	}

	return out
}
