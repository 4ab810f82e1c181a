package verifier

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // The catalog publishes SHA-1 digests.
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/oshokin/craftstage/internal/domain/platform"
	"github.com/oshokin/craftstage/internal/domain/release"
)

// Problem reasons.
const (
	ReasonMissing  = "missing"
	ReasonMismatch = "checksum mismatch"
)

// Problem is one installed file that does not match its digest.
type Problem struct {
	Kind   string
	Path   string
	Reason string
}

// Report is the outcome of a verification run.
type Report struct {
	// Checked is the number of files hashed or found missing.
	Checked int
	// Problems are sorted by path.
	Problems []Problem
}

// OK reports whether every checked file matched.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

// target is a file with its expected digest.
type target struct {
	kind string
	path string
	sum  []byte
}

// Verifier hashes release files in parallel.
type Verifier struct {
	layout      release.Layout
	platform    platform.Platform
	concurrency int
}

// New builds a verifier for the installation root behind layout.
func New(layout release.Layout, p platform.Platform, concurrency int) *Verifier {
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Verifier{layout: layout, platform: p, concurrency: concurrency}
}

// Verify checks the applicable libraries, the client archive and, when index
// is not nil, every asset object. Files without a published digest are skipped.
func (v *Verifier) Verify(ctx context.Context, d *release.Descriptor, index *release.AssetIndex) (*Report, error) {
	targets, err := v.targets(d, index)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		report = &Report{Checked: len(targets)}
		p      = pool.New().WithMaxGoroutines(v.concurrency).WithContext(ctx).WithCancelOnError().WithFirstError()
	)

	for _, t := range targets {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			reason, err := check(t)
			if err != nil || reason == "" {
				return err
			}

			mu.Lock()
			report.Problems = append(report.Problems, Problem{Kind: t.kind, Path: t.path, Reason: reason})
			mu.Unlock()

			return nil
		})
	}

	if err = p.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Problems, func(i, j int) bool {
		return report.Problems[i].Path < report.Problems[j].Path
	})

	return report, nil
}

// Repair removes every problematic file so that the next install fetches it again.
func Repair(report *Report) error {
	for _, p := range report.Problems {
		if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p.Path, err)
		}
	}

	return nil
}

func (v *Verifier) targets(d *release.Descriptor, index *release.AssetIndex) ([]target, error) {
	var (
		out  []target
		seen = make(map[string]struct{})
	)

	add := func(kind, path, digest string) error {
		if digest == "" {
			return nil
		}

		if _, dup := seen[path]; dup {
			return nil
		}

		sum, err := hex.DecodeString(digest)
		if err != nil {
			return fmt.Errorf("parse sha1 of %s: %w", path, err)
		}

		seen[path] = struct{}{}
		out = append(out, target{kind: kind, path: path, sum: sum})

		return nil
	}

	for _, lib := range d.Libraries {
		a := lib.Downloads.Artifact
		if a == nil || !lib.Applies(v.platform) {
			continue
		}

		path, err := v.layout.LibraryPath(a.Path)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", lib.Name, err)
		}

		if err = add("library", path, a.SHA1); err != nil {
			return nil, err
		}
	}

	if err := add("client", v.layout.ClientPath(d.ID), d.Downloads.Client.SHA1); err != nil {
		return nil, err
	}

	if index != nil {
		for _, object := range index.Objects {
			if err := add("asset", v.layout.AssetObjectPath(object.Hash), object.Hash); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// check returns a problem reason, or "" when the file matches.
func check(t target) (string, error) {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return ReasonMissing, nil
	}

	if err != nil {
		return "", fmt.Errorf("open %s: %w", t.path, err)
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha1.New() //nolint:gosec // The catalog publishes SHA-1 digests.
	if _, err = io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", t.path, err)
	}

	if !bytes.Equal(h.Sum(nil), t.sum) {
		return ReasonMismatch, nil
	}

	return "", nil
}
