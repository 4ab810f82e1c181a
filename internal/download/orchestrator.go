package download

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha1" //nolint:gosec // The catalog publishes SHA-1 digests.
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/dustin/go-humanize"

	"github.com/oshokin/craftstage/internal/fetch"
	"github.com/oshokin/craftstage/internal/logger"
	"github.com/oshokin/craftstage/internal/metrics"
)

const (
	// DefaultFileMode is applied to downloaded files.
	DefaultFileMode os.FileMode = 0o644
	// ExecutableFileMode is applied to runtime files marked executable.
	ExecutableFileMode os.FileMode = 0o755
	// DefaultDirMode is used for created ancestor directories.
	DefaultDirMode os.FileMode = 0o755

	// partSuffix names the staging file next to the destination.
	partSuffix = ".part"
	// defaultKind labels metrics when the caller does not set one.
	defaultKind = "file"
)

// ErrChecksum is returned when downloaded bytes do not match the expected digest.
var ErrChecksum = errors.New("checksum mismatch")

// Orchestrator wraps a Fetcher with the existence check.
// Concurrent calls are safe as long as they target different paths.
type Orchestrator struct {
	fetcher fetch.Fetcher
	metrics *metrics.Recorder
}

// request collects per-call options.
type request struct {
	kind     string
	mode     os.FileMode
	checksum []byte
	err      error
}

// Option configures a single FetchIfAbsent call.
type Option func(*request)

// WithKind labels the download in logs and metrics.
func WithKind(kind string) Option {
	return func(r *request) {
		if kind != "" {
			r.kind = kind
		}
	}
}

// WithMode sets the permission bits of the written file.
func WithMode(mode os.FileMode) Option {
	return func(r *request) {
		if mode != 0 {
			r.mode = mode
		}
	}
}

// WithSHA1 verifies the downloaded bytes against a hex SHA-1 digest.
// An empty digest disables verification.
func WithSHA1(digest string) Option {
	return func(r *request) {
		if digest == "" {
			return
		}

		sum, err := hex.DecodeString(digest)
		if err != nil {
			r.err = fmt.Errorf("parse sha1 %q: %w", digest, err)
			return
		}

		r.checksum = sum
	}
}

// New builds an orchestrator. recorder may be nil.
func New(fetcher fetch.Fetcher, recorder *metrics.Recorder) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		metrics: recorder,
	}
}

// Exists reports whether path is present. Stat failures other than
// "not exist" count as present so that they surface on the next write.
func Exists(path string) bool {
	_, err := os.Stat(path)

	return !errors.Is(err, os.ErrNotExist)
}

// FetchIfAbsent downloads url to path unless path already exists.
// It reports whether a network fetch happened.
func (o *Orchestrator) FetchIfAbsent(ctx context.Context, url, path string, opts ...Option) (bool, error) {
	req := &request{
		kind: defaultKind,
		mode: DefaultFileMode,
	}

	for _, opt := range opts {
		opt(req)
	}

	if req.err != nil {
		return false, req.err
	}

	if Exists(path) {
		o.metrics.Skipped(req.kind)
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirMode); err != nil {
		return false, fmt.Errorf("create parent of %s: %w", path, err)
	}

	body, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		return false, err
	}

	if err = stage(body, path, req); err != nil {
		return false, err
	}

	o.metrics.Fetched(req.kind, len(body))
	logger.DebugKV(ctx, "Downloaded",
		"kind", req.kind,
		"path", path,
		"size", humanize.Bytes(uint64(len(body))))

	return true, nil
}

// Refresh always downloads url to path, replacing any previous copy, and
// returns the body. Used for documents that are re-read on every run.
func (o *Orchestrator) Refresh(ctx context.Context, url, path string, opts ...Option) ([]byte, error) {
	req := &request{
		kind: defaultKind,
		mode: DefaultFileMode,
	}

	for _, opt := range opts {
		opt(req)
	}

	if req.err != nil {
		return nil, req.err
	}

	if err := os.MkdirAll(filepath.Dir(path), DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create parent of %s: %w", path, err)
	}

	body, err := o.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if err = stage(body, path, req); err != nil {
		return nil, err
	}

	o.metrics.Fetched(req.kind, len(body))

	return body, nil
}

// Write publishes body at path through the same staging file used for
// downloads, so readers never observe a partial file.
func Write(path string, body []byte, mode os.FileMode) error {
	return stage(body, path, &request{mode: mode})
}

// stage writes body to path through a sibling staging file. go-update
// verifies the checksum and replaces the staging file; the final rename
// publishes the complete file.
func stage(body []byte, path string, req *request) error {
	partPath := path + partSuffix

	// go-update swaps an existing target, so the staging file must exist.
	part, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", partPath, err)
	}

	if err = part.Close(); err != nil {
		return fmt.Errorf("close %s: %w", partPath, err)
	}

	options := goupdate.Options{
		TargetPath: partPath,
		TargetMode: req.mode,
	}

	if req.checksum != nil {
		options.Checksum = req.checksum
		options.Hash = crypto.SHA1
	}

	if err = goupdate.Apply(bytes.NewReader(body), options); err != nil {
		_ = os.Remove(partPath)

		if req.checksum != nil && !matches(body, req.checksum) {
			return fmt.Errorf("%s: %w", path, ErrChecksum)
		}

		return fmt.Errorf("stage %s: %w", path, err)
	}

	if err = os.Rename(partPath, path); err != nil {
		_ = os.Remove(partPath)

		return fmt.Errorf("publish %s: %w", path, err)
	}

	return nil
}

// matches reports whether body hashes to sum.
func matches(body, sum []byte) bool {
	got := sha1.Sum(body) //nolint:gosec // The catalog publishes SHA-1 digests.

	return bytes.Equal(got[:], sum)
}
