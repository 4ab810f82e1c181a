package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	// fileMode is applied to extracted files; native libraries must be loadable.
	fileMode os.FileMode = 0o755
	// dirMode is applied to extracted directories.
	dirMode os.FileMode = 0o755
	// maxEntrySize bounds a single extracted entry.
	maxEntrySize int64 = 1 << 30
)

var (
	// ErrArchive marks corrupt or unsupported bundles.
	ErrArchive = errors.New("archive failure")
	// errUnsafePath is returned for entries that would escape the destination.
	errUnsafePath = errors.New("entry escapes destination")
	// errEntryTooLarge is returned for entries above maxEntrySize.
	errEntryTooLarge = errors.New("entry too large")
)

// Extractor materialises the entries of an archive into a directory.
type Extractor interface {
	Extract(src, destDir string) error
}

// ZipExtractor extracts zip and jar archives. Existing files are overwritten;
// jar signature metadata under META-INF/ is skipped.
type ZipExtractor struct{}

// Extract unpacks src into destDir, creating destDir when needed.
func (ZipExtractor) Extract(src, destDir string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrArchive, src, err)
	}

	defer func() {
		_ = reader.Close()
	}()

	if err = os.MkdirAll(destDir, dirMode); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	for _, entry := range reader.File {
		if strings.HasPrefix(entry.Name, "META-INF/") {
			continue
		}

		target, err := safeJoin(destDir, entry.Name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrArchive, src, err)
		}

		if entry.FileInfo().IsDir() {
			if err = os.MkdirAll(target, dirMode); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}

			continue
		}

		if err = extractFile(entry, target); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrArchive, src, err)
		}
	}

	return nil
}

// extractFile writes a single entry to target.
func extractFile(entry *zip.File, target string) error {
	if entry.UncompressedSize64 > uint64(maxEntrySize) {
		return fmt.Errorf("%s: %w", entry.Name, errEntryTooLarge)
	}

	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return err
	}

	in, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", entry.Name, err)
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(target), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, io.LimitReader(in, maxEntrySize)); err != nil {
		_ = out.Close()

		return fmt.Errorf("write %s: %w", entry.Name, err)
	}

	return out.Close()
}

// safeJoin resolves name under dir, rejecting absolute and parent-relative entries.
func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%q: %w", name, errUnsafePath)
	}

	target := filepath.Join(dir, filepath.FromSlash(name))

	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", name, errUnsafePath)
	}

	return target, nil
}
