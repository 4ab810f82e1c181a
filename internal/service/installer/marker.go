package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/logger"
)

// marker is a pid file guarding an installation root against concurrent installs.
type marker struct {
	// path is the marker file location.
	path string
	// alive reports whether pid belongs to another running craftstage process.
	alive func(pid int) bool
}

func newMarker(path string) *marker {
	return &marker{
		path:  path,
		alive: isCraftstageProcess,
	}
}

// acquire creates the marker, clearing it first when its owner is gone.
// The returned function removes the marker.
func (m *marker) acquire(ctx context.Context) (func(), error) {
	if contents, err := os.ReadFile(m.path); err == nil {
		pid, convErr := strconv.Atoi(strings.TrimSpace(string(contents)))
		if convErr == nil && m.alive(pid) {
			return nil, fmt.Errorf("pid %d: %w", pid, ErrInstallInProgress)
		}

		logger.InfoKV(ctx, "Removing stale install marker", "path", m.path)

		if err = os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale marker: %w", err)
		}
	}

	file, err := os.OpenFile(m.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrInstallInProgress
		}

		return nil, fmt.Errorf("create install marker: %w", err)
	}

	_, err = file.WriteString(strconv.Itoa(os.Getpid()))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(m.path)

		return nil, fmt.Errorf("write install marker: %w", err)
	}

	return func() {
		_ = os.Remove(m.path)
	}, nil
}

// isCraftstageProcess reports whether pid is a live process running the same
// executable as this one. The current process never counts.
func isCraftstageProcess(pid int) bool {
	self := os.Getpid()
	if pid <= 0 || pid == self {
		return false
	}

	other, err := ps.FindProcess(pid)
	if err != nil || other == nil {
		return false
	}

	current, err := ps.FindProcess(self)
	if err != nil || current == nil {
		return true
	}

	return other.Executable() == current.Executable()
}
