package installer

import (
	"errors"
	"fmt"
)

var (
	// ErrInstallInProgress is returned when another craftstage process holds the root.
	ErrInstallInProgress = errors.New("another install is running in this root")
	// errLinkCycle is returned for runtime links that lead back to themselves.
	errLinkCycle = errors.New("runtime link cycle")
)

// RuntimeUnavailableError reports that no runtime image is published for the
// requested component on this platform. The install cannot continue.
type RuntimeUnavailableError struct {
	Component string
	Platform  string
}

// Error implements error.
func (e *RuntimeUnavailableError) Error() string {
	return fmt.Sprintf("runtime component %q is not available for platform %q", e.Component, e.Platform)
}
