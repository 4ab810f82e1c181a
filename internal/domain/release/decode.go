package release

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrDecode marks a malformed or schema-mismatched document.
	ErrDecode = errors.New("decode document")
	// errMissingField is wrapped when a required field is empty.
	errMissingField = errors.New("required field is missing")
)

// decode unmarshals data into v and tags failures with ErrDecode.
func decode(kind string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, kind, err)
	}

	return nil
}

// missing reports a required field absent from a document.
func missing(kind, field string) error {
	return fmt.Errorf("%w: %s: %s: %w", ErrDecode, kind, field, errMissingField)
}

// escaping reports a field naming a path outside the installation root.
func escaping(kind, field string, err error) error {
	return fmt.Errorf("%w: %s: %s: %w", ErrDecode, kind, field, err)
}
