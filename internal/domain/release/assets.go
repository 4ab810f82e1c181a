package release

import (
	"errors"
	"fmt"
	"path"
)

// assetHashLength is the hex length of a SHA-1 object digest.
const assetHashLength = 40

// ErrBadAssetHash is returned for index entries whose hash is not 40 hex characters.
var ErrBadAssetHash = errors.New("asset hash is not a 40-character hex digest")

// AssetObject is one entry of an asset index.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size,omitempty"`
}

// AssetIndex maps logical asset names to stored objects.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// DecodeAssetIndex parses an asset index and validates every hash.
func DecodeAssetIndex(data []byte) (*AssetIndex, error) {
	var idx AssetIndex
	if err := decode("asset index", data, &idx); err != nil {
		return nil, err
	}

	for name, obj := range idx.Objects {
		if !isHexDigest(obj.Hash, assetHashLength) {
			return nil, fmt.Errorf("%w: asset %q: %w", ErrDecode, name, ErrBadAssetHash)
		}
	}

	return &idx, nil
}

// ObjectKey is the fan-out path of an object relative to the objects
// directory or the asset host: "<hh>/<hash>".
func ObjectKey(hash string) string {
	return path.Join(hash[:2], hash)
}

// isHexDigest reports whether value is exactly expectedLen hex characters.
func isHexDigest(value string, expectedLen int) bool {
	if len(value) != expectedLen {
		return false
	}

	for _, ch := range value {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') && (ch < 'A' || ch > 'F') {
			return false
		}
	}

	return true
}
