// Package verifier re-hashes an installed release against the digests
// published in its descriptor and asset index.
package verifier
