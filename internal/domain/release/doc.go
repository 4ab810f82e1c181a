// Package release contains the documents published by the release catalog
// (catalog, descriptor, asset index, runtime manifests), the library rule
// evaluator and the on-disk layout of an installation root.
//
// All documents are read-only after decoding.
package release
