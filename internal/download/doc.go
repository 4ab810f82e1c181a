// Package download implements the skip-if-present download primitive every
// install phase is built on.
//
// An existing destination is never re-fetched or re-validated. A missing one
// is fetched, optionally checked against its SHA-1, staged next to the
// destination and renamed into place, so an interrupted run leaves no
// truncated file behind that a later existence check would trust.
package download
