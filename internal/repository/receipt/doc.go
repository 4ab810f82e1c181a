// Package receipt persists what an install produced so that a release can
// be launched again without touching the network.
//
// Receipts are stored as JSON next to the cached descriptor, encoded through
// protobuf's Struct type and protojson.
package receipt
