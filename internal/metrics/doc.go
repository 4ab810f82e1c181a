// Package metrics counts downloads, cache hits and phase durations of an
// install in a private Prometheus registry, optionally exported as a
// node-exporter textfile.
package metrics
