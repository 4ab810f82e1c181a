package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the install metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	fetched       *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	bytes         *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftstage_downloads_total",
				Help: "Files fetched from the network, by kind.",
			},
			[]string{"kind"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftstage_download_skips_total",
				Help: "Downloads skipped because the destination already existed, by kind.",
			},
			[]string{"kind"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftstage_download_bytes_total",
				Help: "Bytes written by downloads, by kind.",
			},
			[]string{"kind"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "craftstage_phase_duration_seconds",
				Help:    "Duration of installation pipeline phases.",
				Buckets: prometheus.ExponentialBuckets(0.05, 4, 8),
			},
			[]string{"phase"},
		),
	}

	r.registry.MustRegister(r.fetched, r.skipped, r.bytes, r.phaseDuration)

	return r
}

// Fetched records a network download of size bytes.
func (r *Recorder) Fetched(kind string, size int) {
	if r == nil {
		return
	}

	r.fetched.WithLabelValues(kind).Inc()
	r.bytes.WithLabelValues(kind).Add(float64(size))
}

// Skipped records a download avoided by the existence check.
func (r *Recorder) Skipped(kind string) {
	if r == nil {
		return
	}

	r.skipped.WithLabelValues(kind).Inc()
}

// ObservePhase records how long a pipeline phase took.
func (r *Recorder) ObservePhase(phase string, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.phaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// FetchedCount returns the number of network downloads of kind.
func (r *Recorder) FetchedCount(kind string) float64 {
	return counterValue(r.fetched.WithLabelValues(kind))
}

// SkippedCount returns the number of skipped downloads of kind.
func (r *Recorder) SkippedCount(kind string) float64 {
	return counterValue(r.skipped.WithLabelValues(kind))
}

// WriteTextfile exports the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
