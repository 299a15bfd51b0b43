// Package metrics records operational metrics of split runs behind a small,
// backend-agnostic interface.
//
// The default backend is a no-op, so every Record* call is safe whether or
// not a concrete backend (prompush, datadog) was installed with SetBackend.
package metrics

import "time"

// Metric names shared by all backends.
const (
	StepTotal       = "topnsplit_step_total"
	StepDuration    = "topnsplit_step_duration_seconds"
	FeaturesTotal   = "topnsplit_features_total"
	GroupsTotal     = "topnsplit_groups_total"
	ManifestBatches = "topnsplit_manifest_batches_total"
)

// Steps of a run.
const (
	StepRead     = "read"
	StepSplit    = "split"
	StepWrite    = "write"
	StepManifest = "manifest"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
// It must be called before any Record* call of a run.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of step and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordFeatures counts features by kind: "read", "written" or "dropped".
func RecordFeatures(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(FeaturesTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordGroups counts groups by kind: "written" or "dropped".
func RecordGroups(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(GroupsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches counts manifest batches flushed to storage.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(ManifestBatches, float64(delta), Labels{
		"job": job,
	})
}
