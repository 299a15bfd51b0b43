// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. A split run is a short-lived batch job, so metrics are
// pushed once at the end instead of being scraped.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"topnsplit/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter    *prometheus.CounterVec // step, status
	stepDuration   *prometheus.SummaryVec // step, status
	featureCounter *prometheus.CounterVec // kind
	groupCounter   *prometheus.CounterVec // kind
	batchCounter   prometheus.Counter
}

// NewBackend constructs a Pushgateway backend. jobName defaults to
// "topnsplit"; gatewayURL is required.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "topnsplit"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Step executions of a split run, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of split run steps in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	featureCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.FeaturesTotal,
			Help: "Features per kind (read, written, dropped).",
		},
		[]string{"kind"},
	)
	groupCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.GroupsTotal,
			Help: "Top-N groups per kind (written, dropped).",
		},
		[]string{"kind"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metrics.ManifestBatches,
			Help: "Manifest batches flushed to storage.",
		},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter":    stepCounter,
		"step summary":    stepDuration,
		"feature counter": featureCounter,
		"group counter":   groupCounter,
		"batch counter":   batchCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:     gatewayURL,
		jobName:        jobName,
		reg:            reg,
		stepCounter:    stepCounter,
		stepDuration:   stepDuration,
		featureCounter: featureCounter,
		groupCounter:   groupCounter,
		batchCounter:   batchCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case metrics.FeaturesTotal:
		if b.featureCounter == nil {
			return
		}
		b.featureCounter.WithLabelValues(labels["kind"]).Add(delta)
	case metrics.GroupsTotal:
		if b.groupCounter == nil {
			return
		}
		b.groupCounter.WithLabelValues(labels["kind"]).Add(delta)
	case metrics.ManifestBatches:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway, replacing the job's group.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
