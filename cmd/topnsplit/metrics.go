package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"topnsplit/internal/config"
	"topnsplit/internal/metrics"
	"topnsplit/internal/metrics/datadog"
	"topnsplit/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns the function
// that flushes it at the end of the run. A backend that fails to initialize
// is logged and replaced by the no-op backend.
func setupMetrics(log *zap.Logger, m config.Metrics) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "", "nop", "none":
		log.Debug("metrics disabled")
		return func() {}
	case "pushgateway":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  m.Namespace,
			GlobalTags: []string{"job:" + m.Job},
		})
	default:
		err = fmt.Errorf("unknown backend %q", m.Backend)
	}
	if err != nil {
		log.Warn("metrics backend unavailable, using nop", zap.String("backend", m.Backend), zap.Error(err))
		return func() {}
	}

	log.Debug("metrics enabled", zap.String("backend", m.Backend), zap.String("job", m.Job))
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}
}

// timed runs fn as one step of the run and records its outcome.
func timed(job, step string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, step, err, time.Since(start))
	return err
}
