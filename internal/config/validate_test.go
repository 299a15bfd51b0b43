package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validJob() Job {
	return Job{
		Input:      "in/land_use.shp",
		OutputDir:  "out",
		N:          2,
		Attributes: []string{"farming", "forestry", "fishing"},
		Workers:    1,
		Output:     "table",
		Log:        Log{Level: "info", Format: "console"},
	}
}

func TestValidateJob_Valid(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ValidateJob(validJob()))
}

func TestValidateJob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Job)
		path     string
		severity IssueSeverity
	}{
		{"missing input", func(j *Job) { j.Input = "" }, "input", SeverityError},
		{"non shp input", func(j *Job) { j.Input = "in/land_use.gpkg" }, "input", SeverityWarning},
		{"missing output dir", func(j *Job) { j.OutputDir = " " }, "output_dir", SeverityError},
		{"bad encoding", func(j *Job) { j.Encoding = "klingon" }, "encoding", SeverityError},
		{"bad output", func(j *Job) { j.Output = "xml" }, "output", SeverityError},
		{"n zero", func(j *Job) { j.N = 0 }, "n", SeverityError},
		{"n eleven", func(j *Job) { j.N = 11; j.Attributes = make([]string, 0) }, "n", SeverityError},
		{"n exceeds selection", func(j *Job) { j.N = 3; j.Attributes = []string{"a", "b", "a"} }, "n", SeverityError},
		{"duplicates", func(j *Job) { j.Attributes = []string{"a", "b", "b"} }, "attributes", SeverityWarning},
		{"no attributes", func(j *Job) { j.Attributes = nil }, "attributes", SeverityWarning},
		{"workers", func(j *Job) { j.Workers = 0 }, "workers", SeverityError},
		{"log level", func(j *Job) { j.Log.Level = "trace" }, "log.level", SeverityError},
		{"log format", func(j *Job) { j.Log.Format = "xml" }, "log.format", SeverityError},
		{"manifest unknown kind", func(j *Job) {
			j.Manifest = Manifest{Kind: "oracle", DSN: "x", Table: "t", BatchSize: 10}
		}, "manifest.kind", SeverityWarning},
		{"manifest dsn", func(j *Job) {
			j.Manifest = Manifest{Kind: "sqlite", Table: "t", BatchSize: 10}
		}, "manifest.dsn", SeverityError},
		{"manifest table", func(j *Job) {
			j.Manifest = Manifest{Kind: "sqlite", DSN: "x", BatchSize: 10}
		}, "manifest.table", SeverityError},
		{"manifest batch", func(j *Job) {
			j.Manifest = Manifest{Kind: "sqlite", DSN: "x", Table: "t"}
		}, "manifest.batch_size", SeverityWarning},
		{"pushgateway url", func(j *Job) {
			j.Metrics = Metrics{Backend: "pushgateway", Job: "topnsplit"}
		}, "metrics.pushgateway_url", SeverityError},
		{"datadog addr", func(j *Job) {
			j.Metrics = Metrics{Backend: "datadog", Job: "topnsplit"}
		}, "metrics.datadog_addr", SeverityWarning},
		{"metrics job", func(j *Job) {
			j.Metrics = Metrics{Backend: "datadog", DatadogAddr: "127.0.0.1:8125"}
		}, "metrics.job", SeverityWarning},
		{"metrics backend", func(j *Job) { j.Metrics.Backend = "graphite" }, "metrics.backend", SeverityError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			j := validJob()
			tt.mutate(&j)
			issues := ValidateJob(j)

			var found *Issue
			for i := range issues {
				if issues[i].Path == tt.path {
					found = &issues[i]
					break
				}
			}
			if assert.NotNil(t, found, "no issue at %s in %v", tt.path, issues) {
				assert.Equal(t, tt.severity, found.Severity)
				assert.Equal(t, tt.severity == SeverityError, HasErrors(issues))
			}
		})
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "n", Message: "bad"}
	assert.Equal(t, "error at n: bad", iss.Error())
}
