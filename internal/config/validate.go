package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"topnsplit/internal/shapefile"
	"topnsplit/internal/topn"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Job.
//
// Path is the dotted config key (e.g. "manifest.dsn").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob performs static checks over j without touching the input
// layer. Checks that need the attribute file or the layer header happen at
// run time.
func ValidateJob(j Job) []Issue {
	var issues []Issue

	issues = append(issues, validateIO(j)...)
	issues = append(issues, validateSelection(j)...)
	issues = append(issues, validateRuntime(j)...)
	issues = append(issues, validateManifest(j.Manifest)...)
	issues = append(issues, validateMetrics(j.Metrics)...)

	return issues
}

func validateIO(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Input) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input",
			Message:  "input must point to a .shp file",
		})
	} else if !strings.EqualFold(filepath.Ext(j.Input), ".shp") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "input",
			Message:  fmt.Sprintf("input %q does not have a .shp extension", j.Input),
		})
	}

	if strings.TrimSpace(j.OutputDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output_dir",
			Message:  "output_dir must not be empty",
		})
	}

	if j.Encoding != "" {
		if _, err := shapefile.Encoding(j.Encoding); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "encoding",
				Message:  err.Error(),
			})
		}
	}

	switch j.Output {
	case "table", "json", "yaml":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output",
			Message:  fmt.Sprintf("unknown output format %q (want table, json or yaml)", j.Output),
		})
	}
	return issues
}

func validateSelection(j Job) []Issue {
	var issues []Issue

	if j.N < topn.MinN || j.N > topn.MaxN {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "n",
			Message:  fmt.Sprintf("n must be in [%d,%d], got %d", topn.MinN, topn.MaxN, j.N),
		})
	}

	inline := topn.Dedupe(j.Attributes)
	switch {
	case len(inline) == 0 && j.AttributesFile == "":
		if !j.Interactive {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "attributes",
				Message:  "no attributes configured; the interactive picker is used when stdin is a terminal",
			})
		}
	case j.AttributesFile == "" && j.N > len(inline):
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "n",
			Message:  fmt.Sprintf("n=%d exceeds the %d selected attributes", j.N, len(inline)),
		})
	}
	if len(inline) != len(j.Attributes) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "attributes",
			Message:  "attributes contain blanks or duplicates; they are ignored",
		})
	}
	return issues
}

func validateRuntime(j Job) []Issue {
	var issues []Issue

	if j.Workers < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "workers",
			Message:  fmt.Sprintf("workers must be >= 1, got %d", j.Workers),
		})
	}

	switch strings.ToLower(j.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.level",
			Message:  fmt.Sprintf("unknown log level %q", j.Log.Level),
		})
	}
	switch j.Log.Format {
	case "console", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown log format %q (want console or json)", j.Log.Format),
		})
	}
	return issues
}

func validateManifest(m Manifest) []Issue {
	var issues []Issue
	if !m.Enabled() {
		return nil
	}

	// Unknown kinds are warnings so out-of-tree backends can register.
	known := map[string]struct{}{
		"sqlite":   {},
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
	}
	if _, ok := known[m.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "manifest.kind",
			Message:  fmt.Sprintf("unknown manifest kind %q; ensure a matching backend is registered", m.Kind),
		})
	}
	if strings.TrimSpace(m.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "manifest.dsn",
			Message:  "manifest.dsn must not be empty when manifest.kind is set",
		})
	}
	if strings.TrimSpace(m.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "manifest.table",
			Message:  "manifest.table must not be empty",
		})
	}
	if m.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "manifest.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; %d is used instead", m.BatchSize, DefaultBatchSize),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "nop", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog_addr is empty; the statsd client default is used",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
	}
	if m.Backend != "" && m.Backend != "nop" && m.Backend != "none" && strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.job",
			Message:  "metrics.job is empty; series cannot be told apart between jobs",
		})
	}
	return issues
}
