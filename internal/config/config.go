// Package config defines the job model of a split run and loads it from
// defaults, an optional YAML file, TOPNSPLIT_* environment variables and
// explicitly set command-line flags, in that order of precedence.
//
// Example (topnsplit.yaml):
//
//	input: data/land_use.shp
//	output_dir: out
//	n: 3
//	attributes: [farming, forestry, fishing, mining]
//	manifest:
//	  kind: sqlite
//	  dsn: runs.db
//	  table: split_manifest
//	  auto_create_table: true
package config

import (
	"context"
	"fmt"

	"topnsplit/internal/datasource/file"
	"topnsplit/internal/topn"
)

// Defaults.
const (
	DefaultN             = 3
	DefaultWorkers       = 1
	DefaultOutput        = "table"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultManifestTable = "split_manifest"
	DefaultBatchSize     = 500
	DefaultMetricsJob    = "topnsplit"
)

// Job is one split run.
type Job struct {
	// Input is the source .shp path.
	Input string `koanf:"input" json:"input" yaml:"input"`

	// OutputDir receives one "<id>_shapefile.shp" layer per group.
	OutputDir string `koanf:"output_dir" json:"output_dir" yaml:"output_dir"`

	// N is the number of ranked attributes per feature.
	N int `koanf:"n" json:"n" yaml:"n"`

	// Attributes and AttributesFile together form the selection; the file
	// entries follow the inline ones.
	Attributes     []string `koanf:"attributes" json:"attributes" yaml:"attributes"`
	AttributesFile string   `koanf:"attributes_file" json:"attributes_file" yaml:"attributes_file"`

	// Encoding overrides the .cpg code page of the input.
	Encoding string `koanf:"encoding" json:"encoding" yaml:"encoding"`

	Workers     int    `koanf:"workers" json:"workers" yaml:"workers"`
	Interactive bool   `koanf:"interactive" json:"interactive" yaml:"interactive"`
	Output      string `koanf:"output" json:"output" yaml:"output"`

	Log      Log      `koanf:"log" json:"log" yaml:"log"`
	Manifest Manifest `koanf:"manifest" json:"manifest" yaml:"manifest"`
	Metrics  Metrics  `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}

// Manifest configures the optional SQL record of written groups. An empty
// Kind disables it.
type Manifest struct {
	Kind            string `koanf:"kind" json:"kind" yaml:"kind"`
	DSN             string `koanf:"dsn" json:"dsn" yaml:"dsn"`
	Table           string `koanf:"table" json:"table" yaml:"table"`
	AutoCreateTable bool   `koanf:"auto_create_table" json:"auto_create_table" yaml:"auto_create_table"`
	BatchSize       int    `koanf:"batch_size" json:"batch_size" yaml:"batch_size"`
}

// Enabled reports whether a manifest sink is configured.
func (m Manifest) Enabled() bool { return m.Kind != "" }

// Metrics selects a metrics backend: "" or "nop", "pushgateway", "datadog".
type Metrics struct {
	Backend        string `koanf:"backend" json:"backend" yaml:"backend"`
	Job            string `koanf:"job" json:"job" yaml:"job"`
	PushgatewayURL string `koanf:"pushgateway_url" json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `koanf:"datadog_addr" json:"datadog_addr" yaml:"datadog_addr"`
	Namespace      string `koanf:"namespace" json:"namespace" yaml:"namespace"`
}

// Selection returns the de-duplicated attribute selection: inline
// attributes first, then the entries of AttributesFile.
func (j Job) Selection(ctx context.Context) ([]string, error) {
	attrs := append([]string(nil), j.Attributes...)
	if j.AttributesFile != "" {
		more, err := file.ReadList(ctx, file.NewLocal(j.AttributesFile))
		if err != nil {
			return nil, fmt.Errorf("attributes_file: %w", err)
		}
		attrs = append(attrs, more...)
	}
	return topn.Dedupe(attrs), nil
}
