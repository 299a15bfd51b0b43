package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: TOPNSPLIT_MANIFEST__DSN -> manifest.dsn.
const EnvPrefix = "TOPNSPLIT_"

// DefaultFiles are looked up in the working directory when no file is given.
var DefaultFiles = []string{"topnsplit.yaml", "topnsplit.yml"}

// flagKeys maps flags whose name does not follow the kebab -> snake rule.
var flagKeys = map[string]string{
	"log-level":       "log.level",
	"log-format":      "log.format",
	"manifest-kind":   "manifest.kind",
	"manifest-dsn":    "manifest.dsn",
	"manifest-table":  "manifest.table",
	"manifest-create": "manifest.auto_create_table",
	"metrics":         "metrics.backend",
	"metrics-job":     "metrics.job",
	"pushgateway-url": "metrics.pushgateway_url",
	"datadog-addr":    "metrics.datadog_addr",
}

// Defaults returns the lowest configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"n":                          DefaultN,
		"workers":                    DefaultWorkers,
		"output":                     DefaultOutput,
		"log.level":                  DefaultLogLevel,
		"log.format":                 DefaultLogFormat,
		"manifest.table":             DefaultManifestTable,
		"manifest.batch_size":        DefaultBatchSize,
		"manifest.auto_create_table": false,
		"metrics.job":                DefaultMetricsJob,
	}
}

// Load builds a Job from defaults, cfgFile (or the first DefaultFiles entry
// that exists), the environment and the flags that were explicitly set.
// The returned string is the config file actually used, "" if none.
func Load(cfgFile string, flags *pflag.FlagSet) (*Job, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only flags the user actually passed override lower layers.
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var job Job
	if err := k.Unmarshal("", &job); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}
	return &job, used, nil
}

// envKey maps TOPNSPLIT_OUTPUT_DIR -> output_dir and
// TOPNSPLIT_METRICS__PUSHGATEWAY_URL -> metrics.pushgateway_url.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
