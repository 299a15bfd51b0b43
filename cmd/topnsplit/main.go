// Command topnsplit splits a shapefile into one layer per distinct ordered
// list of the top-N attributes of its features.
//
//	topnsplit run data/land_use.shp -d out -n 2 -a farming,forestry,fishing
//	topnsplit columns data/land_use.shp
//	topnsplit validate --config topnsplit.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"topnsplit/internal/config"

	// register all manifest backends with the storage factory.
	_ "topnsplit/internal/storage/all"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// app is the state shared by all commands of one invocation.
type app struct {
	cfgFile string
	verbose bool

	job *config.Job
	log *zap.Logger

	stdin      io.Reader
	isTerminal func() bool
}

func newApp() *app {
	return &app{
		stdin:      os.Stdin,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "topnsplit",
		Short: "Split a shapefile by the top-N attributes of every feature",
		Long: `topnsplit ranks the selected numeric attributes of every feature of a
shapefile and writes one shapefile per distinct ordered top-N list
("<id>_shapefile.shp") into the output directory.

Configuration is read from defaults, topnsplit.yaml (or --config),
TOPNSPLIT_* environment variables and flags, in that order.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			job, used, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := newLogger(job.Log, a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.job, a.log = job, log
			if used != "" {
				log.Debug("config loaded", zap.String("file", used))
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}} (" + GitCommit + ")\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./topnsplit.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	pf.String("log-format", config.DefaultLogFormat, "log format (console|json)")
	pf.StringP("output", "o", config.DefaultOutput, "report format (table|json|yaml)")
	_ = root.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newColumnsCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// addJobFlags declares the flags that map onto config.Job. Only flags the
// user sets override the config file and environment.
func addJobFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "", "source shapefile (.shp)")
	fs.StringP("output-dir", "d", "", "directory receiving the split layers")
	fs.IntP("n", "n", config.DefaultN, "number of top attributes per feature (1-10)")
	fs.StringSliceP("attributes", "a", nil, "numeric attributes to rank, in tie-break order")
	fs.String("attributes-file", "", "file listing attributes, one per line or comma separated")
	fs.String("encoding", "", "code page of the source .dbf (default: .cpg or windows-1252)")
	fs.IntP("workers", "w", config.DefaultWorkers, "layers written concurrently")
	fs.Bool("interactive", false, "choose attributes and N in a terminal form")

	fs.String("manifest-kind", "", "record written groups in sqlite|postgres|mysql|mssql")
	fs.String("manifest-dsn", "", "manifest database DSN")
	fs.String("manifest-table", config.DefaultManifestTable, "manifest table")
	fs.Bool("manifest-create", false, "create the manifest table if missing")

	fs.String("metrics", "", "metrics backend (pushgateway|datadog)")
	fs.String("metrics-job", config.DefaultMetricsJob, "metrics job label")
	fs.String("pushgateway-url", "", "Prometheus Pushgateway base URL")
	fs.String("datadog-addr", "", "DogStatsD address (host:port)")
}
