package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"topnsplit/internal/config"
	"topnsplit/internal/datasource/file"
	"topnsplit/internal/manifest"
	"topnsplit/internal/metrics"
	"topnsplit/internal/picker"
	"topnsplit/internal/report"
	"topnsplit/internal/shapefile"
	"topnsplit/internal/table"
	"topnsplit/internal/topn"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [input.shp]",
		Short: "Split a shapefile into one layer per top-N attribute list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.job.Input = args[0]
			}
			return a.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	addJobFlags(cmd.Flags())
	return cmd
}

// checkIssues logs warnings and returns the errors among issues joined.
func checkIssues(log *zap.Logger, issues []config.Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			errs = append(errs, iss)
			continue
		}
		log.Warn(iss.Message, zap.String("path", iss.Path))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (a *app) run(ctx context.Context, out, tty io.Writer) error {
	start := time.Now()
	job := a.job
	log := a.log

	if err := checkIssues(log, config.ValidateJob(*job)); err != nil {
		return err
	}
	flush := setupMetrics(log, job.Metrics)
	defer flush()
	mjob := job.Metrics.Job

	attrs, err := job.Selection(ctx)
	if err != nil {
		return err
	}
	n := job.N
	opts := shapefile.Options{Encoding: job.Encoding, Logger: log}
	if prj, ok := file.Sidecar(job.Input, ".prj"); ok {
		opts.Prj = prj.Path()
	}

	if job.Interactive || (len(attrs) == 0 && a.isTerminal()) {
		attrs, n, err = a.pick(ctx, tty, opts, attrs, n)
		if err != nil {
			return err
		}
	}
	if len(attrs) == 0 {
		return fmt.Errorf("%w: no attributes selected", topn.ErrInvalidSelection)
	}
	if err := topn.CheckN(n, len(attrs)); err != nil {
		return err
	}
	if err := preflight(job.OutputDir); err != nil {
		return err
	}

	log.Info("split started",
		zap.String("input", job.Input),
		zap.String("output_dir", job.OutputDir),
		zap.Int("n", n),
		zap.Strings("attributes", attrs),
	)

	var tbl *table.Table
	err = timed(mjob, metrics.StepRead, func() error {
		var err error
		tbl, err = shapefile.Read(ctx, job.Input, opts)
		return err
	})
	if err != nil {
		return err
	}
	metrics.RecordFeatures(mjob, "read", int64(tbl.Len()))

	var res *topn.Result
	err = timed(mjob, metrics.StepSplit, func() error {
		var err error
		res, err = topn.Split(tbl, attrs, n)
		return err
	})
	if err != nil {
		return err
	}

	var dropped int
	for _, d := range res.Dropped {
		dropped += d.Rows
		log.Info("group dropped, ranked values sum to zero",
			zap.Int("id", d.ID), zap.String("label", d.Key), zap.Int("features", d.Rows))
	}
	metrics.RecordGroups(mjob, "dropped", int64(len(res.Dropped)))
	metrics.RecordFeatures(mjob, "dropped", int64(dropped))

	var paths map[int]string
	err = timed(mjob, metrics.StepWrite, func() error {
		var err error
		paths, err = writeGroups(ctx, log, res.Groups, job.OutputDir, job.Workers, opts)
		return err
	})
	if err != nil {
		return err
	}
	var written int
	for _, g := range res.Groups {
		written += g.Table.Len()
	}
	metrics.RecordGroups(mjob, "written", int64(len(res.Groups)))
	metrics.RecordFeatures(mjob, "written", int64(written))

	runID := manifest.NewRunID()
	var manifestDesc string
	if job.Manifest.Enabled() {
		err = timed(mjob, metrics.StepManifest, func() error {
			entries, err := manifest.Build(ctx, manifest.Run{
				ID:     runID,
				Source: job.Input,
				N:      n,
				Groups: res.Groups,
				Paths:  paths,
			})
			if err != nil {
				return err
			}
			stats, err := manifest.Load(ctx, manifest.Options{
				Kind:            job.Manifest.Kind,
				DSN:             job.Manifest.DSN,
				Table:           job.Manifest.Table,
				AutoCreateTable: job.Manifest.AutoCreateTable,
				BatchSize:       job.Manifest.BatchSize,
				Logger:          log,
			}, entries)
			metrics.RecordBatches(mjob, stats.Batches)
			return err
		})
		if err != nil {
			return fmt.Errorf("%d layers written to %s, manifest failed: %w", len(paths), job.OutputDir, err)
		}
		manifestDesc = job.Manifest.Kind + ":" + job.Manifest.Table
	}

	elapsed := time.Since(start)
	log.Info("split finished",
		zap.String("run_id", runID),
		zap.Int("groups", len(res.Groups)),
		zap.Int("dropped", len(res.Dropped)),
		zap.Duration("elapsed", elapsed.Truncate(time.Millisecond)),
	)
	return report.Run(out, job.Output, summary(runID, job, res, paths, manifestDesc, elapsed))
}

// pick shows the interactive form over the numeric columns of the input.
func (a *app) pick(ctx context.Context, tty io.Writer, opts shapefile.Options, attrs []string, n int) ([]string, int, error) {
	hdr, err := shapefile.Columns(ctx, a.job.Input, opts)
	if err != nil {
		return nil, 0, err
	}
	var numeric []string
	for _, c := range hdr.Columns {
		if c.Type.IsNumber() {
			numeric = append(numeric, c.Name)
		}
	}
	title := fmt.Sprintf("Top-N split of %s (%d features)", filepath.Base(a.job.Input), hdr.Features)
	res, err := picker.Run(ctx, a.stdin, tty, picker.New(title, numeric, attrs, n))
	if err != nil {
		return nil, 0, err
	}
	a.log.Debug("picker confirmed", zap.Strings("attributes", res.Attributes), zap.Int("n", res.N))
	return res.Attributes, res.N, nil
}

// writeGroups writes every group to dir with at most workers layers in
// flight. The first failure cancels the layers not yet started; layers
// already written stay on disk.
func writeGroups(ctx context.Context, log *zap.Logger, groups []topn.Group, dir string, workers int, opts shapefile.Options) (map[int]string, error) {
	if workers < 1 {
		workers = 1
	}
	var (
		mu    sync.Mutex
		paths = make(map[int]string, len(groups))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, topn.FileName(grp.ID))
			if err := shapefile.Write(gctx, grp.Table, path, opts); err != nil {
				return err
			}
			mu.Lock()
			paths[grp.ID] = path
			mu.Unlock()
			log.Debug("layer written",
				zap.Int("id", grp.ID),
				zap.String("label", grp.Key),
				zap.Int("features", grp.Table.Len()),
				zap.String("path", path),
			)
			return nil
		})
	}
	err := g.Wait()
	return paths, err
}

func summary(runID string, job *config.Job, res *topn.Result, paths map[int]string, manifestDesc string, elapsed time.Duration) report.Summary {
	s := report.Summary{
		RunID:      runID,
		Source:     job.Input,
		OutputDir:  job.OutputDir,
		N:          res.N,
		Attributes: res.Attrs,
		Features:   res.Rows,
		Manifest:   manifestDesc,
		Elapsed:    elapsed,
	}
	for _, g := range res.Groups {
		s.Groups = append(s.Groups, report.Group{
			ID:       g.ID,
			Label:    g.Key,
			Features: g.Table.Len(),
			File:     paths[g.ID],
			Bytes:    layerSize(paths[g.ID]),
		})
	}
	for _, d := range res.Dropped {
		s.Dropped = append(s.Dropped, report.Dropped{ID: d.ID, Label: d.Key, Features: d.Rows})
	}
	return s
}

// layerSize is the combined size of the .shp, .shx and .dbf of a layer.
func layerSize(shpPath string) int64 {
	base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
	var total int64
	for _, ext := range manifest.Parts {
		if fi, err := os.Stat(base + ext); err == nil {
			total += fi.Size()
		}
	}
	return total
}
