package manifest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"topnsplit/internal/storage"
)

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 500

// Options configures Load.
type Options struct {
	Kind            string
	DSN             string
	Table           string
	AutoCreateTable bool
	BatchSize       int
	Logger          *zap.Logger
}

// Stats summarizes a Load.
type Stats struct {
	Rows    int64
	Batches int64
}

// Load opens the configured backend, optionally creates the manifest table
// and inserts entries in batches.
func Load(ctx context.Context, opts Options, entries []Entry) (Stats, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	table := opts.Table
	if table == "" {
		table = DefaultTable
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	td := TableDef(table)
	cols := td.ColumnNames()

	repo, err := storage.New(ctx, storage.Config{
		Kind:    opts.Kind,
		DSN:     opts.DSN,
		Table:   table,
		Columns: cols,
	})
	if err != nil {
		return Stats{}, fmt.Errorf("manifest: open %s: %w", opts.Kind, err)
	}
	defer repo.Close()

	if opts.AutoCreateTable {
		if err := storage.EnsureTable(ctx, opts.Kind, repo, td); err != nil {
			return Stats{}, fmt.Errorf("manifest: create table %s: %w", table, err)
		}
		log.Debug("manifest table ready", zap.String("table", table), zap.String("kind", opts.Kind))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, batch)
	go func() {
		defer close(in)
		for _, e := range entries {
			select {
			case in <- e.Values():
			case <-ctx.Done():
				return
			}
		}
	}()

	rows, batches, err := storage.LoadBatches(ctx, log, cols, in, batch, repo.CopyFrom)
	if err != nil {
		return Stats{Rows: rows, Batches: batches}, fmt.Errorf("manifest: load %s: %w", table, err)
	}
	log.Info("manifest written",
		zap.String("kind", opts.Kind),
		zap.String("table", table),
		zap.Int64("rows", rows),
		zap.Int64("batches", batches),
	)
	return Stats{Rows: rows, Batches: batches}, nil
}
