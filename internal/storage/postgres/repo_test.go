package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topnsplit/internal/ddl"
	"topnsplit/internal/storage"
)

type execRecorder struct{ stmts []string }

func (e *execRecorder) CopyFrom(context.Context, []string, [][]any) (int64, error) { return 0, nil }
func (e *execRecorder) Exec(_ context.Context, sql string) error {
	e.stmts = append(e.stmts, sql)
	return nil
}
func (e *execRecorder) Close() {}

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want pgx.Identifier
	}{
		{"split_manifest", pgx.Identifier{"split_manifest"}},
		{"public.split_manifest", pgx.Identifier{"public", "split_manifest"}},
		{"public..t", pgx.Identifier{"public", "t"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitFQN(tt.in), tt.in)
	}
}

func TestDDLBootstrap(t *testing.T) {
	t.Parallel()

	rec := &execRecorder{}
	err := storage.EnsureTable(context.Background(), "postgres", rec, ddl.TableDef{
		FQN: "public.split_manifest",
		Columns: []ddl.ColumnDef{
			{Name: "run_id", Type: ddl.TypeText, PrimaryKey: true},
			{Name: "features", Type: ddl.TypeInt},
			{Name: "created_at", Type: ddl.TypeTimestamp},
		},
	})
	require.NoError(t, err)
	require.Len(t, rec.stmts, 1)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "public"."split_manifest" (
  "run_id" TEXT NOT NULL,
  "features" BIGINT NOT NULL,
  "created_at" TIMESTAMPTZ NOT NULL,
  PRIMARY KEY ("run_id")
);`, rec.stmts[0])
}

// TestFactoryUsesHook swaps the constructor so no server is needed.
func TestFactoryUsesHook(t *testing.T) {
	orig := newRepository
	t.Cleanup(func() { newRepository = orig })

	var got Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "postgres", DSN: "postgres://x", Table: "public.m"})
	require.NoError(t, err)
	assert.Equal(t, Config{DSN: "postgres://x", Table: "public.m"}, got)
	repo.Close()
	assert.True(t, closed)

	boom := errors.New("boom")
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) { return nil, nil, boom }
	_, err = storage.New(context.Background(), storage.Config{Kind: "postgres"})
	assert.ErrorIs(t, err, boom)
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{})
	require.Error(t, err)
}
