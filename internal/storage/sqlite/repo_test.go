package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topnsplit/internal/ddl"
	"topnsplit/internal/storage"
)

var manifestLike = ddl.TableDef{
	FQN: "split_manifest",
	Columns: []ddl.ColumnDef{
		{Name: "run_id", Type: ddl.TypeText, PrimaryKey: true},
		{Name: "group_id", Type: ddl.TypeInt, PrimaryKey: true},
		{Name: "group_label", Type: ddl.TypeText},
		{Name: "created_at", Type: ddl.TypeTimestamp},
	},
}

func openRepo(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := storage.New(context.Background(), storage.Config{
		Kind:  "sqlite",
		DSN:   filepath.Join(t.TempDir(), "runs.db"),
		Table: manifestLike.FQN,
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo
}

func TestEnsureTableAndCopyFrom(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openRepo(t)
	require.NoError(t, storage.EnsureTable(ctx, "sqlite", repo, manifestLike))
	// Idempotent.
	require.NoError(t, storage.EnsureTable(ctx, "sqlite", repo, manifestLike))

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	n, err := repo.CopyFrom(ctx, manifestLike.ColumnNames(), [][]any{
		{"run-1", 0, "farming,forestry", now},
		{"run-1", 2, "forestry,farming", now},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	w := repo.(*wrappedRepo)
	var count int
	require.NoError(t, w.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "split_manifest" WHERE run_id = ?`, "run-1").Scan(&count))
	assert.Equal(t, 2, count)

	// Primary key violation rolls back the whole batch.
	_, err = repo.CopyFrom(ctx, manifestLike.ColumnNames(), [][]any{
		{"run-2", 0, "a", now},
		{"run-1", 0, "dup", now},
	})
	require.Error(t, err)
	require.NoError(t, w.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "split_manifest"`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestCopyFrom_Validation(t *testing.T) {
	t.Parallel()

	repo := openRepo(t)
	ctx := context.Background()

	_, err := repo.CopyFrom(ctx, nil, [][]any{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns must not be empty")

	n, err := repo.CopyFrom(ctx, []string{"a"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, storage.EnsureTable(ctx, "sqlite", repo, manifestLike))
	_, err = repo.CopyFrom(ctx, manifestLike.ColumnNames(), [][]any{{"only-one"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row length 1 != columns length 4")
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN must not be empty")
}

func TestMapType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "INTEGER", MapType("int"))
	assert.Equal(t, "REAL", MapType("float"))
	assert.Equal(t, "TEXT", MapType("timestamp"))
	assert.Equal(t, "", MapType("blob"))
}
