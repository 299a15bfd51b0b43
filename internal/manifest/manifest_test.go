package manifest

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"

	"topnsplit/internal/table"
	"topnsplit/internal/topn"
)

func writeParts(t *testing.T, dir, name string, parts map[string]string) string {
	t.Helper()
	for ext, body := range parts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+ext), []byte(body), 0o644))
	}
	return filepath.Join(dir, name+".shp")
}

func TestChecksum_CoversAllParts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shp := writeParts(t, dir, "0_shapefile", map[string]string{
		".shp": "geom", ".shx": "index", ".dbf": "attrs", ".prj": "ignored",
	})

	got, err := Checksum(context.Background(), shp)
	require.NoError(t, err)

	var want [8]byte
	binary.BigEndian.PutUint64(want[:], xxh3.Hash([]byte("geomindexattrs")))
	assert.Equal(t, hex.EncodeToString(want[:]), got)
	assert.Len(t, got, 16)

	// Any part changing changes the digest.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0_shapefile.dbf"), []byte("attrz"), 0o644))
	again, err := Checksum(context.Background(), shp)
	require.NoError(t, err)
	assert.NotEqual(t, got, again)
}

func TestChecksum_MissingPart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	shp := writeParts(t, dir, "1_shapefile", map[string]string{".shp": "g", ".shx": "i"})

	_, err := Checksum(context.Background(), shp)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "1_shapefile.dbf")
}

func group(t *testing.T, id int, key string, rows int) topn.Group {
	t.Helper()
	tbl := table.MustNew([]table.Column{{Name: "A", Type: table.Numeric, Size: 10}})
	for i := 0; i < rows; i++ {
		require.NoError(t, tbl.Append(table.Row{ID: i, Values: []any{float64(i + 1)}}))
	}
	return topn.Group{ID: id, Key: key, Table: tbl}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	parts := map[string]string{".shp": "s", ".shx": "x", ".dbf": "d"}
	p0 := writeParts(t, dir, "0_shapefile", parts)
	p2 := writeParts(t, dir, "2_shapefile", parts)
	created := time.Date(2026, 10, 16, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	entries, err := Build(context.Background(), Run{
		ID:        "run-1",
		Source:    "in.shp",
		N:         2,
		Groups:    []topn.Group{group(t, 0, "A,B", 3), group(t, 2, "B,A", 1)},
		Paths:     map[int]string{0: p0, 2: p2},
		CreatedAt: created,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	sum, err := Checksum(context.Background(), p0)
	require.NoError(t, err)
	want := Entry{
		RunID: "run-1", Source: "in.shp", TopN: 2, GroupID: 0, Label: "A,B",
		Features: 3, OutputPath: p0, Checksum: sum, CreatedAt: created.UTC(),
	}
	if diff := cmp.Diff(want, entries[0]); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, entries[1].GroupID)
	assert.Equal(t, 1, entries[1].Features)
}

func TestBuild_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := Build(context.Background(), Run{Groups: []topn.Group{group(t, 4, "A", 1)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output path for group 4")
}

func TestValuesAlignWithColumns(t *testing.T) {
	t.Parallel()

	e := Entry{RunID: "r", GroupID: 7, TopN: 3, Features: 9}
	vals := e.Values()
	require.Len(t, vals, len(Columns()))
	assert.Equal(t, []string{
		"run_id", "source", "top_n", "group_id", "group_label",
		"features", "output_path", "checksum", "created_at",
	}, Columns())
	assert.Equal(t, int64(7), vals[3])
	assert.Nil(t, vals[7], "empty checksum is stored as NULL")
}

func TestTableDef(t *testing.T) {
	t.Parallel()

	td := TableDef("")
	assert.Equal(t, DefaultTable, td.FQN)
	var pk []string
	for _, c := range td.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	assert.Equal(t, []string{"run_id", "group_id"}, pk)
	assert.Equal(t, "audit.runs", TableDef("audit.runs").FQN)
}

func TestNewRunID(t *testing.T) {
	t.Parallel()

	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}
