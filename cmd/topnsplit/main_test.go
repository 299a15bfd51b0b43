package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"topnsplit/internal/config"
	"topnsplit/internal/report"
	"topnsplit/internal/shapefile"
	"topnsplit/internal/table"
	"topnsplit/internal/topn"
)

// writeFixture writes a point layer with three numeric attributes. With
// n=2 over farm,forest,water the rows fall into "farm,water" (id 1),
// "forest,water" (id 2) and the all-zero "farm,forest" (id 0, dropped).
func writeFixture(t *testing.T) string {
	t.Helper()
	tbl := table.MustNew([]table.Column{
		{Name: "name", Type: table.Text, Size: 10},
		{Name: "farm", Type: table.Numeric, Size: 10},
		{Name: "forest", Type: table.Numeric, Size: 10},
		{Name: "water", Type: table.Float, Size: 12, Precision: 2},
	})
	tbl.ShapeType = int32(shp.POINT)
	rows := [][]any{
		{"r0", 5.0, 2.0, 5.0},
		{"r1", 1.0, 9.0, 3.0},
		{"r2", 7.0, 1.0, 6.0},
		{"r3", 0.0, 0.0, 0.0},
	}
	for i, r := range rows {
		require.NoError(t, tbl.Append(table.Row{ID: i, Values: r, Geometry: &shp.Point{X: float64(i), Y: 1}}))
	}
	path := filepath.Join(t.TempDir(), "land.shp")
	require.NoError(t, shapefile.Write(context.Background(), tbl, path, shapefile.Options{}))
	return path
}

func execute(t *testing.T, stdin string, tty bool, args ...string) (string, error) {
	t.Helper()
	a := &app{
		stdin:      strings.NewReader(stdin),
		isTerminal: func() bool { return tty },
	}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_SplitsLayers(t *testing.T) {
	t.Parallel()

	in := writeFixture(t)
	dir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "", false, "run", in, "-d", dir, "-n", "2", "-a", "farm,forest,water", "-o", "json", "-w", "2")
	require.NoError(t, err)

	var s report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	require.Len(t, s.Groups, 2)
	assert.Equal(t, 1, s.Groups[0].ID)
	assert.Equal(t, "farm,water", s.Groups[0].Label)
	assert.Equal(t, 2, s.Groups[0].Features)
	assert.Equal(t, "forest,water", s.Groups[1].Label)
	assert.Positive(t, s.Groups[0].Bytes)
	assert.Equal(t, []report.Dropped{{ID: 0, Label: "farm,forest", Features: 1}}, s.Dropped)
	assert.Equal(t, 4, s.Features)

	_, err = os.Stat(filepath.Join(dir, "0_shapefile.shp"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "dropped group must not be written")

	got, err := shapefile.Read(context.Background(), filepath.Join(dir, topn.FileName(1)), shapefile.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"farm", "water", "Top_2_Acti", "Top_2_ID"}, got.Names())
	require.Equal(t, 2, got.Len())
	assert.Equal(t, []any{5.0, 5.0, "farm,water", 1.0}, got.Rows[0].Values)
	assert.Equal(t, []any{7.0, 6.0, "farm,water", 1.0}, got.Rows[1].Values)
}

func TestRun_WritesAttributeTables(t *testing.T) {
	t.Parallel()

	in := writeFixture(t)
	dir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "", false, "run", in, "-d", dir, "-n", "2", "-a", "farm,forest,water", "-o", "json")
	require.NoError(t, err)

	want := map[int][]string{
		1: {"farm", "water", "Top_2_Acti", "Top_2_ID"},
		2: {"forest", "water", "Top_2_Acti", "Top_2_ID"},
	}
	for id, cols := range want {
		base := strings.TrimSuffix(topn.FileName(id), ".shp")
		_, err := os.Stat(filepath.Join(dir, base+".dbf"))
		require.NoError(t, err, "group %d", id)
		_, err = os.Stat(filepath.Join(dir, base+"dbf"))
		assert.True(t, errors.Is(err, os.ErrNotExist), "group %d: stray sidecar", id)

		hdr, err := shapefile.Columns(context.Background(), filepath.Join(dir, topn.FileName(id)), shapefile.Options{})
		require.NoError(t, err, "group %d", id)
		var names []string
		for _, c := range hdr.Columns {
			names = append(names, c.Name)
		}
		assert.Equal(t, cols, names, "group %d", id)
	}
}

func TestRun_RecordsManifest(t *testing.T) {
	t.Parallel()

	in := writeFixture(t)
	tmp := t.TempDir()
	dsn := filepath.Join(tmp, "runs.db")

	out, err := execute(t, "", false, "run", in,
		"-d", filepath.Join(tmp, "out"), "-n", "2", "-a", "farm,forest,water",
		"--manifest-kind", "sqlite", "--manifest-dsn", dsn, "--manifest-create")
	require.NoError(t, err)
	assert.Contains(t, out, "manifest: sqlite:split_manifest")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(`SELECT group_id, group_label, features, checksum FROM split_manifest ORDER BY group_id`)
	require.NoError(t, err)
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var (
			id, features int
			label, sum   string
		)
		require.NoError(t, rows.Scan(&id, &label, &features, &sum))
		assert.Len(t, sum, 16)
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int{1, 2}, ids)
}

func TestRun_InvalidNFromAttributesFile(t *testing.T) {
	t.Parallel()

	in := writeFixture(t)
	tmp := t.TempDir()
	list := filepath.Join(tmp, "attrs.txt")
	require.NoError(t, os.WriteFile(list, []byte("# ranked\nfarm\nforest\n"), 0o644))
	dir := filepath.Join(tmp, "out")

	_, err := execute(t, "", false, "run", in, "-d", dir, "-n", "3", "--attributes-file", list)
	require.Error(t, err)
	assert.True(t, errors.Is(err, topn.ErrInvalidN), "got %v", err)

	_, statErr := os.Stat(dir)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no output before validation passes")
}

func TestRun_NoAttributesWithoutTerminal(t *testing.T) {
	t.Parallel()

	in := writeFixture(t)
	_, err := execute(t, "", false, "run", in, "-d", filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, topn.ErrInvalidSelection), "got %v", err)
}

func TestRun_UnknownAttribute(t *testing.T) {
	t.Parallel()

	in := writeFixture(t)
	_, err := execute(t, "", false, "run", in, "-d", filepath.Join(t.TempDir(), "out"), "-n", "1", "-a", "farm,orchard")
	require.Error(t, err)
	assert.True(t, errors.Is(err, topn.ErrInvalidSelection))
	assert.Contains(t, err.Error(), `"orchard"`)
}

func TestRun_MissingInput(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "", false, "run", filepath.Join(t.TempDir(), "nope.shp"),
		"-d", filepath.Join(t.TempDir(), "out"), "-n", "1", "-a", "farm")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shapefile.ErrRead), "got %v", err)
}

func TestRun_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "", false, "run", "-n", "1", "-a", "farm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "input")
}

func TestRun_InteractiveConfirmsPreselection(t *testing.T) {
	t.Parallel()

	in := writeFixture(t)
	dir := filepath.Join(t.TempDir(), "out")
	out, err := execute(t, "\r", true, "run", in, "-d", dir, "-n", "2", "-a", "farm,forest,water", "--interactive", "-o", "json")
	require.NoError(t, err)

	var s report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, []string{"farm", "forest", "water"}, s.Attributes)
	assert.Equal(t, 2, s.N)
}

func TestColumns(t *testing.T) {
	t.Parallel()

	in := writeFixture(t)
	out, err := execute(t, "", false, "columns", in)
	require.NoError(t, err)
	assert.Contains(t, out, "POINT, 4 features, UTF-8")
	assert.Contains(t, out, "forest")
	assert.Contains(t, out, "yes")

	_, err = execute(t, "", false, "columns")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input shapefile")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", false, "validate", "-i", "land.shp", "-d", "out", "-n", "2", "-a", "farm,forest")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")

	out, err = execute(t, "", false, "validate", "-d", "out", "-n", "2", "-a", "farm", "--attributes-file", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, out, "error at input")
	assert.Contains(t, out, "error at attributes_file")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", false, "version")
	require.NoError(t, err)
	assert.Equal(t, "topnsplit "+Version+" ("+GitCommit+")\n", out)
}

func TestWriteGroups_FailureStopsPool(t *testing.T) {
	defer goleak.VerifyNone(t)

	var groups []topn.Group
	for id := 0; id < 8; id++ {
		tbl := table.MustNew([]table.Column{{Name: "A", Type: table.Numeric, Size: 10}})
		tbl.ShapeType = int32(shp.POINT)
		require.NoError(t, tbl.Append(table.Row{ID: id, Values: []any{1.0}, Geometry: &shp.Point{}}))
		groups = append(groups, topn.Group{ID: id, Key: "A", Attrs: []string{"A"}, Table: tbl})
	}

	missing := filepath.Join(t.TempDir(), "does", "not", "exist")
	paths, err := writeGroups(context.Background(), zaptest.NewLogger(t), groups, missing, 3, shapefile.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shapefile.ErrWrite))
	assert.Empty(t, paths)
}

func TestPreflight(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, preflight(dir))
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	regular := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(regular, nil, 0o644))
	require.Error(t, preflight(regular))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	log, err := newLogger(config.Log{Level: "warn", Format: "json"}, false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1))

	log, err = newLogger(config.Log{Level: "warn", Format: "console"}, true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1), "verbose forces debug")

	_, err = newLogger(config.Log{Level: "loud"}, false)
	require.Error(t, err)
}
