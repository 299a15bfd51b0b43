// Package manifest records one row per emitted group of a split run and
// streams those rows into a SQL backend through internal/storage.
package manifest

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"topnsplit/internal/datasource/file"
	"topnsplit/internal/ddl"
	"topnsplit/internal/topn"
)

// DefaultTable is the manifest table used when none is configured.
const DefaultTable = "split_manifest"

// Parts are the shapefile components covered by Checksum, in hashing order.
var Parts = []string{".shp", ".shx", ".dbf"}

// Entry is one manifest row.
type Entry struct {
	RunID      string
	Source     string
	TopN       int
	GroupID    int
	Label      string
	Features   int
	OutputPath string
	Checksum   string
	CreatedAt  time.Time
}

// TableDef returns the manifest table definition for fqn.
func TableDef(fqn string) ddl.TableDef {
	if strings.TrimSpace(fqn) == "" {
		fqn = DefaultTable
	}
	return ddl.TableDef{
		FQN: fqn,
		Columns: []ddl.ColumnDef{
			{Name: "run_id", Type: ddl.TypeText, PrimaryKey: true},
			{Name: "source", Type: ddl.TypeText},
			{Name: "top_n", Type: ddl.TypeInt},
			{Name: "group_id", Type: ddl.TypeInt, PrimaryKey: true},
			{Name: "group_label", Type: ddl.TypeText},
			{Name: "features", Type: ddl.TypeInt},
			{Name: "output_path", Type: ddl.TypeText},
			{Name: "checksum", Type: ddl.TypeText, Nullable: true},
			{Name: "created_at", Type: ddl.TypeTimestamp},
		},
	}
}

// Columns are the manifest column names in row order.
func Columns() []string { return TableDef("").ColumnNames() }

// Values returns e aligned to Columns.
func (e Entry) Values() []any {
	var sum any
	if e.Checksum != "" {
		sum = e.Checksum
	}
	return []any{
		e.RunID,
		e.Source,
		int64(e.TopN),
		int64(e.GroupID),
		e.Label,
		int64(e.Features),
		e.OutputPath,
		sum,
		e.CreatedAt,
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }

// Checksum hashes the .shp, .shx and .dbf files next to shpPath with xxh3
// and returns the 64-bit digest as 16 hex characters.
func Checksum(ctx context.Context, shpPath string) (string, error) {
	base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
	h := xxh3.New()
	for _, ext := range Parts {
		if err := hashFile(ctx, h, base+ext); err != nil {
			return "", fmt.Errorf("checksum %s: %w", base+ext, err)
		}
	}
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], h.Sum64())
	return hex.EncodeToString(out[:]), nil
}

func hashFile(ctx context.Context, w io.Writer, path string) error {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(w, rc)
	return err
}

// Run describes a finished split for Build.
type Run struct {
	ID        string
	Source    string
	N         int
	Groups    []topn.Group
	Paths     map[int]string // group id -> written .shp path
	CreatedAt time.Time
}

// Build returns one entry per group of r, in group order, checksumming each
// written file.
func Build(ctx context.Context, r Run) ([]Entry, error) {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC()

	out := make([]Entry, 0, len(r.Groups))
	for _, g := range r.Groups {
		path, ok := r.Paths[g.ID]
		if !ok {
			return nil, fmt.Errorf("manifest: no output path for group %d", g.ID)
		}
		sum, err := Checksum(ctx, path)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{
			RunID:      r.ID,
			Source:     r.Source,
			TopN:       r.N,
			GroupID:    g.ID,
			Label:      g.Key,
			Features:   g.Table.Len(),
			OutputPath: path,
			Checksum:   sum,
			CreatedAt:  created,
		})
	}
	return out, nil
}
