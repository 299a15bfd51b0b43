package shapefile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"go.uber.org/zap"

	"topnsplit/internal/table"
)

// Write creates path (.shp) with its .shx, .dbf and .cpg siblings from tbl.
// Column names are folded to DBF rules first; renames are logged. When
// opts.Prj is set that file is copied to the layer's .prj. On error, files
// already created are left in place.
func Write(ctx context.Context, tbl *table.Table, path string, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := opts.logger()

	names, renames := FieldNames(tbl.Names())
	for _, rn := range renames {
		log.Debug("field renamed for dbf", zap.String("path", path), zap.String("from", rn.From), zap.String("to", rn.To))
	}
	fields := make([]shp.Field, len(tbl.Columns))
	for i, c := range tbl.Columns {
		fields[i] = field(names[i], c)
	}

	w, err := shp.Create(path, shp.ShapeType(tbl.ShapeType))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := fill(ctx, w, fields, tbl); err != nil {
		w.Close()
		return fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	w.Close()

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if err := os.WriteFile(base+".cpg", []byte(OutputEncoding), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if opts.Prj != "" {
		if err := copyFile(opts.Prj, base+".prj"); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	log.Debug("layer written", zap.String("path", path), zap.Int("features", tbl.Len()))
	return nil
}

func fill(ctx context.Context, w *shp.Writer, fields []shp.Field, tbl *table.Table) error {
	if err := w.SetFields(fields); err != nil {
		return err
	}
	for i, row := range tbl.Rows {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		geom, ok := row.Geometry.(shp.Shape)
		if !ok || geom == nil {
			geom = &shp.Null{}
		}
		n := int(w.Write(geom))
		for fi, v := range row.Values {
			if err := w.WriteAttribute(n, fi, cell(fields[fi], v)); err != nil {
				return fmt.Errorf("row %d field %s: %w", row.ID, fields[fi].String(), err)
			}
		}
	}
	return nil
}

// field builds the DBF descriptor for c under the given name.
func field(name string, c table.Column) shp.Field {
	var f shp.Field
	switch c.Type {
	case table.Numeric:
		f = shp.NumberField(name, c.Size)
		f.Precision = c.Precision
	case table.Float:
		f = shp.FloatField(name, c.Size, c.Precision)
	case table.Date:
		f = shp.DateField(name)
	case table.Logical:
		f = shp.StringField(name, 1)
		f.Fieldtype = byte(table.Logical)
	default:
		f = shp.StringField(name, c.Size)
	}
	if f.Size == 0 {
		f.Size = 1
	}
	return f
}

// cell converts a table value to what go-shp writes. Nulls become a blank
// cell of the field width.
func cell(f shp.Field, v any) any {
	blank := strings.Repeat(" ", int(f.Size))
	if v == nil {
		return blank
	}
	if x, ok := table.AsFloat(v); ok {
		return x
	}
	if table.FieldType(f.Fieldtype).IsNumber() {
		return blank
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return truncate(s, int(f.Size))
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
