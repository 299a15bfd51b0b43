package shapefile

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"topnsplit/internal/datasource/file"
	"topnsplit/internal/table"
)

// ctxCheckEvery is how many features are read between context checks.
const ctxCheckEvery = 1024

// Header describes a layer without its features.
type Header struct {
	Columns   []table.Column
	ShapeType int32
	Features  int
	Encoding  string
}

// open opens the layer at path. go-shp opens the .dbf lazily and ignores a
// missing one, so its presence is checked up front.
func open(path string) (*shp.Reader, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	if _, ok := file.Sidecar(path, ".dbf"); !ok {
		r.Close()
		return nil, fmt.Errorf("%w: %s: missing .dbf", ErrRead, path)
	}
	return r, nil
}

// Columns reads only the header of the layer at path.
func Columns(ctx context.Context, path string, opts Options) (*Header, error) {
	enc, encName, err := sourceEncoding(ctx, path, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	r, err := open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols := columns(r.Fields(), enc, opts.logger())
	return &Header{
		Columns:   cols,
		ShapeType: int32(r.GeometryType),
		Features:  r.AttributeCount(),
		Encoding:  encName,
	}, nil
}

// Read loads every feature of the layer at path. Numeric and float fields
// become float64, blank or unparsable numbers become nil, every other field
// is decoded to a UTF-8 string (nil when blank).
func Read(ctx context.Context, path string, opts Options) (*table.Table, error) {
	log := opts.logger()
	enc, encName, err := sourceEncoding(ctx, path, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	r, err := open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	fields := r.Fields()
	tbl, err := table.New(columns(fields, enc, log))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	tbl.ShapeType = int32(r.GeometryType)

	var dec *encoding.Decoder
	if !isUTF8(enc) {
		dec = enc.NewDecoder()
	}

	bad := 0
	for r.Next() {
		n, geom := r.Shape()
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		vals := make([]any, len(fields))
		for i, f := range tbl.Columns {
			raw := strings.Trim(r.ReadAttribute(n, i), " \x00")
			v, ok := value(f.Type, raw, dec)
			if !ok {
				bad++
			}
			vals[i] = v
		}
		if err := tbl.Append(table.Row{ID: n, Values: vals, Geometry: geom}); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	if bad > 0 {
		log.Warn("unparsable numeric values read as null", zap.String("path", path), zap.Int("count", bad))
	}
	log.Debug("layer read",
		zap.String("path", path),
		zap.Int("features", tbl.Len()),
		zap.Int("columns", len(tbl.Columns)),
		zap.String("encoding", encName),
	)
	return tbl, nil
}

// columns maps DBF fields to table columns. Repeated names, which some
// writers produce after truncating to ten bytes, get a numeric suffix.
func columns(fields []shp.Field, enc encoding.Encoding, log *zap.Logger) []table.Column {
	cols := make([]table.Column, len(fields))
	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		name := f.String()
		if !isUTF8(enc) {
			if s, err := enc.NewDecoder().String(name); err == nil {
				name = s
			}
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			renamed := fmt.Sprintf("%s_%d", name, n)
			log.Warn("duplicate field name", zap.String("field", name), zap.String("renamed", renamed))
			name = renamed
		} else {
			seen[name] = 1
		}
		cols[i] = table.Column{
			Name:      name,
			Type:      fieldType(f.Fieldtype),
			Size:      f.Size,
			Precision: f.Precision,
		}
	}
	return cols
}

func fieldType(b byte) table.FieldType {
	switch t := table.FieldType(b); t {
	case table.Numeric, table.Float, table.Date, table.Logical:
		return t
	default:
		return table.Text
	}
}

// value converts one raw DBF cell. ok is false when a non-blank numeric cell
// did not parse.
func value(t table.FieldType, raw string, dec *encoding.Decoder) (any, bool) {
	if raw == "" {
		return nil, true
	}
	if t.IsNumber() {
		if strings.Trim(raw, "*") == "" {
			return nil, true
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	if dec != nil {
		if s, err := dec.String(raw); err == nil {
			return s, true
		}
	}
	return raw, true
}
