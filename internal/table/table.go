// Package table holds the in-memory, geometry-bearing feature table that flows
// between the shapefile reader, the top-N splitter and the shapefile writer.
//
// Rows are positional: Row.Values[i] belongs to Columns[i]. Numeric and float
// columns carry float64 or nil (null); every other column carries string or
// nil. Geometry is opaque to this package and is carried through untouched.
package table

import (
	"fmt"
	"math"
)

// FieldType mirrors the DBF field kinds a shapefile attribute table can hold.
type FieldType byte

const (
	Text    FieldType = 'C'
	Numeric FieldType = 'N'
	Float   FieldType = 'F'
	Date    FieldType = 'D'
	Logical FieldType = 'L'
)

// String returns a lowercase name for the field type.
func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Numeric:
		return "numeric"
	case Float:
		return "float"
	case Date:
		return "date"
	case Logical:
		return "logical"
	default:
		return fmt.Sprintf("unknown(%q)", byte(t))
	}
}

// IsNumber reports whether values of this type are float64.
func (t FieldType) IsNumber() bool { return t == Numeric || t == Float }

// Column describes a single attribute column.
type Column struct {
	Name      string
	Type      FieldType
	Size      uint8
	Precision uint8
}

// Row is a single feature: positional attribute values plus a geometry.
type Row struct {
	// ID is the row position in the source file (0-based) and stays stable
	// through splitting.
	ID       int
	Values   []any
	Geometry any
}

// Table is an ordered set of columns and rows. ShapeType is the source
// geometry type code and is reused by writers.
type Table struct {
	Columns   []Column
	Rows      []Row
	ShapeType int32

	index map[string]int
}

// New returns an empty table with the given columns. Duplicate column names
// are rejected.
func New(cols []Column) (*Table, error) {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("table: column %d has empty name", i)
		}
		if _, dup := idx[c.Name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", c.Name)
		}
		idx[c.Name] = i
	}
	out := make([]Column, len(cols))
	copy(out, cols)
	return &Table{Columns: out, index: idx}, nil
}

// MustNew is New for static column sets; it panics on error.
func MustNew(cols []Column) *Table {
	t, err := New(cols)
	if err != nil {
		panic(err)
	}
	return t
}

// Append adds a row. The row must have exactly one value per column.
func (t *Table) Append(r Row) error {
	if len(r.Values) != len(t.Columns) {
		return fmt.Errorf("table: row %d has %d values, want %d", r.ID, len(r.Values), len(t.Columns))
	}
	t.Rows = append(t.Rows, r)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	return i, ok
}

// Column returns the named column definition.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.Index(name)
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// NumericColumns returns the names of all numeric and float columns, in
// column order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.Type.IsNumber() {
			out = append(out, c.Name)
		}
	}
	return out
}

// Float returns the value at (row, col) as float64. ok is false for nulls,
// NaN and non-numeric values.
func (t *Table) Float(row, col int) (float64, bool) {
	return AsFloat(t.Rows[row].Values[col])
}

// AsFloat converts a cell value to float64 when it holds a usable number.
func AsFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c.Name] = i
	}
}
