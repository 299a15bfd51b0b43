// Package topn ranks the selected numeric attributes of every feature and
// splits a feature table into one table per distinct ordered top-N list.
//
// Split is a pure function: it never touches the filesystem and returns the
// same groups for the same input.
package topn

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"topnsplit/internal/table"
)

const (
	// MinN and MaxN bound the number of ranked attributes per feature.
	MinN = 1
	MaxN = 10

	// KeySep joins the ranked attribute names into a group key.
	KeySep = ","

	maxLabelSize = 254
	idSize       = 10
)

var (
	// ErrInvalidSelection is returned when the attribute selection is empty or
	// names a missing or non-numeric column.
	ErrInvalidSelection = errors.New("invalid attribute selection")

	// ErrInvalidN is returned when n is outside [MinN, MaxN] or exceeds the
	// number of selected attributes.
	ErrInvalidN = errors.New("invalid n")
)

// Group is one output table: every feature whose ranked attribute list
// equals Attrs.
type Group struct {
	// ID is the ordinal of Key among all distinct keys of the run, ordered
	// by the list literal of the ranked names (see repr).
	ID    int
	Key   string
	Attrs []string
	Table *table.Table
}

// Dropped describes a group removed by the zero-sum filter.
type Dropped struct {
	ID   int
	Key  string
	Rows int
}

// Result is the outcome of Split.
type Result struct {
	N       int
	Attrs   []string // de-duplicated selection, in selection order
	Groups  []Group  // ordered by ID
	Dropped []Dropped
	Rows    int // input rows
}

// LabelColumn is the name of the column holding the comma-joined ranking.
func LabelColumn(n int) string { return fmt.Sprintf("Top_%d_Activities", n) }

// IDColumn is the name of the column holding the group identifier.
func IDColumn(n int) string { return fmt.Sprintf("Top_%d_ID", n) }

// FileName is the output file name for a group.
func FileName(id int) string { return fmt.Sprintf("%d_shapefile.shp", id) }

// Key serializes a ranked attribute list.
func Key(attrs []string) string { return strings.Join(attrs, KeySep) }

// Dedupe trims names, drops empty ones and removes duplicates while keeping
// the first occurrence order.
func Dedupe(attrs []string) []string {
	seen := make(map[string]struct{}, len(attrs))
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// CheckN validates n against the bounds and the selection size.
func CheckN(n, selected int) error {
	if n < MinN || n > MaxN {
		return fmt.Errorf("%w: n=%d outside [%d,%d]", ErrInvalidN, n, MinN, MaxN)
	}
	if n > selected {
		return fmt.Errorf("%w: n=%d exceeds %d selected attributes", ErrInvalidN, n, selected)
	}
	return nil
}

// TopAttrs returns up to n names from attrs ordered by descending value.
// values[i] belongs to attrs[i]; NaN marks a null and never ranks. Ties keep
// the order of attrs.
func TopAttrs(attrs []string, values []float64, n int) []string {
	idx := make([]int, 0, len(attrs))
	for i := range attrs {
		if !math.IsNaN(values[i]) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] > values[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = attrs[j]
	}
	return out
}

// Split ranks attrs for every row of tbl and partitions the rows by their
// ordered top-n list. Groups whose ranked values sum to zero are dropped.
func Split(tbl *table.Table, attrs []string, n int) (*Result, error) {
	sel := Dedupe(attrs)
	if len(sel) == 0 {
		return nil, fmt.Errorf("%w: no attributes selected", ErrInvalidSelection)
	}
	if err := CheckN(n, len(sel)); err != nil {
		return nil, err
	}
	colIdx, err := resolve(tbl, sel)
	if err != nil {
		return nil, err
	}

	// Rank every row and bucket row positions by key.
	members := make(map[string][]int)
	ranked := make(map[string][]string)
	values := make([]float64, len(sel))
	for ri := range tbl.Rows {
		for i, ci := range colIdx {
			v, ok := tbl.Float(ri, ci)
			if !ok {
				v = math.NaN()
			}
			values[i] = v
		}
		top := TopAttrs(sel, values, n)
		key := Key(top)
		if _, ok := ranked[key]; !ok {
			ranked[key] = top
		}
		members[key] = append(members[key], ri)
	}

	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return repr(ranked[keys[i]]) < repr(ranked[keys[j]]) })

	res := &Result{N: n, Attrs: sel, Rows: tbl.Len()}
	for id, key := range keys {
		rows := members[key]
		top := ranked[key]
		if zeroSum(tbl, rows, top) {
			res.Dropped = append(res.Dropped, Dropped{ID: id, Key: key, Rows: len(rows)})
			continue
		}
		out, err := build(tbl, rows, top, key, id, n)
		if err != nil {
			return nil, err
		}
		res.Groups = append(res.Groups, Group{ID: id, Key: key, Attrs: top, Table: out})
	}
	return res, nil
}

func resolve(tbl *table.Table, sel []string) ([]int, error) {
	out := make([]int, len(sel))
	for i, name := range sel {
		ci, ok := tbl.Index(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown attribute %q", ErrInvalidSelection, name)
		}
		if t := tbl.Columns[ci].Type; !t.IsNumber() {
			return nil, fmt.Errorf("%w: attribute %q is %s, not numeric", ErrInvalidSelection, name, t)
		}
		out[i] = ci
	}
	return out, nil
}

// repr renders attrs as a quoted list literal, ['a', 'b']. Group ids follow
// the order of these strings, so "['A', 'B']" sorts before "['A']".
func repr(attrs []string) string {
	if len(attrs) == 0 {
		return "[]"
	}
	return "['" + strings.Join(attrs, "', '") + "']"
}

// zeroSum sums every ranked value of every member row; nulls count as zero.
func zeroSum(tbl *table.Table, rows []int, top []string) bool {
	var sum float64
	for _, name := range top {
		ci, _ := tbl.Index(name)
		for _, ri := range rows {
			if v, ok := tbl.Float(ri, ci); ok {
				sum += v
			}
		}
	}
	return sum == 0
}

// build assembles the output table of one group: the ranked columns, the
// label column, the id column and the geometry. Repeated column names keep
// their first occurrence.
func build(tbl *table.Table, rows []int, top []string, key string, id, n int) (*table.Table, error) {
	type src struct {
		col int // source column, -1 for derived
		val any
	}
	var (
		cols    []table.Column
		sources []src
		seen    = make(map[string]struct{})
	)
	add := func(c table.Column, s src) {
		if _, dup := seen[c.Name]; dup {
			return
		}
		seen[c.Name] = struct{}{}
		cols = append(cols, c)
		sources = append(sources, s)
	}

	for _, name := range top {
		ci, _ := tbl.Index(name)
		add(tbl.Columns[ci], src{col: ci})
	}
	add(table.Column{Name: LabelColumn(n), Type: table.Text, Size: labelSize(key)}, src{col: -1, val: key})
	add(table.Column{Name: IDColumn(n), Type: table.Numeric, Size: idSize}, src{col: -1, val: float64(id)})

	out, err := table.New(cols)
	if err != nil {
		return nil, fmt.Errorf("group %d: %w", id, err)
	}
	out.ShapeType = tbl.ShapeType
	out.Rows = make([]table.Row, 0, len(rows))
	for _, ri := range rows {
		in := tbl.Rows[ri]
		vals := make([]any, len(sources))
		for i, s := range sources {
			if s.col >= 0 {
				vals[i] = in.Values[s.col]
			} else {
				vals[i] = s.val
			}
		}
		out.Rows = append(out.Rows, table.Row{ID: in.ID, Values: vals, Geometry: in.Geometry})
	}
	return out, nil
}

func labelSize(key string) uint8 {
	n := len(key)
	if n < 1 {
		n = 1
	}
	if n > maxLabelSize {
		n = maxLabelSize
	}
	return uint8(n)
}
