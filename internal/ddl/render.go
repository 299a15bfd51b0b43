package ddl

import (
	"fmt"
	"strings"
)

// Dialect renders identifiers and logical types for one SQL flavor.
type Dialect struct {
	Name    string
	Quote   func(ident string) string
	MapType func(logical string) string
	// IfNotExists is emitted after CREATE TABLE when non-empty.
	IfNotExists string
}

// CreateTable renders a CREATE TABLE statement for t in dialect d. Dotted
// table names are quoted segment by segment.
func CreateTable(d Dialect, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := d.MapType(c.Type)
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s has unknown type %q", d.Name, name, c.Type)
		}
		col := d.Quote(name) + " " + typ
		if !c.Nullable {
			col += " NOT NULL"
		}
		cols = append(cols, col)
		if c.PrimaryKey {
			pks = append(pks, d.Quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if d.IfNotExists != "" {
		create += d.IfNotExists + " "
	}
	return fmt.Sprintf("%s%s (\n  %s\n);", create, QuoteFQN(d.Quote, fqn), strings.Join(cols, ",\n  ")), nil
}

// QuoteFQN quotes each dot-separated segment of fqn with quote.
func QuoteFQN(quote func(string) string, fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// QuoteList quotes every identifier in ids.
func QuoteList(quote func(string) string, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = quote(id)
	}
	return out
}
