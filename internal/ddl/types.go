// Package ddl holds the database-agnostic table model that storage backends
// render into their own CREATE TABLE dialect.
package ddl

// Logical column types understood by every backend's type mapper.
const (
	TypeText      = "text"
	TypeInt       = "int"
	TypeFloat     = "float"
	TypeTimestamp = "timestamp"
)

// ColumnDef describes a single column.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - Type: logical type (TypeText, TypeInt, ...)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
type ColumnDef struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// TableDef holds the possibly schema-qualified table name ("schema.table")
// and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
