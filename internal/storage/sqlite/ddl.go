package sqlite

import (
	"strings"

	"topnsplit/internal/ddl"
)

// Dialect renders SQLite DDL: double-quoted identifiers and type affinities.
var Dialect = ddl.Dialect{
	Name:        "sqlite",
	Quote:       quoteIdent,
	MapType:     MapType,
	IfNotExists: "IF NOT EXISTS",
}

// MapType maps a logical type to a SQLite affinity. Timestamps are stored
// as ISO-8601 text.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case ddl.TypeInt:
		return "INTEGER"
	case ddl.TypeFloat:
		return "REAL"
	case ddl.TypeTimestamp, ddl.TypeText:
		return "TEXT"
	default:
		return ""
	}
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
