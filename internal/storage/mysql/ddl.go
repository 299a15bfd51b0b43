package mysql

import (
	"strings"

	"topnsplit/internal/ddl"
)

// Dialect renders MySQL DDL with backtick identifiers.
var Dialect = ddl.Dialect{
	Name:        "mysql",
	Quote:       myIdent,
	MapType:     MapType,
	IfNotExists: "IF NOT EXISTS",
}

// MapType maps a logical type to a MySQL column type. Text uses VARCHAR so
// it can take part in primary keys.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case ddl.TypeText:
		return "VARCHAR(512)"
	case ddl.TypeInt:
		return "BIGINT"
	case ddl.TypeFloat:
		return "DOUBLE"
	case ddl.TypeTimestamp:
		return "DATETIME(6)"
	default:
		return ""
	}
}

func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
