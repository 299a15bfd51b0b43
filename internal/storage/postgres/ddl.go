package postgres

import (
	"strings"

	"topnsplit/internal/ddl"
)

// Dialect renders Postgres DDL.
var Dialect = ddl.Dialect{
	Name:        "postgres",
	Quote:       pgIdent,
	MapType:     MapType,
	IfNotExists: "IF NOT EXISTS",
}

// MapType maps a logical type to a Postgres column type.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case ddl.TypeText:
		return "TEXT"
	case ddl.TypeInt:
		return "BIGINT"
	case ddl.TypeFloat:
		return "DOUBLE PRECISION"
	case ddl.TypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return ""
	}
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
