package mssql

import (
	"fmt"
	"strings"

	"topnsplit/internal/ddl"
)

// Dialect renders SQL Server DDL with [bracket] identifiers. SQL Server has
// no CREATE TABLE IF NOT EXISTS; CreateTableSQL adds an OBJECT_ID guard.
var Dialect = ddl.Dialect{
	Name:    "mssql",
	Quote:   msIdent,
	MapType: MapType,
}

// MapType maps a logical type to a SQL Server column type. Text is bounded
// so it can take part in primary keys.
func MapType(logical string) string {
	switch strings.ToLower(strings.TrimSpace(logical)) {
	case ddl.TypeText:
		return "NVARCHAR(450)"
	case ddl.TypeInt:
		return "BIGINT"
	case ddl.TypeFloat:
		return "FLOAT"
	case ddl.TypeTimestamp:
		return "DATETIME2"
	default:
		return ""
	}
}

// CreateTableSQL returns an idempotent CREATE TABLE batch for td.
func CreateTableSQL(td ddl.TableDef) (string, error) {
	create, err := ddl.CreateTable(Dialect, td)
	if err != nil {
		return "", err
	}
	name := strings.ReplaceAll(ddl.QuoteFQN(msIdent, td.FQN), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n%s", name, create), nil
}

// msIdent safely quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }
