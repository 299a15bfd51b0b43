// Package all wires every built-in manifest backend into the storage
// factory. Import it for side effects:
//
//	import _ "topnsplit/internal/storage/all"
//
// after which storage.New accepts the kinds "sqlite", "postgres", "mysql"
// and "mssql".
package all

import (
	_ "topnsplit/internal/storage/mssql"
	_ "topnsplit/internal/storage/mysql"
	_ "topnsplit/internal/storage/postgres"
	_ "topnsplit/internal/storage/sqlite"
)
