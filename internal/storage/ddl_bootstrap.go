package storage

import (
	"context"
	"fmt"
	"sync"

	"topnsplit/internal/ddl"
)

// DDLBootstrapper renders td in a backend's dialect and applies it through
// repo.Exec. Backends register one per kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, td ddl.TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates td through the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, td ddl.TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, td)
}
