// Package file implements local filesystem data sources.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local is a filesystem data source bound to one path.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open opens the bound path for reading.
//
// A canceled ctx short-circuits before touching the filesystem. Filesystem
// errors are wrapped with the path and keep errors.Is(err, os.ErrNotExist)
// working.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Sidecar returns the file next to path that shares its base name and has the
// given extension (".prj", ".cpg"). Shapefile sets written on other systems
// often use upper-case extensions, so both cases are tried. ok is false when
// neither exists.
func Sidecar(path, ext string) (*Local, bool) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, e := range []string{strings.ToLower(ext), strings.ToUpper(ext)} {
		p := base + e
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return NewLocal(p), true
		}
	}
	return nil, false
}
