// Package datasource defines the minimal contract for byte sources read by
// the splitter: shapefile sidecars (.prj, .cpg) and attribute list files.
package datasource

import (
	"context"
	"fmt"
	"io"
)

// Source opens a readable stream. Implementations should honor ctx at open
// time.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ReadAll opens src and reads it to the end.
func ReadAll(ctx context.Context, src Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return b, nil
}
