// Package shapefile moves feature tables in and out of ESRI shapefiles.
//
// Geometry is read and written through github.com/jonas-p/go-shp and stored
// in table.Row.Geometry as a shp.Shape. Attribute text is decoded with the
// code page declared by the layer's .cpg sidecar; output layers are always
// written as UTF-8 with a matching .cpg.
package shapefile

import (
	"errors"

	"go.uber.org/zap"
)

var (
	// ErrRead wraps every failure to open or decode a source layer.
	ErrRead = errors.New("shapefile read failed")

	// ErrWrite wraps every failure to create or fill an output layer.
	ErrWrite = errors.New("shapefile write failed")
)

// Options controls reading and writing. Zero values pick sensible defaults.
type Options struct {
	// Encoding overrides the .cpg code page of the source ("" => sidecar or
	// Windows-1252).
	Encoding string

	// Prj is a .prj file copied next to every written layer ("" => none).
	Prj string

	// Logger receives field renames and skipped values; nil => no-op.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
