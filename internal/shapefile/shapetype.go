package shapefile

import (
	"fmt"

	"github.com/jonas-p/go-shp"
)

var shapeTypeNames = map[shp.ShapeType]string{
	shp.NULL:        "NULL",
	shp.POINT:       "POINT",
	shp.POLYLINE:    "POLYLINE",
	shp.POLYGON:     "POLYGON",
	shp.MULTIPOINT:  "MULTIPOINT",
	shp.POINTZ:      "POINTZ",
	shp.POLYLINEZ:   "POLYLINEZ",
	shp.POLYGONZ:    "POLYGONZ",
	shp.MULTIPOINTZ: "MULTIPOINTZ",
	shp.POINTM:      "POINTM",
	shp.POLYLINEM:   "POLYLINEM",
	shp.POLYGONM:    "POLYGONM",
	shp.MULTIPOINTM: "MULTIPOINTM",
	shp.MULTIPATCH:  "MULTIPATCH",
}

// ShapeTypeName returns the ESRI name of a shape type code.
func ShapeTypeName(code int32) string {
	if name, ok := shapeTypeNames[shp.ShapeType(code)]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", code)
}
