package shapefile

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"topnsplit/internal/datasource"
	"topnsplit/internal/datasource/file"
)

// DefaultEncoding is assumed for layers without a .cpg sidecar.
const DefaultEncoding = "windows-1252"

// OutputEncoding is written to the .cpg of every output layer.
const OutputEncoding = "UTF-8"

// Encoding resolves a .cpg code page name. Bare Windows code page numbers
// ("1252", "65001") and the ESRI "UTF8" spelling are accepted besides the
// WHATWG labels.
func Encoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	switch label {
	case "":
		label = DefaultEncoding
	case "utf8", "65001":
		return unicode.UTF8, nil
	case "1252", "cp1252", "ansi 1252":
		return charmap.Windows1252, nil
	case "88591", "8859_1":
		return charmap.ISO8859_1, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("code page %q: %w", name, err)
	}
	return enc, nil
}

// sourceEncoding returns the decoder for the attribute text of shpPath and
// the name it was resolved from.
func sourceEncoding(ctx context.Context, shpPath, override string) (encoding.Encoding, string, error) {
	name := override
	if name == "" {
		name = DefaultEncoding
		if cpg, ok := file.Sidecar(shpPath, ".cpg"); ok {
			b, err := datasource.ReadAll(ctx, cpg)
			if err != nil {
				return nil, "", err
			}
			if s := strings.TrimSpace(string(b)); s != "" {
				name = s
			}
		}
	}
	enc, err := Encoding(name)
	if err != nil {
		return nil, "", err
	}
	return enc, name, nil
}

// isUTF8 reports whether enc passes bytes through unchanged.
func isUTF8(enc encoding.Encoding) bool { return enc == unicode.UTF8 }
