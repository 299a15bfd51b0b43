package shapefile

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxFieldName is the longest field name a DBF header can store.
const MaxFieldName = 10

// Rename records a column whose name did not fit DBF rules.
type Rename struct {
	From string
	To   string
}

// FieldName folds s into a DBF-safe name: accents are stripped, anything
// outside [A-Za-z0-9_] becomes '_', runs of '_' collapse and the result is
// cut to MaxFieldName bytes. Case is kept.
func FieldName(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	folded, _, _ := transform.String(t, strings.TrimSpace(s))

	var b strings.Builder
	prevUnderscore := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := b.String()
	if strings.Trim(name, "_") == "" {
		name = "FIELD"
	}
	if len(name) > MaxFieldName {
		name = name[:MaxFieldName]
	}
	return name
}

// FieldNames maps names to unique DBF field names. Collisions are compared
// case-insensitively and resolved with a numeric suffix ("Top_2_Ac_1").
// Only names that changed are listed in the renames.
func FieldNames(names []string) ([]string, []Rename) {
	out := make([]string, len(names))
	seen := make(map[string]struct{}, len(names))
	var renames []Rename
	for i, name := range names {
		base := FieldName(name)
		cand := base
		for n := 1; ; n++ {
			if _, dup := seen[strings.ToUpper(cand)]; !dup {
				break
			}
			suffix := "_" + strconv.Itoa(n)
			stem := base
			if len(stem)+len(suffix) > MaxFieldName {
				stem = stem[:MaxFieldName-len(suffix)]
			}
			cand = stem + suffix
		}
		seen[strings.ToUpper(cand)] = struct{}{}
		out[i] = cand
		if cand != name {
			renames = append(renames, Rename{From: name, To: cand})
		}
	}
	return out, renames
}
