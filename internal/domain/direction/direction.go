// Package direction defines crossing directions and filter-token
// normalization.
package direction

import "strings"

// Direction classifies which way a track crossed a zone boundary.
type Direction string

// Canonical direction values. These are the only values the emitter
// ever writes; everything else exists to normalize query input.
const (
	Loaded   Direction = "loaded"
	Unloaded Direction = "unloaded"
)

// All is the filter token that disables direction filtering.
const All = "all"

// synonyms maps lowercase query tokens to canonical directions. The
// Portuguese entries come from the original deployment's dashboards.
var synonyms = map[string]Direction{
	"loaded":          Loaded,
	"load":            Loaded,
	"carga":           Loaded,
	"carregado":       Loaded,
	"carregamento":    Loaded,
	"unloaded":        Unloaded,
	"unload":          Unloaded,
	"descarga":        Unloaded,
	"descarregado":    Unloaded,
	"descarregamento": Unloaded,
}

// Normalize maps a user-supplied token to its canonical direction.
// Unrecognized tokens are returned trimmed and lowercased but otherwise
// untouched, so as a filter they simply match nothing.
func Normalize(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if d, ok := synonyms[t]; ok {
		return string(d)
	}
	return t
}

// FilterActive reports whether a direction filter token actually
// restricts results. Empty and "all" both disable the filter.
func FilterActive(token string) bool {
	t := strings.ToLower(strings.TrimSpace(token))
	return t != "" && t != All
}
