package importer

import (
	"strings"
	"unicode"
)

// Kind classifies one document tag.
type Kind int

const (
	// KindValue is a scalar child carrying a column value.
	KindValue Kind = iota
	// KindRecord is a recognized entity element to be dispatched.
	KindRecord
	// KindUnknownEntity is an entity-shaped element outside the known
	// families. These are skipped, counted and logged, never fatal.
	KindUnknownEntity
)

// supportedTables is the closed set of entity families the importer
// dispatches, beyond the generic prefix families below.
var supportedTables = map[string]bool{
	"AD_ELEMENT":    true,
	"AD_TABLE":      true,
	"AD_COLUMN":     true,
	"AD_WINDOW":     true,
	"AD_TAB":        true,
	"AD_FIELD":      true,
	"AD_MENU":       true,
	"AD_PROCESS":    true,
	"MP_MAINTAIN":   true,
	"MP_METER":      true,
	"MP_JOBSTANDAR": true,
	"A_ASSET":       true,
	"A_ASSET_GROUP": true,
}

var supportedPrefixes = []string{"AD_", "MP_", "A_ASSET"}

// Classify decides how to treat a start tag. Recognition is purely by
// name family; hasAction marks elements carrying an action attribute,
// which are entity-shaped even outside the families.
func Classify(tag string, hasAction bool) Kind {
	upper := strings.ToUpper(tag)
	if supportedTables[upper] {
		return KindRecord
	}
	for _, prefix := range supportedPrefixes {
		if strings.HasPrefix(upper, prefix) && looksLikeTable(tag) {
			return KindRecord
		}
	}
	if hasAction || looksLikeEntity(tag) {
		return KindUnknownEntity
	}
	return KindValue
}

// looksLikeTable filters out the scalar tags that share an entity
// prefix, like AD_Table_ID or AD_Column_UU.
func looksLikeTable(tag string) bool {
	upper := strings.ToUpper(tag)
	return !strings.HasSuffix(upper, "_ID") && !strings.HasSuffix(upper, "_UU")
}

// looksLikeEntity reports whether an unrecognized tag is shaped like a
// table element rather than a value: underscored, not a reference or
// UUID column, leading capital.
func looksLikeEntity(tag string) bool {
	if !strings.Contains(tag, "_") || !looksLikeTable(tag) {
		return false
	}
	r := []rune(tag)
	return len(r) > 0 && unicode.IsUpper(r[0])
}
