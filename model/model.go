package model

import (
	"strings"
)

// Reference IDs used by the dictionary for column display types.
const (
	RefString   = 10
	RefInteger  = 11
	RefAmount   = 12
	RefID       = 13
	RefText     = 14
	RefDate     = 15
	RefDateTime = 16
	RefList     = 17
	RefTable    = 18
	RefTableDir = 19
	RefYesNo    = 20
	RefQuantity = 29
	RefUUID     = 36
)

// Bundle is a named model description: the set of tables to be created,
// loaded from a bundle YAML file and staged before compilation.
type Bundle struct {
	Name        string
	Version     string
	Description string
	Author      string
	Tables      []Table
}

// Table is one table-to-be-created inside a bundle. Master names another
// table in the same bundle; empty means this is a root (header) table.
type Table struct {
	Name        string
	Master      string
	Description string
	Help        string
	Columns     []string
}

// ColumnSpec is a parsed column token.
type ColumnSpec struct {
	Name        string
	ReferenceID int
	FieldLength int
}

// tagRefs maps single-letter type tags (the "Q#Qty" token form) to
// reference IDs.
var tagRefs = map[string]int{
	"Q": RefQuantity,
	"A": RefAmount,
	"Y": RefYesNo,
	"D": RefDate,
	"d": RefDateTime,
	"T": RefText,
	"L": RefList,
}

// typeRefs maps spelled-out type names (the "Qty:number" token form) to
// reference IDs.
var typeRefs = map[string]int{
	"string":   RefString,
	"text":     RefText,
	"number":   RefInteger,
	"integer":  RefInteger,
	"int":      RefInteger,
	"amount":   RefAmount,
	"decimal":  RefAmount,
	"quantity": RefQuantity,
	"date":     RefDate,
	"datetime": RefDateTime,
	"list":     RefList,
	"table":    RefTable,
	"yes-no":   RefYesNo,
	"yesno":    RefYesNo,
	"boolean":  RefYesNo,
}

// ParseColumn parses a single column token. Two forms are accepted:
// a tag prefix ("Q#Qty", "Y#IsPaid") or a type suffix ("Qty:quantity").
// Untagged tokens default to String, except names ending in _ID which
// become table references.
func ParseColumn(token string) ColumnSpec {
	token = strings.TrimSpace(token)

	if i := strings.Index(token, "#"); i > 0 {
		tag := token[:i]
		name := strings.TrimSpace(token[i+1:])
		if ref, ok := tagRefs[tag]; ok {
			return ColumnSpec{Name: name, ReferenceID: ref, FieldLength: FieldLength(ref)}
		}
		// Unknown tag: keep the name, fall through to the defaults
		token = name
	}

	if i := strings.Index(token, ":"); i > 0 {
		name := strings.TrimSpace(token[:i])
		typ := strings.ToLower(strings.TrimSpace(token[i+1:]))
		ref := RefString
		if r, ok := typeRefs[typ]; ok {
			ref = r
		}
		return ColumnSpec{Name: name, ReferenceID: ref, FieldLength: FieldLength(ref)}
	}

	ref := RefString
	if strings.HasSuffix(token, "_ID") {
		ref = RefTableDir
	}
	return ColumnSpec{Name: token, ReferenceID: ref, FieldLength: FieldLength(ref)}
}

// ParseColumnSet parses a comma-joined column set, skipping empty tokens.
func ParseColumnSet(columnSet string) []ColumnSpec {
	var specs []ColumnSpec
	for _, token := range strings.Split(columnSet, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		specs = append(specs, ParseColumn(token))
	}
	return specs
}

// FieldLength returns the default display length for a reference ID.
func FieldLength(refID int) int {
	switch refID {
	case RefString:
		return 255
	case RefInteger, RefID:
		return 22
	case RefAmount:
		return 22
	case RefText:
		return 4000
	case RefDate, RefDateTime:
		return 29
	case RefList:
		return 10
	case RefTable, RefTableDir:
		return 22
	case RefYesNo:
		return 1
	case RefUUID:
		return 36
	default:
		return 255
	}
}

// DisplayName turns a column or table name into a human-readable label.
func DisplayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
