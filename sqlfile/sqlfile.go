package sqlfile

import (
	"fmt"
	"regexp"
	"strings"
)

// Insert is one parsed INSERT statement. Rows holds one value tuple per
// VALUES set, aligned with Columns.
type Insert struct {
	Table   string
	Columns []string
	Rows    [][]string
}

// Update is one parsed UPDATE rule: the target element kind, the
// field assignments, and the WHERE key that selects elements.
type Update struct {
	Table     string
	Sets      map[string]string
	KeyColumn string
	KeyValue  string
}

var (
	lineCommentPattern  = regexp.MustCompile(`--[^\n]*`)
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

	insertPattern = regexp.MustCompile(`(?is)INSERT\s+INTO\s+(\w+)\s*\(([^)]+)\)\s*VALUES\s*([^;]+);`)
	updatePattern = regexp.MustCompile(`(?is)UPDATE\s+(\w+)\s+SET\s+(.+?)\s+WHERE\s+(.+?);`)

	setPairPattern      = regexp.MustCompile(`(\w+)\s*=\s*'((?:[^']|'')*)'`)
	columnNameKey       = regexp.MustCompile(`(?i)ColumnName\s*=\s*'([^']+)'`)
	identifierKey       = regexp.MustCompile(`(?i)AD_(Element|Window|Tab|Field|Process|Form|Menu)_ID\s*=\s*(\d+)`)
	nameKey             = regexp.MustCompile(`(?i)(^|[^A-Za-z_])Name\s*=\s*'((?:[^']|'')*)'`)
	canonicalIdentifier = map[string]string{
		"element": "AD_Element_ID",
		"window":  "AD_Window_ID",
		"tab":     "AD_Tab_ID",
		"field":   "AD_Field_ID",
		"process": "AD_Process_ID",
		"form":    "AD_Form_ID",
		"menu":    "AD_Menu_ID",
	}
)

// StripComments removes line and block comments.
func StripComments(sql string) string {
	sql = blockCommentPattern.ReplaceAllString(sql, " ")
	sql = lineCommentPattern.ReplaceAllString(sql, " ")
	return sql
}

// ParseInserts extracts every INSERT statement from a script. Order
// follows the script; statements that are not INSERTs are ignored.
func ParseInserts(sql string) []Insert {
	sql = StripComments(sql)

	var inserts []Insert
	for _, m := range insertPattern.FindAllStringSubmatch(sql, -1) {
		table := strings.ToLower(strings.TrimSpace(m[1]))
		if table == "" || table == "delete" {
			continue
		}

		var columns []string
		for _, c := range strings.Split(m[2], ",") {
			columns = append(columns, strings.ToLower(strings.TrimSpace(c)))
		}

		var rows [][]string
		for _, set := range splitValueSets(m[3]) {
			values := parseValues(set)
			if len(values) != len(columns) {
				continue
			}
			rows = append(rows, values)
		}
		if len(rows) == 0 {
			continue
		}
		inserts = append(inserts, Insert{Table: table, Columns: columns, Rows: rows})
	}
	return inserts
}

// ParseUpdates extracts UPDATE rules. Every statement must carry a
// recognizable WHERE key; a rule without one is a structural error.
func ParseUpdates(sql string) ([]Update, error) {
	sql = StripComments(sql)

	var updates []Update
	for _, m := range updatePattern.FindAllStringSubmatch(sql, -1) {
		u := Update{
			Table: strings.TrimSpace(m[1]),
			Sets:  make(map[string]string),
		}
		for _, pair := range setPairPattern.FindAllStringSubmatch(m[2], -1) {
			u.Sets[pair[1]] = unescapeQuotes(pair[2])
		}
		if len(u.Sets) == 0 {
			return nil, fmt.Errorf("update rule for %s has no field assignments", u.Table)
		}

		where := m[3]
		switch {
		case columnNameKey.MatchString(where):
			u.KeyColumn = "ColumnName"
			u.KeyValue = columnNameKey.FindStringSubmatch(where)[1]
		case identifierKey.MatchString(where):
			km := identifierKey.FindStringSubmatch(where)
			u.KeyColumn = canonicalIdentifier[strings.ToLower(km[1])]
			u.KeyValue = km[2]
		case nameKey.MatchString(where):
			u.KeyColumn = "Name"
			u.KeyValue = unescapeQuotes(nameKey.FindStringSubmatch(where)[2])
		default:
			return nil, fmt.Errorf("update rule for %s has no recognizable key: %s", u.Table, strings.TrimSpace(where))
		}
		updates = append(updates, u)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no update rules found")
	}
	return updates, nil
}

// splitValueSets splits a multi-row VALUES clause into one string per
// parenthesized tuple, honoring quotes and nested function parens.
func splitValueSets(values string) []string {
	var sets []string
	depth := 0
	inQuote := false
	start := -1

	runes := []rune(values)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inQuote {
			if c == '\'' {
				// doubled quote stays inside the value
				if i+1 < len(runes) && runes[i+1] == '\'' {
					i++
					continue
				}
				inQuote = false
			}
			continue
		}
		switch c {
		case '\'':
			inQuote = true
		case '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ')':
			depth--
			if depth == 0 && start >= 0 {
				sets = append(sets, string(runes[start:i]))
				start = -1
			}
		}
	}
	return sets
}

// parseValues splits one tuple into values, honoring quotes and
// function-call parens, stripping outer quotes.
func parseValues(tuple string) []string {
	var values []string
	var current strings.Builder
	depth := 0
	inQuote := false

	flush := func() {
		values = append(values, cleanValue(current.String()))
		current.Reset()
	}

	runes := []rune(tuple)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if inQuote {
			if c == '\'' {
				if i+1 < len(runes) && runes[i+1] == '\'' {
					current.WriteRune('\'')
					i++
					continue
				}
				inQuote = false
				current.WriteRune(c)
				continue
			}
			current.WriteRune(c)
			continue
		}
		switch c {
		case '\'':
			inQuote = true
			current.WriteRune(c)
		case '(':
			depth++
			current.WriteRune(c)
		case ')':
			depth--
			current.WriteRune(c)
		case ',':
			if depth == 0 {
				flush()
			} else {
				current.WriteRune(c)
			}
		default:
			current.WriteRune(c)
		}
	}
	flush()
	return values
}

// cleanValue trims a raw token and strips its outer quotes.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") {
		v = v[1 : len(v)-1]
	}
	if strings.EqualFold(v, "NULL") {
		return ""
	}
	return v
}

func unescapeQuotes(v string) string {
	return strings.ReplaceAll(v, "''", "'")
}
