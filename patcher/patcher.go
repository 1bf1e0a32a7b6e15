package patcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ridoystarlord/packpipe/sqlfile"
)

// watchedKinds are the element kinds the patcher will edit. Anything
// else in the document is never touched.
var watchedKinds = []string{
	"AD_Element", "AD_Window", "AD_Tab", "AD_Field",
	"AD_Process", "AD_Form", "AD_Menu",
}

// maxScanWindow bounds the closing-tag search so a malformed document
// cannot send the scan to the end of a huge file.
const maxScanWindow = 50000

// Rule selects elements of one kind by a key field and assigns new
// values to fields inside the matched element.
type Rule struct {
	Table     string
	KeyColumn string
	KeyValue  string
	Fields    map[string]string
}

// PatchResult summarizes one patch run.
type PatchResult struct {
	Updated int
	PerKind map[string]int
}

// ParseRules loads patch rules from a .sql file, or from every .sql
// file in a directory in name order.
func ParseRules(path string) ([]Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %v", err)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading rules directory: %v", err)
		}
		files = files[:0]
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".sql") {
				continue
			}
			files = append(files, filepath.Join(path, e.Name()))
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no .sql rule files found in %s", path)
		}
	}

	var rules []Rule
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading rules from %s: %v", file, err)
		}
		updates, err := sqlfile.ParseUpdates(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing rules from %s: %v", file, err)
		}
		for _, u := range updates {
			rules = append(rules, Rule{
				Table:     u.Table,
				KeyColumn: u.KeyColumn,
				KeyValue:  u.KeyValue,
				Fields:    u.Sets,
			})
		}
	}
	return rules, nil
}

// ApplyRules edits a generated package document. The document is
// treated as a line sequence: only the value segments of matched field
// lines change, every other byte stays as it was. An empty outPath
// rewrites the document in place.
func ApplyRules(docPath string, rules []Rule, outPath string) (*PatchResult, error) {
	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("reading package document: %v", err)
	}
	lines := strings.Split(string(data), "\n")

	if outPath == "" {
		outPath = docPath
	}

	res := &PatchResult{PerKind: make(map[string]int)}
	for i := 0; i < len(lines); i++ {
		kind := openTagKind(lines[i])
		if kind == "" {
			continue
		}
		end := findClosing(lines, i, kind)
		if end < 0 {
			continue
		}

		// base distribution elements are never patched
		if entityType(lines, i, end) == "D" {
			fmt.Printf("  ⚠️  Skipping base element %s at line %d\n", kind, i+1)
			continue
		}

		keys := regionKeys(lines, i, end, kind)
		for _, rule := range rules {
			if !strings.EqualFold(rule.Table, kind) {
				continue
			}
			if keys[rule.KeyColumn] != rule.KeyValue {
				continue
			}
			matched := 0
			for field, value := range rule.Fields {
				for j := i; j <= end; j++ {
					if newLine, ok := setTagValue(lines[j], field, value); ok {
						lines[j] = newLine
						matched++
						break
					}
				}
			}
			if matched > 0 {
				res.Updated += matched
				res.PerKind[kind]++
			}
		}
	}

	if res.Updated == 0 && len(rules) > 0 {
		fmt.Println("  ⚠️  No elements matched any rule")
	}
	if res.Updated > 0 || outPath != docPath {
		if err := os.WriteFile(outPath, []byte(strings.Join(lines, "\n")), 0644); err != nil {
			return nil, fmt.Errorf("writing package document: %v", err)
		}
	}
	return res, nil
}

// openTagKind reports which watched kind, if any, opens on this line.
func openTagKind(line string) string {
	t := strings.TrimSpace(line)
	for _, kind := range watchedKinds {
		if opensTag(t, kind) {
			return kind
		}
	}
	return ""
}

func opensTag(trimmed, kind string) bool {
	return strings.HasPrefix(trimmed, "<"+kind+">") || strings.HasPrefix(trimmed, "<"+kind+" ")
}

// findClosing walks forward to the element's closing tag, counting
// nested same-kind elements, within the bounded scan window.
func findClosing(lines []string, start int, kind string) int {
	closeMarker := "</" + kind + ">"
	limit := start + maxScanWindow
	if limit > len(lines)-1 {
		limit = len(lines) - 1
	}

	depth := 0
	for j := start; j <= limit; j++ {
		t := strings.TrimSpace(lines[j])
		if opensTag(t, kind) {
			// self-contained on one line
			if strings.Contains(t, closeMarker) || strings.HasSuffix(t, "/>") {
				if depth == 0 {
					return j
				}
				continue
			}
			depth++
			continue
		}
		if strings.HasPrefix(t, closeMarker) {
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// entityType reads the element's origin marker, the first EntityType
// value in the region.
func entityType(lines []string, start, end int) string {
	for j := start; j <= end; j++ {
		if v, ok := tagValue(lines[j], "EntityType"); ok {
			return v
		}
	}
	return ""
}

// regionKeys collects the first occurrence of each key field inside
// the element region.
func regionKeys(lines []string, start, end int, kind string) map[string]string {
	tags := []string{"ColumnName", "Name", kind + "_ID"}
	keys := make(map[string]string, len(tags))
	for j := start; j <= end; j++ {
		for _, tag := range tags {
			if _, seen := keys[tag]; seen {
				continue
			}
			if v, ok := tagValue(lines[j], tag); ok {
				keys[tag] = v
			}
		}
	}
	return keys
}

// tagValue extracts the value between a tag's markers on one line.
func tagValue(line, tag string) (string, bool) {
	lower := strings.ToLower(line)
	lt := strings.ToLower(tag)
	open := "<" + lt + ">"
	i := strings.Index(lower, open)
	if i < 0 {
		return "", false
	}
	j := strings.Index(lower[i:], "</"+lt+">")
	if j < 0 {
		return "", false
	}
	return unescapeValue(line[i+len(open) : i+j]), true
}

// setTagValue replaces the value between a tag's markers, expanding a
// self-closing marker into an explicit pair. Everything else on the
// line is preserved.
func setTagValue(line, tag, value string) (string, bool) {
	lower := strings.ToLower(line)
	lt := strings.ToLower(tag)

	open := "<" + lt + ">"
	if i := strings.Index(lower, open); i >= 0 {
		if j := strings.Index(lower[i:], "</"+lt+">"); j >= 0 {
			j += i
			return line[:i+len(open)] + escapeValue(value) + line[j:], true
		}
	}

	selfClose := "<" + lt + "/>"
	if i := strings.Index(lower, selfClose); i >= 0 {
		actual := line[i+1 : i+1+len(tag)]
		return line[:i] + "<" + actual + ">" + escapeValue(value) + "</" + actual + ">" + line[i+len(selfClose):], true
	}
	return line, false
}

func escapeValue(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

func unescapeValue(s string) string {
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
