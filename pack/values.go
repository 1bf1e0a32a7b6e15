package pack

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var bareDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// escapeXML escapes the characters the package format reserves.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// NormalizeValue resolves SQL function placeholders and loose tokens
// into literal package values: NOW() style calls become a concrete
// timestamp, uuid generators become a fresh UUID, bare dates gain a
// zero time component and boolean words collapse to Y/N flags.
func NormalizeValue(value string) string {
	trimmed := strings.TrimSpace(value)
	upper := strings.ToUpper(trimmed)

	switch {
	case upper == "NOW()" || upper == "CURRENT_TIMESTAMP":
		return time.Now().Format("2006-01-02 15:04:05")
	case strings.HasPrefix(strings.ToLower(trimmed), "uuid_generate"):
		return uuid.New().String()
	case bareDatePattern.MatchString(trimmed):
		return trimmed + " 00:00:00"
	case upper == "TRUE":
		return "Y"
	case upper == "FALSE":
		return "N"
	}
	return value
}

func flag(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
