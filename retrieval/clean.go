package retrieval

import (
	"regexp"
	"strings"
)

// tableRuleRow matches markdown table separator rows like |---|---| that
// ingestion leaves behind when tables are flattened into text.
var tableRuleRow = regexp.MustCompile(`\|[-\s|]+\|`)

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

// CleanContent strips markdown table scaffolding and escape backslashes
// from a retrieved chunk and collapses the leftover whitespace.
func CleanContent(s string) string {
	s = tableRuleRow.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "|", " ")
	s = strings.ReplaceAll(s, "\\", "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
