package sql

import (
	"regexp"
	"strings"

	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

// ParsedColumn represents a column extracted from a SELECT list.
type ParsedColumn struct {
	Name string // The column name or alias
	Expr string // The full expression (e.g., "SUM(amount)")
}

var (
	asAliasPattern    = regexp.MustCompile(`(?i)\s+as\s+("[^"]+"|` + "`[^`]+`" + `|\[[^\]]+\]|[^\s()]+)\s*$`)
	plainIdentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)
	distinctPrefix    = regexp.MustCompile(`(?i)^distinct\s+`)
)

// ParseSelectList extracts output column names from the text between
// SELECT and FROM. It handles:
// - Simple columns: id, name
// - Aliased columns: name AS customer_name, COUNT(*) AS total
// - Implicit aliases: COUNT(*) total
// - Table-qualified columns: u.name
//
// Bare * entries are dropped since the columns cannot be known without a schema.
func ParseSelectList(list string) []ParsedColumn {
	list = distinctPrefix.ReplaceAllString(strings.TrimSpace(list), "")

	var result []ParsedColumn
	for _, expr := range textutil.SplitTopLevel(list, ',') {
		if expr == "*" {
			continue
		}
		result = append(result, ParsedColumn{
			Name: SelectColumnName(expr),
			Expr: expr,
		})
	}
	return result
}

// SelectColumnName picks the output name of one SELECT expression:
//   - "SUM(amount) AS total" → total
//   - "COUNT(*) total" → total
//   - "name" → name
//   - "u.name" → name
//   - "COUNT(*)" → COUNT(*)
func SelectColumnName(expr string) string {
	expr = strings.TrimSpace(expr)

	if matches := asAliasPattern.FindStringSubmatch(expr); matches != nil {
		return dequote(matches[1])
	}

	// Last bare token, only if it is a plain identifier with no parens.
	if parts := strings.Fields(expr); len(parts) > 0 {
		last := dequote(parts[len(parts)-1])
		if plainIdentPattern.MatchString(last) {
			return last
		}
	}

	return identName(expr)
}

// identName strips quoting and any schema/table qualifier from an identifier:
// `"public"."users"` → users.
func identName(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.LastIndex(raw, "."); idx != -1 {
		raw = raw[idx+1:]
	}
	return dequote(raw)
}

func dequote(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "`\"[]'")
}
