// Package textutil holds the small string and number helpers shared by the
// parsers and the schema matcher.
package textutil

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName canonicalizes a column, field or table name for comparison.
// "  First Name " → "first_name", "\"Donor-ID\"" → "donor_id".
func NormalizeName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(s)
	s = strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(s)
	s = nonAlnumRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Tokenize splits a normalized name on underscores.
func Tokenize(name string) []string {
	parts := strings.Split(NormalizeName(name), "_")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Dedupe returns values with later duplicates removed, preserving order.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// UniqueNames returns names with repeats renamed to name_2, name_3 and so
// on. A generated name never collides with any other emitted name.
func UniqueNames(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]struct{}, len(names))
	for i, name := range names {
		if _, taken := used[name]; taken {
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := used[name]; !taken {
					break
				}
			}
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

// SafeRatio divides num by den, returning 0 when den is not a positive
// finite number or the result is not finite.
func SafeRatio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// ContainsAny reports whether any of want appears in tokens.
func ContainsAny(tokens []string, want ...string) bool {
	for _, t := range tokens {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}

// SplitTopLevel splits s on sep, ignoring separators nested inside
// parentheses or inside single, double or backtick quoted spans. Parts are
// trimmed and empty parts dropped.
//
//	SplitTopLevel("a, b(c,d), 'e,f'", ',') → ["a", "b(c,d)", "'e,f'"]
func SplitTopLevel(s string, sep rune) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	var quote rune
	escaped := false

	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}

	for _, ch := range s {
		if quote != 0 {
			current.WriteRune(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				// A doubled quote closes and immediately reopens, which keeps
				// the span intact.
				quote = 0
			}
			continue
		}

		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			current.WriteRune(ch)
		case ch == '(':
			depth++
			current.WriteRune(ch)
		case ch == ')':
			if depth > 0 {
				depth--
			}
			current.WriteRune(ch)
		case ch == sep && depth == 0:
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return parts
}
