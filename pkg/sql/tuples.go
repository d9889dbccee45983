package sql

import (
	"strings"

	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

// readGroup returns the body of the parenthesized group opening at text[open]
// and the index of its closing paren. Parens inside quoted literals do not
// count. ok is false when the group is unterminated.
func readGroup(text string, open int) (body string, end int, ok bool) {
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
		ch := text[i]
		if quote != 0 {
			switch {
			case ch == '\\':
				i++
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[open+1 : i], i, true
			}
		}
	}
	return "", len(text), false
}

// ScanTuples reads a VALUES list starting at pos: "(...), (...), ...". It
// keeps at most limit rows, counts every tuple it sees, and stops at the
// first character that does not continue the list.
func ScanTuples(text string, pos, limit int) (rows [][]*string, total int) {
	for {
		pos = skipSpace(text, pos)
		if pos >= len(text) || text[pos] != '(' {
			return rows, total
		}
		body, end, ok := readGroup(text, pos)
		if !ok {
			return rows, total
		}
		total++
		if len(rows) < limit {
			rows = append(rows, tupleValues(body))
		}

		pos = skipSpace(text, end+1)
		if pos >= len(text) || text[pos] != ',' {
			return rows, total
		}
		pos++
	}
}

func tupleValues(body string) []*string {
	parts := textutil.SplitTopLevel(body, ',')
	values := make([]*string, len(parts))
	for i, p := range parts {
		values[i] = NormalizeLiteral(p)
	}
	return values
}

func skipSpace(text string, pos int) int {
	for pos < len(text) && strings.ContainsRune(" \t\r\n", rune(text[pos])) {
		pos++
	}
	return pos
}

var literalUnescaper = strings.NewReplacer(`\'`, `'`, `\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t")

// NormalizeLiteral converts a SQL literal to a cell value. Matching
// surrounding quotes are stripped and escapes resolved; bare NULL (any case)
// and empty strings become nil. Other tokens (numbers, TRUE, NOW()) are kept
// verbatim.
func NormalizeLiteral(raw string) *string {
	t := strings.TrimSpace(raw)
	if t == "" || strings.EqualFold(t, "null") {
		return nil
	}
	if len(t) >= 2 && (t[0] == '\'' || t[0] == '"') && t[len(t)-1] == t[0] {
		q := string(t[0])
		inner := strings.ReplaceAll(t[1:len(t)-1], q+q, q)
		inner = literalUnescaper.Replace(inner)
		if inner == "" {
			return nil
		}
		return &inner
	}
	return &t
}
