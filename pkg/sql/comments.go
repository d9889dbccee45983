package sql

import "strings"

// StripComments removes -- line comments and /* */ block comments. Quoted
// literals and identifiers are copied untouched, so '--' inside a string
// survives. Line comments keep their terminating newline.
func StripComments(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	var quote byte
	for i := 0; i < len(text); i++ {
		ch := text[i]

		if quote != 0 {
			out.WriteByte(ch)
			switch {
			case ch == '\\' && i+1 < len(text):
				i++
				out.WriteByte(text[i])
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			out.WriteByte(ch)
		case ch == '-' && i+1 < len(text) && text[i+1] == '-':
			for i < len(text) && text[i] != '\n' {
				i++
			}
			if i < len(text) {
				out.WriteByte('\n')
			}
		case ch == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end == -1 {
				return out.String()
			}
			i += end + 3
			out.WriteByte(' ')
		default:
			out.WriteByte(ch)
		}
	}
	return out.String()
}
