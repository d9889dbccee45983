package logging

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxValueLogLength bounds logged cell values and SQL fragments, in runes.
	MaxValueLogLength = 100
	// RedactedText replaces credentials.
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)

	// IDENTIFIED BY 'x' and PASSWORD 'x' clauses in dumped DDL
	ddlSecretPattern = regexp.MustCompile(`(?i)\b(identified\s+by|password)\s+'[^']*'`)
)

// SanitizeConnectionString removes credentials from a libpq keyword string
// or a postgres:// URL.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeError strips credentials from an error message. pgx connection
// errors echo the DSN they were given.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeConnectionString(err.Error())
}

// SanitizeStatement prepares a SQL fragment from an uploaded dump for
// logging: whitespace is collapsed, secrets in DDL are redacted and the
// result is truncated.
func SanitizeStatement(stmt string) string {
	if stmt == "" {
		return ""
	}
	sanitized := strings.Join(strings.Fields(stmt), " ")
	sanitized = ddlSecretPattern.ReplaceAllString(sanitized, "${1} '"+RedactedText+"'")
	sanitized = passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	return TruncateString(sanitized, MaxValueLogLength)
}

// SanitizeValue prepares an uploaded cell value for logging. Control
// characters are escaped so a payload cannot forge log lines.
func SanitizeValue(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				continue
			}
			b.WriteRune(r)
		}
	}
	return TruncateString(b.String(), MaxValueLogLength)
}

// TruncateString truncates s to maxLen runes and adds an ellipsis if needed.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
