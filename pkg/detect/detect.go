// Package detect guesses the format of an uploaded buffer from its explicit
// format parameter, filename, MIME type or content.
package detect

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ekaya-inc/ekaya-ingest/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
)

// ContentSniffLimit caps how many characters FromContent examines.
const ContentSniffLimit = 4096

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

	sqlKeywords = regexp.MustCompile(`create\s+table|insert\s+into|select`)
)

// ParseFormat validates an explicit format parameter. An empty string or
// "auto" means no explicit choice and returns ok=false.
func ParseFormat(s string) (format models.SourceType, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", false, nil
	case "csv", "tsv":
		return models.SourceTypeCSV, true, nil
	case "excel", "xlsx", "xls":
		return models.SourceTypeExcel, true, nil
	case "sql":
		return models.SourceTypeSQL, true, nil
	default:
		return "", false, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFormat, s)
	}
}

// FromFilename maps a file extension to a format.
func FromFilename(name string) (models.SourceType, bool) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(name))) {
	case ".csv", ".tsv":
		return models.SourceTypeCSV, true
	case ".xlsx", ".xls":
		return models.SourceTypeExcel, true
	case ".sql":
		return models.SourceTypeSQL, true
	}
	return "", false
}

// FromMime matches well-known substrings of a MIME type.
func FromMime(mime string) (models.SourceType, bool) {
	m := strings.ToLower(mime)
	switch {
	case strings.Contains(m, "spreadsheet"), strings.Contains(m, "excel"):
		return models.SourceTypeExcel, true
	case strings.Contains(m, "csv"):
		return models.SourceTypeCSV, true
	case strings.Contains(m, "sql"):
		return models.SourceTypeSQL, true
	}
	return "", false
}

// FromContent sniffs the buffer. Workbook containers are recognized by their
// magic bytes; otherwise the first ContentSniffLimit characters are checked
// for SQL keywords and the first line for repeated delimiters.
func FromContent(data []byte) (models.SourceType, bool) {
	if bytes.HasPrefix(data, zipMagic) || bytes.HasPrefix(data, ole2Magic) {
		return models.SourceTypeExcel, true
	}

	head := []rune(string(data))
	if len(head) > ContentSniffLimit {
		head = head[:ContentSniffLimit]
	}
	text := strings.ToLower(string(head))

	if sqlKeywords.MatchString(text) {
		return models.SourceTypeSQL, true
	}

	firstLine := text
	if idx := strings.IndexAny(text, "\r\n"); idx != -1 {
		firstLine = text[:idx]
	}
	best := 0
	for _, d := range []string{",", "\t", ";", "|"} {
		best = max(best, strings.Count(firstLine, d))
	}
	if best >= 2 {
		return models.SourceTypeCSV, true
	}
	return "", false
}

// Hints are the optional signals Resolve weighs.
type Hints struct {
	Format   models.SourceType
	Filename string
	MimeType string
}

// Resolve applies the precedence explicit format > filename > MIME type >
// content sniff > csv.
func Resolve(h Hints, data []byte) models.SourceType {
	if h.Format != "" {
		return h.Format
	}
	if f, ok := FromFilename(h.Filename); ok {
		return f
	}
	if f, ok := FromMime(h.MimeType); ok {
		return f
	}
	if f, ok := FromContent(data); ok {
		return f
	}
	return models.SourceTypeCSV
}
