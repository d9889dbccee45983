// Package delimited parses CSV-like text (comma, tab, semicolon or pipe
// separated) into a profiled Dataset.
package delimited

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/ekaya-inc/ekaya-ingest/pkg/inference"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

const (
	// DefaultMaxRows caps the number of data rows parsed.
	DefaultMaxRows = 2000

	delimiterSniffBytes = 16 * 1024
	maxHeaderCellLength = 80
)

// Candidates in tie-break order; comma wins ties and empty samples.
var delimiterCandidates = []rune{',', '\t', ';', '|'}

// HeaderMode selects how the first record is treated.
type HeaderMode int

const (
	HeaderAuto HeaderMode = iota
	HeaderPresent
	HeaderAbsent
)

// ParseHeaderMode reads a hasHeader option: a boolean such as "true", "0"
// or "F", "auto", or empty for auto.
func ParseHeaderMode(s string) (HeaderMode, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "auto") {
		return HeaderAuto, nil
	}
	b, err := cast.ToBoolE(s)
	if err != nil {
		return HeaderAuto, fmt.Errorf("invalid header mode %q", s)
	}
	if b {
		return HeaderPresent, nil
	}
	return HeaderAbsent, nil
}

// Options configures Parse. Zero values select defaults.
type Options struct {
	Name      string
	Delimiter string // "" or "auto" sniffs the first record
	Header    HeaderMode
	MaxRows   int
}

var numericCell = regexp.MustCompile(`^[-+]?\d+(?:[.,]\d+)?$`)

// DetectDelimiter counts candidate delimiters outside quoted spans in the
// first record of text and returns the most frequent one. A tie for the
// highest count, or no candidate at all, gives a comma.
func DetectDelimiter(text string) rune {
	sample := text
	if len(sample) > delimiterSniffBytes {
		sample = sample[:delimiterSniffBytes]
	}

	counts := make(map[rune]int, len(delimiterCandidates))
	inQuotes := false
scan:
	for _, ch := range sample {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case ch == '\n' || ch == '\r':
			break scan
		default:
			counts[ch]++
		}
	}

	best, bestCount, tied := ',', 0, false
	for _, c := range delimiterCandidates {
		switch {
		case counts[c] > bestCount:
			best, bestCount, tied = c, counts[c], false
		case counts[c] == bestCount && bestCount > 0:
			tied = true
		}
	}
	if tied {
		return ','
	}
	return best
}

// ParseRecords splits text into records with a quote-aware state machine.
// A doubled quote inside a quoted field is a literal quote; blank lines are
// dropped. Parsing stops after limit records (limit <= 0 means no limit) and
// reports whether input remained.
func ParseRecords(text string, delimiter rune, limit int) (records [][]string, truncated bool) {
	text = normalizeNewlines(strings.TrimPrefix(text, "\ufeff"))
	runes := []rune(text)

	var (
		record   []string
		field    strings.Builder
		inQuotes bool
		fieldHas bool
	)

	endRecord := func() bool {
		record = append(record, field.String())
		field.Reset()
		fieldHas = false
		if !(len(record) == 1 && record[0] == "") {
			records = append(records, record)
		}
		record = nil
		return limit > 0 && len(records) >= limit
	}

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteRune(ch)
			}
			continue
		}

		switch ch {
		case '"':
			if !fieldHas && field.Len() == 0 {
				inQuotes = true
				fieldHas = true
			} else {
				field.WriteRune(ch)
			}
		case delimiter:
			record = append(record, field.String())
			field.Reset()
			fieldHas = false
		case '\n':
			if endRecord() {
				return records, strings.Trim(string(runes[i+1:]), "\n") != ""
			}
		default:
			field.WriteRune(ch)
		}
	}

	if field.Len() > 0 || fieldHas || len(record) > 0 {
		endRecord()
	}
	return records, false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// LooksLikeHeader decides whether first is a header row. A row is rejected
// when it has duplicate cells (case-insensitive), fewer than 60% non-empty
// cells, more than 20% numeric cells, or a cell longer than 80 characters.
// A following data row that is more numeric than the header only confirms an
// accepted header, so the rejection rules alone decide.
func LooksLikeHeader(first []string) bool {
	if len(first) == 0 {
		return false
	}

	seen := make(map[string]struct{}, len(first))
	nonEmpty := 0
	for _, cell := range first {
		c := strings.TrimSpace(cell)
		if len([]rune(c)) > maxHeaderCellLength {
			return false
		}
		if c == "" {
			continue
		}
		nonEmpty++
		key := strings.ToLower(c)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}

	if float64(nonEmpty)/float64(len(first)) < 0.6 {
		return false
	}
	return numericRatio(first) <= 0.2
}

func numericRatio(cells []string) float64 {
	if len(cells) == 0 {
		return 0
	}
	n := 0
	for _, cell := range cells {
		if numericCell.MatchString(strings.TrimSpace(cell)) {
			n++
		}
	}
	return float64(n) / float64(len(cells))
}

// Parse turns delimited text into a single Dataset.
func Parse(text string, opts Options) *models.Dataset {
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	delimiter := ','
	if opts.Delimiter == "" || strings.EqualFold(opts.Delimiter, "auto") {
		delimiter = DetectDelimiter(text)
	} else if d := []rune(opts.Delimiter); len(d) > 0 {
		if opts.Delimiter == `\t` {
			delimiter = '\t'
		} else {
			delimiter = d[0]
		}
	}

	records, truncated := ParseRecords(text, delimiter, maxRows+1)

	hasHeader := false
	switch opts.Header {
	case HeaderPresent:
		hasHeader = len(records) > 0
	case HeaderAbsent:
		hasHeader = false
	default:
		hasHeader = len(records) > 0 && LooksLikeHeader(records[0])
	}

	var header []string
	dataRecords := records
	if hasHeader {
		header = records[0]
		dataRecords = records[1:]
	}
	if len(dataRecords) > maxRows {
		dataRecords = dataRecords[:maxRows]
		truncated = true
	}

	width := len(header)
	for _, r := range dataRecords {
		width = max(width, len(r))
	}

	rows := make([][]*string, len(dataRecords))
	for i, r := range dataRecords {
		rows[i] = inference.StringCells(r)
	}

	name := opts.Name
	if name == "" {
		name = "csv"
	}

	ds := inference.BuildDataset(models.SourceTypeCSV, name, ColumnNames(header, width), rows)
	ds.Meta = models.DatasetMeta{
		Delimiter: string(delimiter),
		HasHeader: &hasHeader,
		Truncated: truncated,
	}
	if len(rows) == 0 {
		ds.AddWarning(models.WarningNoRows)
	}
	return ds
}

// ColumnNames derives width column names from header cells. Blank or
// missing cells become column_N; repeated names gain a _2, _3 suffix that
// skips any name already in use.
func ColumnNames(header []string, width int) []string {
	names := make([]string, width)
	for i := range names {
		if i < len(header) {
			names[i] = strings.TrimSpace(header[i])
		}
		if names[i] == "" {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	return textutil.UniqueNames(names)
}
