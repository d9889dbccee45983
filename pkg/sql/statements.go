package sql

import (
	"regexp"
	"strings"

	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

// CreateTableStatement is a CREATE TABLE with its declared column names.
type CreateTableStatement struct {
	Table   string
	Columns []string
}

// InsertStatement is one INSERT INTO ... VALUES statement.
type InsertStatement struct {
	Table string
	// Columns is nil when the statement had no column list.
	Columns []string
	Rows    [][]*string
	// Total counts every tuple, including those beyond the row limit.
	Total int
}

// SelectStatement is a SELECT list with the first table named after FROM.
type SelectStatement struct {
	Table   string
	Columns []ParsedColumn
}

// Statements groups the results of the independent scans. Each slice keeps
// source order.
type Statements struct {
	CreateTables []CreateTableStatement
	Inserts      []InsertStatement
	Selects      []SelectStatement
}

// Empty reports whether no statement of any kind was found.
func (s *Statements) Empty() bool {
	return len(s.CreateTables) == 0 && len(s.Inserts) == 0 && len(s.Selects) == 0
}

var (
	createTablePattern    = regexp.MustCompile(`(?is)\bcreate\s+(?:(?:global\s+|local\s+)?(?:temporary|temp)\s+|unlogged\s+)?table\s+(?:if\s+not\s+exists\s+)?([^\s(]+)\s*\(`)
	insertColumnsPattern  = regexp.MustCompile(`(?is)\binsert\s+into\s+([^\s(]+)\s*\(([^)]*)\)\s*values\s*`)
	insertNoColumnPattern = regexp.MustCompile(`(?is)\binsert\s+into\s+([^\s(;]+)[^;]*?\bvalues\s*`)
	explicitColumnList    = regexp.MustCompile(`(?is)\)\s*values`)
	selectPattern         = regexp.MustCompile(`(?is)\bselect\s+(.*?)\s+from\s+([^\s;,()]+)`)
	tableConstraintItem   = regexp.MustCompile(`(?i)^(?:constraint|primary\s+key|foreign\s+key|unique|check|exclude)\b`)
	inlineIndexItem       = regexp.MustCompile(`(?i)^(?:fulltext\s+|spatial\s+)?(?:key|index)\s*(?:([\w` + "`" + `"]+)\s*)?\(`)
)

// ScanStatements runs the CREATE TABLE, INSERT and SELECT scans over text,
// which must already be free of comments. Inserts keep at most rowLimit rows
// each.
func ScanStatements(text string, rowLimit int) Statements {
	return Statements{
		CreateTables: scanCreateTables(text),
		Inserts:      scanInserts(text, rowLimit),
		Selects:      scanSelects(text),
	}
}

func scanCreateTables(text string) []CreateTableStatement {
	var out []CreateTableStatement
	for _, m := range createTablePattern.FindAllStringSubmatchIndex(text, -1) {
		open := m[1] - 1
		body, _, ok := readGroup(text, open)
		if !ok {
			continue
		}

		var columns []string
		for _, item := range textutil.SplitTopLevel(body, ',') {
			if tableConstraintItem.MatchString(item) || isInlineIndex(item) {
				continue
			}
			if name := identName(leadingIdentifier(item)); name != "" {
				columns = append(columns, name)
			}
		}

		out = append(out, CreateTableStatement{
			Table:   identName(text[m[2]:m[3]]),
			Columns: textutil.Dedupe(columns),
		})
	}
	return out
}

// parameterizedTypes are the types that take a parenthesized argument, so
// "key VARCHAR(10)" stays a column while "KEY idx_email (email)" is an index.
var parameterizedTypes = map[string]struct{}{
	"bit": {}, "binary": {}, "char": {}, "character": {}, "dec": {}, "decimal": {},
	"double": {}, "enum": {}, "float": {}, "int": {}, "integer": {}, "bigint": {},
	"smallint": {}, "tinyint": {}, "mediumint": {}, "nchar": {}, "numeric": {},
	"nvarchar": {}, "real": {}, "set": {}, "time": {}, "timestamp": {}, "datetime": {},
	"varbinary": {}, "varchar": {}, "varchar2": {}, "number": {}, "interval": {},
}

// isInlineIndex reports whether a CREATE TABLE item is a MySQL KEY/INDEX
// definition rather than a column that happens to be named key or index.
func isInlineIndex(item string) bool {
	m := inlineIndexItem.FindStringSubmatch(item)
	if m == nil {
		return false
	}
	_, isType := parameterizedTypes[strings.ToLower(m[1])]
	return !isType
}

func scanInserts(text string, rowLimit int) []InsertStatement {
	type located struct {
		start int
		stmt  InsertStatement
	}
	var found []located

	for _, m := range insertColumnsPattern.FindAllStringSubmatchIndex(text, -1) {
		columns := make([]string, 0)
		for _, c := range textutil.SplitTopLevel(text[m[4]:m[5]], ',') {
			columns = append(columns, identName(c))
		}
		rows, total := ScanTuples(text, m[1], rowLimit)
		found = append(found, located{m[0], InsertStatement{
			Table:   identName(text[m[2]:m[3]]),
			Columns: textutil.UniqueNames(columns),
			Rows:    rows,
			Total:   total,
		}})
	}

	for _, m := range insertNoColumnPattern.FindAllStringSubmatchIndex(text, -1) {
		// Already handled by the column-list scan.
		if explicitColumnList.MatchString(text[m[0]:m[1]]) {
			continue
		}
		rows, total := ScanTuples(text, m[1], rowLimit)
		found = append(found, located{m[0], InsertStatement{
			Table: identName(text[m[2]:m[3]]),
			Rows:  rows,
			Total: total,
		}})
	}

	// Interleave both scans back into source order.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].start < found[j-1].start; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}

	out := make([]InsertStatement, len(found))
	for i, f := range found {
		out[i] = f.stmt
	}
	return out
}

func scanSelects(text string) []SelectStatement {
	var out []SelectStatement
	for _, m := range selectPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, SelectStatement{
			Table:   identName(m[2]),
			Columns: ParseSelectList(m[1]),
		})
	}
	return out
}

// leadingIdentifier returns the first token of a column definition. A quoted
// name may contain spaces.
func leadingIdentifier(item string) string {
	if item == "" {
		return ""
	}
	closing := map[byte]byte{'"': '"', '`': '`', '[': ']'}
	if end, ok := closing[item[0]]; ok {
		if idx := strings.IndexByte(item[1:], end); idx != -1 {
			return item[:idx+2]
		}
	}
	return strings.Fields(item)[0]
}
