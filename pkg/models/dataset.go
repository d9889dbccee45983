package models

// SourceType identifies the format a Dataset was parsed from.
type SourceType string

const (
	SourceTypeCSV   SourceType = "csv"
	SourceTypeExcel SourceType = "excel"
	SourceTypeSQL   SourceType = "sql"
)

// SQL statement kinds recorded in DatasetMeta.StatementType.
const (
	StatementCreateTable = "create_table"
	StatementInsert      = "insert"
	StatementSelect      = "select"
)

// Dataset is the normalized tabular result of parsing one file, sheet,
// table or statement. len(Columns) always equals len(ColumnNames).
type Dataset struct {
	SourceType  SourceType       `json:"sourceType"`
	Name        string           `json:"name"`
	ColumnNames []string         `json:"columnNames"`
	RowCount    int              `json:"rowCount"`
	SampleRows  []map[string]any `json:"sampleRows"`
	Columns     []ColumnProfile  `json:"columns"`
	Warnings    []string         `json:"warnings"`
	Meta        DatasetMeta      `json:"meta"`
}

// DatasetMeta carries format-specific parse details.
type DatasetMeta struct {
	// CSV
	Delimiter string `json:"delimiter,omitempty"`
	HasHeader *bool  `json:"hasHeader,omitempty"`

	// Excel
	SheetName string `json:"sheetName,omitempty"`

	// SQL
	StatementType string `json:"statementType,omitempty"`
	Table         string `json:"table,omitempty"`

	Truncated bool `json:"truncated,omitempty"`
}

// AddWarning appends a warning unless it is already present.
func (d *Dataset) AddWarning(msg string) {
	for _, w := range d.Warnings {
		if w == msg {
			return
		}
	}
	d.Warnings = append(d.Warnings, msg)
}

// Warning messages shared across parsers.
const (
	WarningNoRows          = "No rows detected"
	WarningNameCollisions  = "Some column names normalize to the same value; collisions may occur"
	WarningNoSQLStatements = "no CREATE_TABLE/INSERT/SELECT patterns detected"
	WarningInsertNoColumns = "INSERT statement has no column list and no prior CREATE TABLE columns were found"
	WarningTupleWidth      = "Some INSERT rows have a different number of values than columns"
)
