package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
)

func TestParse_CreateAndInsert(t *testing.T) {
	text := "CREATE TABLE users (id INT PRIMARY KEY, name TEXT); INSERT INTO users (id, name) VALUES (1, 'Ann'), (2, 'Bo');"

	datasets := Parse(text, Options{})

	require.Len(t, datasets, 2)

	create := datasets[0]
	assert.Equal(t, models.SourceTypeSQL, create.SourceType)
	assert.Equal(t, "users", create.Name)
	assert.Equal(t, []string{"id", "name"}, create.ColumnNames)
	assert.Len(t, create.Columns, 2)
	assert.Zero(t, create.RowCount)
	assert.Equal(t, models.StatementCreateTable, create.Meta.StatementType)
	assert.Equal(t, "users", create.Meta.Table)

	insert := datasets[1]
	assert.Equal(t, models.StatementInsert, insert.Meta.StatementType)
	assert.Equal(t, []string{"id", "name"}, insert.ColumnNames)
	assert.Equal(t, 2, insert.RowCount)
	assert.Equal(t, []map[string]any{
		{"id": "1", "name": "Ann"},
		{"id": "2", "name": "Bo"},
	}, insert.SampleRows)
	assert.False(t, insert.Meta.Truncated)
	assert.Empty(t, insert.Warnings)
	assert.Equal(t, models.InferredTypeNumber, insert.Columns[0].InferredType)
}

func TestParse_ColumnlessInsertUsesCreateTable(t *testing.T) {
	text := `-- dump
CREATE TABLE donors (id INT, email TEXT);
/* data */
INSERT INTO donors VALUES (1, 'a@example.org'), (2, NULL);`

	datasets := Parse(text, Options{})

	require.Len(t, datasets, 2)
	insert := datasets[1]
	assert.Equal(t, []string{"id", "email"}, insert.ColumnNames)
	assert.Equal(t, map[string]any{"id": "2", "email": nil}, insert.SampleRows[1])
	assert.Empty(t, insert.Warnings)
}

func TestParse_ColumnlessInsertWithoutCreateTable(t *testing.T) {
	datasets := Parse("INSERT INTO gifts VALUES (10, 'x'), (11, 'y', 'extra');", Options{})

	require.Len(t, datasets, 1)
	ds := datasets[0]
	assert.Equal(t, []string{"column_1", "column_2", "column_3"}, ds.ColumnNames)
	assert.Contains(t, ds.Warnings, models.WarningInsertNoColumns)
	assert.Contains(t, ds.Warnings, models.WarningTupleWidth)
}

func TestParse_MergesInsertsForSameTable(t *testing.T) {
	text := `INSERT INTO t (a, b) VALUES (1, 2);
INSERT INTO t (a, b) VALUES (3, 4), (5, 6);
INSERT INTO t (a) VALUES (7);`

	datasets := Parse(text, Options{MaxSampleRows: 2})

	require.Len(t, datasets, 2)
	assert.Equal(t, 2, datasets[0].RowCount)
	assert.True(t, datasets[0].Meta.Truncated)
	assert.Equal(t, []string{"a"}, datasets[1].ColumnNames)
	assert.False(t, datasets[1].Meta.Truncated)
}

func TestParse_TupleWidthMismatch(t *testing.T) {
	datasets := Parse("INSERT INTO t (a, b) VALUES (1), (2, 3, 4);", Options{})

	require.Len(t, datasets, 1)
	ds := datasets[0]
	assert.Equal(t, []string{"a", "b"}, ds.ColumnNames)
	assert.Equal(t, []string{models.WarningTupleWidth}, ds.Warnings)
	assert.Equal(t, map[string]any{"a": "1", "b": nil}, ds.SampleRows[0])
	assert.Equal(t, map[string]any{"a": "2", "b": "3"}, ds.SampleRows[1])
}

func TestParse_Select(t *testing.T) {
	datasets := Parse("SELECT id, email AS contact_email FROM donors;", Options{})

	require.Len(t, datasets, 1)
	ds := datasets[0]
	assert.Equal(t, "SELECT:donors", ds.Name)
	assert.Equal(t, []string{"id", "contact_email"}, ds.ColumnNames)
	assert.Equal(t, models.StatementSelect, ds.Meta.StatementType)
	assert.Zero(t, ds.RowCount)
}

func TestParse_OutputOrder(t *testing.T) {
	text := `SELECT a FROM x;
INSERT INTO y (b) VALUES (1);
CREATE TABLE z (c INT);`

	datasets := Parse(text, Options{})

	require.Len(t, datasets, 3)
	assert.Equal(t, models.StatementCreateTable, datasets[0].Meta.StatementType)
	assert.Equal(t, models.StatementInsert, datasets[1].Meta.StatementType)
	assert.Equal(t, models.StatementSelect, datasets[2].Meta.StatementType)
}

func TestParse_NoStatements(t *testing.T) {
	datasets := Parse("hello world", Options{Name: "notes"})

	require.Len(t, datasets, 1)
	ds := datasets[0]
	assert.Equal(t, "notes", ds.Name)
	assert.Empty(t, ds.ColumnNames)
	assert.Empty(t, ds.Columns)
	assert.Equal(t, []string{models.WarningNoSQLStatements}, ds.Warnings)
}

func TestParse_CommentedOutStatementsIgnored(t *testing.T) {
	datasets := Parse("-- INSERT INTO t (a) VALUES (1);\n/* CREATE TABLE u (b INT); */", Options{})

	require.Len(t, datasets, 1)
	assert.Equal(t, []string{models.WarningNoSQLStatements}, datasets[0].Warnings)
}
