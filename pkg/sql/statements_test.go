package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanStatements_CreateTable(t *testing.T) {
	text := `
CREATE TABLE IF NOT EXISTS public.donors (
	"id" SERIAL,
	"first name" VARCHAR(100) NOT NULL,
	amount NUMERIC(10, 2) DEFAULT 0,
	email TEXT,
	email TEXT,
	CONSTRAINT donors_pk PRIMARY KEY (id),
	PRIMARY KEY (id),
	FOREIGN KEY (org_id) REFERENCES orgs(id),
	UNIQUE (email),
	CHECK (amount >= 0),
	KEY idx_email (email)
);
create temporary table ` + "`tmp`" + ` (x int);`

	stmts := ScanStatements(text, 50)

	require.Len(t, stmts.CreateTables, 2)
	assert.Equal(t, "donors", stmts.CreateTables[0].Table)
	assert.Equal(t, []string{"id", "first name", "amount", "email"}, stmts.CreateTables[0].Columns)
	assert.Equal(t, "tmp", stmts.CreateTables[1].Table)
	assert.Equal(t, []string{"x"}, stmts.CreateTables[1].Columns)
	assert.Empty(t, stmts.Inserts)
	assert.Empty(t, stmts.Selects)
}

func TestScanStatements_InsertForms(t *testing.T) {
	text := `INSERT INTO users (id, name) VALUES (1, 'Ann');
INSERT INTO users VALUES (2, 'Bo'), (3, 'Cy');
insert into "audit"."log"(msg) values ('x')`

	stmts := ScanStatements(text, 50)

	require.Len(t, stmts.Inserts, 3)

	assert.Equal(t, "users", stmts.Inserts[0].Table)
	assert.Equal(t, []string{"id", "name"}, stmts.Inserts[0].Columns)
	assert.Equal(t, 1, stmts.Inserts[0].Total)

	assert.Equal(t, "users", stmts.Inserts[1].Table)
	assert.Nil(t, stmts.Inserts[1].Columns)
	assert.Equal(t, 2, stmts.Inserts[1].Total)
	assert.Equal(t, []*string{strPtr("3"), strPtr("Cy")}, stmts.Inserts[1].Rows[1])

	assert.Equal(t, "log", stmts.Inserts[2].Table)
	assert.Equal(t, []string{"msg"}, stmts.Inserts[2].Columns)
}

func TestScanStatements_KeyAndIndexColumns(t *testing.T) {
	text := `CREATE TABLE settings (
	id INT,
	key TEXT,
	value TEXT,
	index INT,
	` + "`key`" + ` VARCHAR(10),
	INDEX (value),
	FULLTEXT KEY ft_value (value),
	KEY ` + "`idx_id`" + ` (id)
);`

	stmts := ScanStatements(text, 50)

	require.Len(t, stmts.CreateTables, 1)
	assert.Equal(t, []string{"id", "key", "value", "index"}, stmts.CreateTables[0].Columns)
}

func TestScanStatements_InsertDuplicateColumns(t *testing.T) {
	stmts := ScanStatements("INSERT INTO t (a, a, b) VALUES (1, 2, 3);", 50)

	require.Len(t, stmts.Inserts, 1)
	assert.Equal(t, []string{"a", "a_2", "b"}, stmts.Inserts[0].Columns)
	assert.Len(t, stmts.Inserts[0].Rows[0], 3)
}

func TestScanStatements_ColumnListNotDoubleCounted(t *testing.T) {
	stmts := ScanStatements("INSERT INTO t (a) VALUES (1);", 50)

	require.Len(t, stmts.Inserts, 1)
	assert.Equal(t, []string{"a"}, stmts.Inserts[0].Columns)
}

func TestScanStatements_Select(t *testing.T) {
	stmts := ScanStatements("SELECT d.id, d.email AS contact, COUNT(*) FROM donors d WHERE 1=1;\nselect * from gifts", 50)

	require.Len(t, stmts.Selects, 2)
	assert.Equal(t, "donors", stmts.Selects[0].Table)
	assert.Equal(t, []ParsedColumn{
		{Name: "id", Expr: "d.id"},
		{Name: "contact", Expr: "d.email AS contact"},
		{Name: "COUNT(*)", Expr: "COUNT(*)"},
	}, stmts.Selects[0].Columns)
	assert.Equal(t, "gifts", stmts.Selects[1].Table)
	assert.Empty(t, stmts.Selects[1].Columns)
}

func TestScanStatements_Empty(t *testing.T) {
	stmts := ScanStatements("just some text", 50)
	assert.True(t, stmts.Empty())
}
