package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

// Querier is the subset of *pgxpool.Pool and *pgx.Conn used for
// introspection.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const introspectQuery = `
	SELECT
		c.table_name,
		c.column_name,
		c.data_type,
		c.is_nullable = 'NO' AND c.column_default IS NULL AS required
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
	WHERE t.table_type = 'BASE TABLE'
	  AND c.table_schema = ANY($1)
	ORDER BY c.table_schema, c.table_name, c.ordinal_position
`

// Introspect builds a registry from the base tables of the given Postgres
// schemas. A column is required when it is NOT NULL without a default.
// Field types come from MapColumnType.
func Introspect(ctx context.Context, q Querier, schemas []string) ([]models.SchemaTable, error) {
	if len(schemas) == 0 {
		schemas = []string{"public"}
	}

	rows, err := q.Query(ctx, introspectQuery, schemas)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var tables []models.SchemaTable
	for rows.Next() {
		var tableName, columnName, dataType string
		var required bool
		if err := rows.Scan(&tableName, &columnName, &dataType, &required); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}

		if len(tables) == 0 || tables[len(tables)-1].Table != tableName {
			tables = append(tables, models.SchemaTable{
				Table: tableName,
				Label: labelFor(tableName),
			})
		}
		current := &tables[len(tables)-1]
		current.Fields = append(current.Fields, models.SchemaField{
			Field:    columnName,
			Type:     MapColumnType(columnName, dataType),
			Required: required,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	if err := Validate(tables); err != nil {
		return nil, err
	}
	for i := range tables {
		tables[i].Aliases = withInflections(tables[i].Table, tables[i].Aliases)
	}
	return tables, nil
}

// columnTypes maps Postgres data types onto registry field types.
var columnTypes = map[string]string{
	"uuid":                        "uuid",
	"smallint":                    "integer",
	"integer":                     "integer",
	"bigint":                      "integer",
	"numeric":                     "numeric",
	"decimal":                     "numeric",
	"real":                        "numeric",
	"double precision":            "numeric",
	"money":                       "currency",
	"boolean":                     "boolean",
	"date":                        "date",
	"timestamp without time zone": "timestamp",
	"timestamp with time zone":    "timestamptz",
	"time without time zone":      "time",
	"time with time zone":         "time",
	"text":                        "text",
	"character varying":           "text",
	"character":                   "text",
	"citext":                      "text",
}

// MapColumnType converts a Postgres data type to a registry field type.
// Text columns whose names mention email, phone or url become those
// semantic types, and numeric columns named like an amount become currency.
// Unknown types (json, bytea, arrays) map to text.
func MapColumnType(columnName, dataType string) string {
	mapped, ok := columnTypes[strings.ToLower(strings.TrimSpace(dataType))]
	if !ok {
		mapped = "text"
	}

	tokens := textutil.Tokenize(columnName)
	switch mapped {
	case "text":
		switch {
		case textutil.ContainsAny(tokens, "email"):
			return "email"
		case textutil.ContainsAny(tokens, "phone", "mobile", "tel", "telephone"):
			return "phone"
		case textutil.ContainsAny(tokens, "url", "website"):
			return "url"
		}
	case "numeric":
		if textutil.ContainsAny(tokens, "amount", "price", "total", "fee") {
			return "currency"
		}
	}
	return mapped
}

func labelFor(table string) string {
	words := textutil.Tokenize(table)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
