package sql

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-ingest/pkg/inference"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
)

// DefaultMaxSampleRows caps the INSERT rows kept per dataset.
const DefaultMaxSampleRows = 50

// Options controls Parse.
type Options struct {
	// Name labels the placeholder dataset emitted when nothing matched.
	Name          string
	MaxSampleRows int
}

// Parse scans a SQL dump and returns one dataset per CREATE TABLE, per
// INSERT target (grouped by table and column list) and per SELECT, in that
// order. Text with no recognizable statement yields a single empty dataset
// carrying a warning.
func Parse(text string, opts Options) []*models.Dataset {
	limit := opts.MaxSampleRows
	if limit <= 0 {
		limit = DefaultMaxSampleRows
	}

	stmts := ScanStatements(StripComments(text), limit)
	if stmts.Empty() {
		name := opts.Name
		if name == "" {
			name = "sql"
		}
		ds := inference.BuildDataset(models.SourceTypeSQL, name, []string{}, nil)
		ds.AddWarning(models.WarningNoSQLStatements)
		return []*models.Dataset{ds}
	}

	var datasets []*models.Dataset

	declared := make(map[string][]string, len(stmts.CreateTables))
	for _, ct := range stmts.CreateTables {
		ds := inference.BuildDataset(models.SourceTypeSQL, ct.Table, ct.Columns, nil)
		ds.Meta.StatementType = models.StatementCreateTable
		ds.Meta.Table = ct.Table
		datasets = append(datasets, ds)

		key := strings.ToLower(ct.Table)
		if _, ok := declared[key]; !ok {
			declared[key] = ct.Columns
		}
	}

	for _, group := range groupInserts(stmts.Inserts, declared, limit) {
		datasets = append(datasets, group.dataset())
	}

	for _, sel := range stmts.Selects {
		columns := make([]string, len(sel.Columns))
		for i, c := range sel.Columns {
			columns[i] = c.Name
		}
		ds := inference.BuildDataset(models.SourceTypeSQL, "SELECT:"+sel.Table, columns, nil)
		ds.Meta.StatementType = models.StatementSelect
		ds.Meta.Table = sel.Table
		datasets = append(datasets, ds)
	}

	return datasets
}

type insertGroup struct {
	table      string
	columns    []string
	rows       [][]*string
	total      int
	positional bool
}

// groupInserts resolves each INSERT's column list and merges statements that
// target the same table with the same columns. Groups keep first-seen order.
func groupInserts(inserts []InsertStatement, declared map[string][]string, limit int) []*insertGroup {
	var groups []*insertGroup
	index := make(map[string]*insertGroup)

	for _, ins := range inserts {
		columns := ins.Columns
		positional := false
		if columns == nil {
			if prior, ok := declared[strings.ToLower(ins.Table)]; ok {
				columns = prior
			} else {
				columns = positionalColumns(ins.Rows)
				positional = true
			}
		}

		key := strings.ToLower(ins.Table) + "\x00" + strings.Join(columns, "\x00")
		g, ok := index[key]
		if !ok {
			g = &insertGroup{table: ins.Table, columns: columns, positional: positional}
			index[key] = g
			groups = append(groups, g)
		}

		g.total += ins.Total
		for _, row := range ins.Rows {
			if len(g.rows) >= limit {
				break
			}
			g.rows = append(g.rows, row)
		}
	}
	return groups
}

func (g *insertGroup) dataset() *models.Dataset {
	ds := inference.BuildDataset(models.SourceTypeSQL, g.table, g.columns, g.rows)
	ds.Meta.StatementType = models.StatementInsert
	ds.Meta.Table = g.table
	ds.Meta.Truncated = g.total > len(g.rows)

	if g.positional {
		ds.AddWarning(models.WarningInsertNoColumns)
	}
	for _, row := range g.rows {
		if len(row) != len(g.columns) {
			ds.AddWarning(models.WarningTupleWidth)
			break
		}
	}
	return ds
}

func positionalColumns(rows [][]*string) []string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	columns := make([]string, width)
	for i := range columns {
		columns[i] = fmt.Sprintf("column_%d", i+1)
	}
	return columns
}
