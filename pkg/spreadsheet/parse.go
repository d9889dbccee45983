package spreadsheet

import (
	"fmt"

	"github.com/ekaya-inc/ekaya-ingest/pkg/delimited"
	"github.com/ekaya-inc/ekaya-ingest/pkg/inference"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
)

// DefaultMaxRows caps the number of data rows parsed per sheet.
const DefaultMaxRows = 5000

// Options configures Parse. Zero values select defaults.
type Options struct {
	Name      string
	SheetName string // empty processes every sheet
	Header    delimited.HeaderMode
	MaxRows   int
}

// Parse decodes data with reader and returns one Dataset per processed sheet.
// Reader errors are returned unchanged; everything after decoding degrades to
// warnings.
func Parse(reader WorkbookReader, data []byte, opts Options) ([]*models.Dataset, error) {
	wb, err := reader.Read(data)
	if err != nil {
		return nil, err
	}

	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	name := opts.Name
	if name == "" {
		name = "workbook"
	}

	sheets := wb.SheetNames()
	if opts.SheetName != "" {
		sheets = []string{opts.SheetName}
	}

	datasets := make([]*models.Dataset, 0, len(sheets))
	for _, sheet := range sheets {
		cells, err := wb.Cells(sheet)
		if err != nil {
			ds := emptyDataset(name, sheet)
			ds.AddWarning(fmt.Sprintf("Sheet %q could not be read: %v", sheet, err))
			datasets = append(datasets, ds)
			continue
		}
		datasets = append(datasets, parseSheet(name, sheet, cells, opts.Header, maxRows))
	}
	return datasets, nil
}

func parseSheet(name, sheet string, cells [][]any, mode delimited.HeaderMode, maxRows int) *models.Dataset {
	rows := make([][]*string, 0, len(cells))
	for _, raw := range cells {
		row := make([]*string, len(raw))
		empty := true
		for i, v := range raw {
			row[i] = CellString(v)
			if row[i] != nil {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		ds := emptyDataset(name, sheet)
		ds.AddWarning(models.WarningNoRows)
		return ds
	}

	hasHeader := false
	switch mode {
	case delimited.HeaderPresent:
		hasHeader = true
	case delimited.HeaderAbsent:
		hasHeader = false
	default:
		hasHeader = delimited.LooksLikeHeader(plainCells(rows[0]))
	}

	var header []string
	data := rows
	if hasHeader {
		header = plainCells(rows[0])
		data = rows[1:]
	}
	truncated := false
	if len(data) > maxRows {
		data = data[:maxRows]
		truncated = true
	}

	width := len(header)
	for _, r := range data {
		width = max(width, len(r))
	}

	ds := inference.BuildDataset(models.SourceTypeExcel, datasetName(name, sheet), delimited.ColumnNames(header, width), data)
	ds.Meta = models.DatasetMeta{
		SheetName: sheet,
		HasHeader: &hasHeader,
		Truncated: truncated,
	}
	return ds
}

func emptyDataset(name, sheet string) *models.Dataset {
	ds := inference.BuildDataset(models.SourceTypeExcel, datasetName(name, sheet), []string{}, nil)
	ds.Meta = models.DatasetMeta{SheetName: sheet}
	return ds
}

func datasetName(name, sheet string) string {
	return name + ":" + sheet
}

func plainCells(row []*string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		if c != nil {
			out[i] = *c
		}
	}
	return out
}
