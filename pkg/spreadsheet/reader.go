// Package spreadsheet turns workbooks into profiled Datasets. Decoding is
// delegated to a WorkbookReader so the codec can be swapped without touching
// inference or matching.
package spreadsheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// Workbook exposes the decoded sheets of a workbook. Cells are string,
// number or nil (empty).
type Workbook interface {
	SheetNames() []string
	Cells(sheetName string) ([][]any, error)
}

// WorkbookReader decodes a binary workbook.
type WorkbookReader interface {
	Read(data []byte) (Workbook, error)
}

// ExcelizeReader reads .xlsx workbooks with excelize.
type ExcelizeReader struct{}

// NewExcelizeReader creates the default WorkbookReader.
func NewExcelizeReader() *ExcelizeReader {
	return &ExcelizeReader{}
}

// Read implements WorkbookReader. The whole workbook is decoded up front so
// the returned Workbook holds no open file.
func (r *ExcelizeReader) Read(data []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	wb := &memoryWorkbook{cells: make(map[string][][]any)}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		grid := make([][]any, len(rows))
		for i, row := range rows {
			grid[i] = make([]any, len(row))
			for j, v := range row {
				if v != "" {
					grid[i][j] = v
				}
			}
		}
		wb.names = append(wb.names, name)
		wb.cells[name] = grid
	}
	return wb, nil
}

// memoryWorkbook is a decoded workbook held in memory.
type memoryWorkbook struct {
	names []string
	cells map[string][][]any
}

// NewMemoryWorkbook builds a Workbook from already-decoded sheets. Sheet order
// follows names.
func NewMemoryWorkbook(names []string, cells map[string][][]any) Workbook {
	return &memoryWorkbook{names: names, cells: cells}
}

func (w *memoryWorkbook) SheetNames() []string {
	return w.names
}

func (w *memoryWorkbook) Cells(sheetName string) ([][]any, error) {
	grid, ok := w.cells[sheetName]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}
	return grid, nil
}

// CellString stringifies and trims a cell. Nil and blank cells return nil.
func CellString(v any) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return nil
	}
	return &s
}
