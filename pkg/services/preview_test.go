package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ingest/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ingest/pkg/delimited"
	"github.com/ekaya-inc/ekaya-ingest/pkg/matcher"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/registry"
	"github.com/ekaya-inc/ekaya-ingest/pkg/spreadsheet"
)

type fakeWorkbookReader struct {
	wb  spreadsheet.Workbook
	err error
}

func (r *fakeWorkbookReader) Read([]byte) (spreadsheet.Workbook, error) {
	return r.wb, r.err
}

func newTestPreviewService(reader spreadsheet.WorkbookReader, limits ImportOptions) PreviewService {
	if reader == nil {
		reader = &fakeWorkbookReader{err: errors.New("no workbook")}
	}
	return NewPreviewService(registry.Default(), reader, limits, matcher.DefaultOptions(), zap.NewNop())
}

const donorsCSV = "First Name,Last Name,Email\nAnn,Lee,ann@example.org\nBo,Chan,bo@example.org\nCy,Diaz,cy@example.org\n"

func TestPreview_EmptyInput(t *testing.T) {
	svc := newTestPreviewService(nil, DefaultImportOptions())

	_, err := svc.Preview(context.Background(), nil, PreviewOptions{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
}

func TestPreview_UnknownFormat(t *testing.T) {
	svc := newTestPreviewService(nil, DefaultImportOptions())

	_, err := svc.Preview(context.Background(), []byte("a,b\n1,2"), PreviewOptions{Format: "parquet"})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFormat)
}

func TestPreview_CSV(t *testing.T) {
	svc := newTestPreviewService(nil, DefaultImportOptions())

	result, err := svc.Preview(context.Background(), []byte(donorsCSV), PreviewOptions{Filename: "uploads/donors.csv"})
	require.NoError(t, err)

	assert.Equal(t, models.SourceTypeCSV, result.Format)
	require.Len(t, result.Datasets, 1)
	require.Len(t, result.SchemaSuggestions, 1)

	ds := result.Datasets[0]
	assert.Equal(t, "donors", ds.Name)
	assert.Equal(t, []string{"First Name", "Last Name", "Email"}, ds.ColumnNames)
	assert.Equal(t, 3, ds.RowCount)
	assert.Equal(t, models.InferredTypeEmail, ds.Columns[2].InferredType)

	suggestion := result.SchemaSuggestions[0]
	assert.Equal(t, "donors", suggestion.DatasetName)
	require.NotNil(t, suggestion.BestTable)
	assert.Equal(t, "contacts", suggestion.BestTable.Table)
	assert.Equal(t, "contacts.email", suggestion.BestTable.SuggestedMapping["Email"])
	assert.Equal(t, "contacts.first_name", suggestion.BestTable.SuggestedMapping["First Name"])
}

func TestPreview_RowLimits(t *testing.T) {
	tests := []struct {
		name          string
		serverLimit   int
		requested     int
		wantRows      int
		wantTruncated bool
	}{
		{name: "server limit applies", serverLimit: 2, requested: 0, wantRows: 2, wantTruncated: true},
		{name: "request cannot raise limit", serverLimit: 2, requested: 10, wantRows: 2, wantTruncated: true},
		{name: "request lowers limit", serverLimit: 100, requested: 1, wantRows: 1, wantTruncated: true},
		{name: "under both limits", serverLimit: 100, requested: 50, wantRows: 3, wantTruncated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := DefaultImportOptions()
			limits.CSVMaxRows = tt.serverLimit
			svc := newTestPreviewService(nil, limits)

			result, err := svc.Preview(context.Background(), []byte(donorsCSV), PreviewOptions{
				Format:  "csv",
				MaxRows: tt.requested,
			})
			require.NoError(t, err)
			require.Len(t, result.Datasets, 1)
			assert.Equal(t, tt.wantRows, result.Datasets[0].RowCount)
			assert.Equal(t, tt.wantTruncated, result.Datasets[0].Meta.Truncated)
		})
	}
}

func TestPreview_HeaderOverride(t *testing.T) {
	svc := newTestPreviewService(nil, DefaultImportOptions())

	result, err := svc.Preview(context.Background(), []byte(donorsCSV), PreviewOptions{
		Format:    "csv",
		Name:      "raw",
		HasHeader: delimited.HeaderAbsent,
	})
	require.NoError(t, err)

	ds := result.Datasets[0]
	assert.Equal(t, "raw", ds.Name)
	assert.Equal(t, []string{"column_1", "column_2", "column_3"}, ds.ColumnNames)
	assert.Equal(t, 4, ds.RowCount)
}

func TestPreview_Excel(t *testing.T) {
	wb := spreadsheet.NewMemoryWorkbook([]string{"Gifts"}, map[string][][]any{
		"Gifts": {
			{"donor_id", "amount", "gift_date"},
			{"6f1c1a52-9d7e-4bb4-a1c9-6a8a3b3e0c11", 25.5, "2024-01-15"},
			{"0b8e5f2e-3c1d-4f7a-9e6b-2d4c8a1f5e22", 100, "2024-02-01"},
		},
	})
	svc := newTestPreviewService(&fakeWorkbookReader{wb: wb}, DefaultImportOptions())

	result, err := svc.Preview(context.Background(), []byte("PK\x03\x04"), PreviewOptions{Filename: "gifts.xlsx"})
	require.NoError(t, err)

	assert.Equal(t, models.SourceTypeExcel, result.Format)
	require.Len(t, result.Datasets, 1)
	assert.Equal(t, "gifts:Gifts", result.Datasets[0].Name)
	assert.Equal(t, "Gifts", result.Datasets[0].Meta.SheetName)

	require.Len(t, result.SchemaSuggestions, 1)
	require.NotNil(t, result.SchemaSuggestions[0].BestTable)
	assert.Equal(t, "donations", result.SchemaSuggestions[0].BestTable.Table)
}

func TestPreview_ExcelReadError(t *testing.T) {
	svc := newTestPreviewService(&fakeWorkbookReader{err: errors.New("zip: not a valid zip file")}, DefaultImportOptions())

	_, err := svc.Preview(context.Background(), []byte("not a workbook"), PreviewOptions{Format: "xlsx"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrWorkbookRead)
	assert.Contains(t, err.Error(), "not a valid zip file")
}

func TestPreview_SQL(t *testing.T) {
	dump := `
CREATE TABLE supporters (id INT PRIMARY KEY, email TEXT, notes TEXT);
INSERT INTO supporters VALUES (1, 'ann@example.org', 'fine'), (2, 'bo@example.org', ''' OR ''1''=''1');
`
	svc := newTestPreviewService(nil, DefaultImportOptions())

	result, err := svc.Preview(context.Background(), []byte(dump), PreviewOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.SourceTypeSQL, result.Format)
	require.Len(t, result.Datasets, 2)
	assert.Len(t, result.SchemaSuggestions, 2)

	insert := result.Datasets[1]
	assert.Equal(t, models.StatementInsert, insert.Meta.StatementType)
	assert.Equal(t, []string{"id", "email", "notes"}, insert.ColumnNames)
	assert.Equal(t, 2, insert.RowCount)
	assert.Contains(t, insert.Warnings, `Column "notes" contains values that resemble SQL injection payloads`)
}

func TestPreview_SQLInjectionScanDisabled(t *testing.T) {
	limits := DefaultImportOptions()
	limits.ScanInjection = false
	svc := newTestPreviewService(nil, limits)

	result, err := svc.Preview(context.Background(),
		[]byte("INSERT INTO t (a) VALUES ('''; DROP TABLE users--');"),
		PreviewOptions{Format: "sql"})
	require.NoError(t, err)
	require.Len(t, result.Datasets, 1)
	assert.Empty(t, result.Datasets[0].Warnings)
}

func TestPreview_CancelledContext(t *testing.T) {
	svc := newTestPreviewService(nil, DefaultImportOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Preview(ctx, []byte(donorsCSV), PreviewOptions{Format: "csv"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDatasetName(t *testing.T) {
	tests := []struct {
		opts PreviewOptions
		want string
	}{
		{PreviewOptions{Name: "Spring Gala", Filename: "gala.csv"}, "Spring Gala"},
		{PreviewOptions{Filename: "/tmp/exports/donors.2024.csv"}, "donors.2024"},
		{PreviewOptions{Filename: "noext"}, "noext"},
		{PreviewOptions{Name: "   "}, "import"},
		{PreviewOptions{}, "import"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, datasetName(tt.opts))
	}
}

func TestCapLimit(t *testing.T) {
	assert.Equal(t, 2000, capLimit(0, 2000))
	assert.Equal(t, 2000, capLimit(-5, 2000))
	assert.Equal(t, 10, capLimit(10, 2000))
	assert.Equal(t, 2000, capLimit(5000, 2000))
}
