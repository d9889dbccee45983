package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ingest/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ingest/pkg/delimited"
	"github.com/ekaya-inc/ekaya-ingest/pkg/detect"
	"github.com/ekaya-inc/ekaya-ingest/pkg/logging"
	"github.com/ekaya-inc/ekaya-ingest/pkg/matcher"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/spreadsheet"
	"github.com/ekaya-inc/ekaya-ingest/pkg/sql"
)

// ImportOptions holds the server-wide parse limits. Per-request limits may
// lower these but never raise them.
type ImportOptions struct {
	CSVMaxRows       int
	ExcelMaxRows     int
	SQLMaxSampleRows int
	ScanInjection    bool
}

// DefaultImportOptions returns the standard parse limits.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		CSVMaxRows:       delimited.DefaultMaxRows,
		ExcelMaxRows:     spreadsheet.DefaultMaxRows,
		SQLMaxSampleRows: sql.DefaultMaxSampleRows,
		ScanInjection:    true,
	}
}

// PreviewOptions describes one uploaded buffer.
type PreviewOptions struct {
	// Format is "csv", "excel", "sql", or empty/"auto" to detect.
	Format    string
	Name      string
	Filename  string
	MimeType  string
	SheetName string
	HasHeader delimited.HeaderMode
	// Delimiter is a single character, "\t", or empty/"auto" to sniff.
	Delimiter     string
	MaxRows       int
	MaxSampleRows int
}

// PreviewResult is the parsed datasets and their schema suggestions, one
// suggestion per dataset in the same order.
type PreviewResult struct {
	Format            models.SourceType              `json:"format"`
	Datasets          []*models.Dataset              `json:"datasets"`
	SchemaSuggestions []models.SchemaMatchSuggestion `json:"schemaSuggestions"`
}

// PreviewService parses uploads and proposes mappings onto the schema registry.
type PreviewService interface {
	Preview(ctx context.Context, data []byte, opts PreviewOptions) (*PreviewResult, error)
}

type previewService struct {
	registry []models.SchemaTable
	reader   spreadsheet.WorkbookReader
	limits   ImportOptions
	match    matcher.Options
	logger   *zap.Logger
}

var _ PreviewService = (*previewService)(nil)

// NewPreviewService creates a preview service over a fixed registry.
func NewPreviewService(
	registry []models.SchemaTable,
	reader spreadsheet.WorkbookReader,
	limits ImportOptions,
	match matcher.Options,
	logger *zap.Logger,
) PreviewService {
	return &previewService{
		registry: registry,
		reader:   reader,
		limits:   limits,
		match:    match,
		logger:   logger.Named("preview"),
	}
}

// Preview detects the format, parses data into datasets and matches each
// dataset against the registry. Malformed text never fails; it yields
// dataset warnings. Errors are returned for empty input, an unknown explicit
// format, an undecodable workbook, or a cancelled context.
func (s *previewService) Preview(ctx context.Context, data []byte, opts PreviewOptions) (*PreviewResult, error) {
	if len(data) == 0 {
		return nil, apperrors.ErrEmptyInput
	}

	explicit, _, err := detect.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	format := detect.Resolve(detect.Hints{
		Format:   explicit,
		Filename: opts.Filename,
		MimeType: opts.MimeType,
	}, data)
	name := datasetName(opts)

	start := time.Now()
	var datasets []*models.Dataset
	switch format {
	case models.SourceTypeExcel:
		datasets, err = spreadsheet.Parse(s.reader, data, spreadsheet.Options{
			Name:      name,
			SheetName: opts.SheetName,
			Header:    opts.HasHeader,
			MaxRows:   capLimit(opts.MaxRows, s.limits.ExcelMaxRows),
		})
		if err != nil {
			s.logger.Warn("Workbook could not be decoded",
				zap.String("name", name),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", apperrors.ErrWorkbookRead, err)
		}
	case models.SourceTypeSQL:
		datasets = sql.Parse(string(data), sql.Options{
			Name:          name,
			MaxSampleRows: capLimit(opts.MaxSampleRows, s.limits.SQLMaxSampleRows),
		})
	default:
		datasets = []*models.Dataset{delimited.Parse(string(data), delimited.Options{
			Name:      name,
			Delimiter: opts.Delimiter,
			Header:    opts.HasHeader,
			MaxRows:   capLimit(opts.MaxRows, s.limits.CSVMaxRows),
		})}
	}

	if s.limits.ScanInjection {
		for _, ds := range datasets {
			for _, finding := range sql.ScanDatasetForInjection(ds) {
				s.logger.Info("Sample value resembles SQL injection",
					zap.String("dataset", ds.Name),
					zap.String("column", finding.Column),
					zap.String("fingerprint", finding.Fingerprint),
					zap.String("value", logging.SanitizeValue(fmt.Sprint(finding.Value))))
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	suggestions := matcher.MatchAll(datasets, s.registry, s.match)

	for i, ds := range datasets {
		fields := []zap.Field{
			zap.String("dataset", ds.Name),
			zap.Int("columns", len(ds.ColumnNames)),
			zap.Int("rows", ds.RowCount),
			zap.Int("warnings", len(ds.Warnings)),
		}
		if best := suggestions[i].BestTable; best != nil {
			fields = append(fields,
				zap.String("best_table", best.Table),
				zap.Float64("best_score", best.Score))
		}
		s.logger.Debug("Dataset parsed", fields...)
	}

	s.logger.Info("Preview complete",
		zap.String("format", string(format)),
		zap.String("name", name),
		zap.Int("bytes", len(data)),
		zap.Int("datasets", len(datasets)),
		zap.Duration("elapsed", time.Since(start)))

	return &PreviewResult{
		Format:            format,
		Datasets:          datasets,
		SchemaSuggestions: suggestions,
	}, nil
}

// datasetName prefers an explicit name, then the filename without its
// extension.
func datasetName(opts PreviewOptions) string {
	if name := strings.TrimSpace(opts.Name); name != "" {
		return name
	}
	if opts.Filename != "" {
		base := filepath.Base(opts.Filename)
		if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" && stem != "." {
			return stem
		}
	}
	return "import"
}

// capLimit applies a per-request limit without exceeding the server limit.
func capLimit(requested, limit int) int {
	if requested > 0 && requested < limit {
		return requested
	}
	return limit
}
