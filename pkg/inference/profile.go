package inference

import (
	"strings"
	"unicode/utf8"

	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

const (
	// MaxSamples bounds ColumnProfile.Samples and the length statistics.
	MaxSamples = 25
	// MaxSampleRows bounds Dataset.SampleRows.
	MaxSampleRows = 25
)

// ProfileColumn computes statistics and the inferred type for one column.
// A nil entry is a missing cell.
func ProfileColumn(name string, values []*string) models.ColumnProfile {
	profile := models.ColumnProfile{
		Name:           name,
		NormalizedName: textutil.NormalizeName(name),
		Samples:        make([]string, 0),
	}

	nonEmpty := make([]string, 0, len(values))
	unique := make(map[string]struct{})
	for _, v := range values {
		if v == nil || IsNullish(*v) {
			profile.NullishCount++
			continue
		}
		trimmed := strings.TrimSpace(*v)
		nonEmpty = append(nonEmpty, trimmed)
		unique[trimmed] = struct{}{}
		if len(profile.Samples) < MaxSamples {
			profile.Samples = append(profile.Samples, trimmed)
		}
	}

	profile.NonEmptyCount = len(nonEmpty)
	profile.UniqueCount = len(unique)
	profile.NonEmptyRatio = textutil.SafeRatio(float64(profile.NonEmptyCount), float64(len(values)))
	profile.UniqueRatio = textutil.SafeRatio(float64(profile.UniqueCount), float64(profile.NonEmptyCount))

	if len(profile.Samples) > 0 {
		total := 0
		profile.MinLength = utf8.RuneCountInString(profile.Samples[0])
		for _, s := range profile.Samples {
			n := utf8.RuneCountInString(s)
			total += n
			profile.MinLength = min(profile.MinLength, n)
			profile.MaxLength = max(profile.MaxLength, n)
		}
		profile.AvgLength = textutil.SafeRatio(float64(total), float64(len(profile.Samples)))
	}

	result := InferColumn(nonEmpty)
	profile.InferredType = result.Type
	profile.InferredTypeConfidence = result.Confidence
	profile.InferenceStats = result.Stats
	profile.DetectedPatterns = result.Patterns

	return profile
}

// BuildDataset profiles every column of rows and assembles a Dataset. Rows
// may be ragged; missing cells count as null. The caller owns Meta and any
// format-specific warnings.
func BuildDataset(sourceType models.SourceType, name string, columnNames []string, rows [][]*string) *models.Dataset {
	ds := &models.Dataset{
		SourceType:  sourceType,
		Name:        name,
		ColumnNames: columnNames,
		RowCount:    len(rows),
		SampleRows:  make([]map[string]any, 0, min(len(rows), MaxSampleRows)),
		Columns:     make([]models.ColumnProfile, 0, len(columnNames)),
		Warnings:    make([]string, 0),
	}

	for i, name := range columnNames {
		values := make([]*string, len(rows))
		for r, row := range rows {
			if i < len(row) {
				values[r] = row[i]
			}
		}
		ds.Columns = append(ds.Columns, ProfileColumn(name, values))
	}

	for _, row := range rows[:min(len(rows), MaxSampleRows)] {
		sample := make(map[string]any, len(columnNames))
		for i, name := range columnNames {
			if i < len(row) && row[i] != nil {
				sample[name] = *row[i]
			} else {
				sample[name] = nil
			}
		}
		ds.SampleRows = append(ds.SampleRows, sample)
	}

	if hasNormalizedCollision(columnNames) {
		ds.AddWarning(models.WarningNameCollisions)
	}

	return ds
}

func hasNormalizedCollision(columnNames []string) bool {
	seen := make(map[string]struct{}, len(columnNames))
	for _, name := range columnNames {
		n := textutil.NormalizeName(name)
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}

// StringCells wraps plain strings as non-null cells.
func StringCells(values []string) []*string {
	cells := make([]*string, len(values))
	for i := range values {
		cells[i] = &values[i]
	}
	return cells
}
