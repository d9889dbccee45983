// Package inference classifies column values into semantic types and builds
// the per-column profiles shared by every parser.
package inference

import (
	"strings"

	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

const maxMatchedExamples = 5

// Result is the outcome of classifying one column.
type Result struct {
	Type       models.InferredType
	Confidence float64
	Stats      models.TypeInferenceStats
	Patterns   []models.DetectedPattern
}

var nullishValues = map[string]bool{
	"":          true,
	"null":      true,
	"nil":       true,
	"n/a":       true,
	"#n/a":      true,
	"undefined": true,
}

// IsNullish reports whether a raw cell value should be treated as missing.
func IsNullish(value string) bool {
	return nullishValues[strings.ToLower(strings.TrimSpace(value))]
}

// InferColumn classifies the non-null values of a column. Each value is
// claimed by the first detector that matches it; the type with the most hits
// wins, earlier detectors winning ties. Columns with no usable values infer
// as string with zero confidence.
func InferColumn(values []string) Result {
	hits := make(map[models.InferredType]int)
	examples := make(map[models.InferredType][]string)
	sampleCount := 0

	for _, raw := range values {
		if IsNullish(raw) {
			continue
		}
		v := strings.TrimSpace(raw)
		sampleCount++

		claimed := models.InferredTypeString
		for _, d := range detectors {
			if d.Match(v) {
				claimed = d.Type
				break
			}
		}
		hits[claimed]++
		if len(examples[claimed]) < maxMatchedExamples {
			examples[claimed] = append(examples[claimed], v)
		}
	}

	result := Result{
		Type: models.InferredTypeString,
		Stats: models.TypeInferenceStats{
			SampleCount: sampleCount,
			Hits:        hits,
		},
	}
	if sampleCount == 0 {
		return result
	}

	best, bestHits, tied := models.InferredTypeString, 0, false
	for _, t := range detectionOrder() {
		switch n := hits[t]; {
		case n > bestHits:
			best, bestHits, tied = t, n, false
		case n > 0 && n == bestHits:
			tied = true
		}
	}

	result.Type = best
	result.Confidence = textutil.SafeRatio(float64(bestHits), float64(sampleCount))
	result.Stats.Tied = tied

	for _, d := range detectors {
		n := hits[d.Type]
		if n == 0 {
			continue
		}
		result.Patterns = append(result.Patterns, models.DetectedPattern{
			PatternName:   string(d.Type),
			MatchRate:     textutil.SafeRatio(float64(n), float64(sampleCount)),
			MatchedValues: examples[d.Type],
		})
	}

	return result
}

// detectionOrder lists every type in tie-break priority, fallback last.
func detectionOrder() []models.InferredType {
	order := make([]models.InferredType, 0, len(detectors)+1)
	for _, d := range detectors {
		order = append(order, d.Type)
	}
	return append(order, models.InferredTypeString)
}
