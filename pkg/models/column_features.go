package models

import "slices"

// ============================================================================
// Inferred Types
// ============================================================================

// InferredType is the semantic type assigned to a column from its sample values.
type InferredType string

const (
	InferredTypeEmail    InferredType = "email"
	InferredTypePhone    InferredType = "phone"
	InferredTypeUUID     InferredType = "uuid"
	InferredTypeURL      InferredType = "url"
	InferredTypeDate     InferredType = "date"
	InferredTypeDatetime InferredType = "datetime"
	InferredTypeCurrency InferredType = "currency"
	InferredTypeNumber   InferredType = "number"
	InferredTypeBoolean  InferredType = "boolean"
	InferredTypeString   InferredType = "string"
)

// ValidInferredTypes contains all inferred type values.
var ValidInferredTypes = []InferredType{
	InferredTypeEmail,
	InferredTypePhone,
	InferredTypeUUID,
	InferredTypeURL,
	InferredTypeDate,
	InferredTypeDatetime,
	InferredTypeCurrency,
	InferredTypeNumber,
	InferredTypeBoolean,
	InferredTypeString,
}

// IsValidInferredType checks if the given type is valid.
func IsValidInferredType(t InferredType) bool {
	return slices.Contains(ValidInferredTypes, t)
}

// ============================================================================
// Column Profile
// ============================================================================

// ColumnProfile holds per-column statistics plus the inferred semantic type.
// Length statistics cover only Samples; counts and ratios cover every data row.
type ColumnProfile struct {
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName"`

	InferredType           InferredType       `json:"inferredType"`
	InferredTypeConfidence float64            `json:"inferredTypeConfidence"` // 0.0 - 1.0
	InferenceStats         TypeInferenceStats `json:"inferenceStats"`
	DetectedPatterns       []DetectedPattern  `json:"detectedPatterns"`

	NonEmptyCount int     `json:"nonEmptyCount"`
	UniqueCount   int     `json:"uniqueCount"`
	NullishCount  int     `json:"nullishCount"`
	NonEmptyRatio float64 `json:"nonEmptyRatio"` // non_empty / rows
	UniqueRatio   float64 `json:"uniqueRatio"`   // unique / non_empty

	MinLength int     `json:"minLength"`
	MaxLength int     `json:"maxLength"`
	AvgLength float64 `json:"avgLength"`

	// Samples holds up to 25 non-empty values in row order.
	Samples []string `json:"samples"`
}

// HasPattern returns true if a detector with the given name fired on any sample.
func (p *ColumnProfile) HasPattern(patternName string) bool {
	return p.MatchesPatternWithThreshold(patternName, 0)
}

// MatchesPatternWithThreshold returns true if a pattern with the given name was detected
// in the sample values with a match rate at or above the specified threshold.
func (p *ColumnProfile) MatchesPatternWithThreshold(patternName string, threshold float64) bool {
	for _, dp := range p.DetectedPatterns {
		if dp.PatternName == patternName && dp.MatchRate >= threshold {
			return true
		}
	}
	return false
}

// TypeInferenceStats records the tallies behind an inference decision.
type TypeInferenceStats struct {
	// SampleCount is the number of non-empty values classified.
	SampleCount int `json:"sampleCount"`

	// Hits maps each inferred type to the number of values it claimed.
	Hits map[InferredType]int `json:"hits"`

	// Tied is set when another type had the same hit count as the winner.
	Tied bool `json:"tied"`
}

// ============================================================================
// Detected Pattern
// ============================================================================

// DetectedPattern represents a detector match result on sample values.
// Patterns are matched against column data (not names).
type DetectedPattern struct {
	// PatternName identifies the detector (e.g., "email", "uuid", "currency")
	PatternName string `json:"patternName"`

	// MatchRate is the share of non-empty samples claimed (0.0 - 1.0)
	MatchRate float64 `json:"matchRate"`

	// MatchedValues contains up to 5 examples of values that matched
	MatchedValues []string `json:"matchedValues,omitempty"`
}
