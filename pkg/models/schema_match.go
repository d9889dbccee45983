package models

// MatchCandidate is one scored target for a source column.
type MatchCandidate struct {
	Table   string   `json:"table"`
	Field   string   `json:"field"`
	Score   float64  `json:"score"` // 0.0 - 1.0
	Reasons []string `json:"reasons"`
}

// Key returns the "table.field" identifier of the candidate.
func (c *MatchCandidate) Key() string {
	return c.Table + "." + c.Field
}

// ColumnSuggestion lists candidates for one source column, best first.
type ColumnSuggestion struct {
	SourceColumn string           `json:"sourceColumn"`
	Candidates   []MatchCandidate `json:"candidates"`
}

// TableSuggestion is the greedy 1:1 mapping of a dataset onto one table.
// No two SuggestedMapping keys share a target.
type TableSuggestion struct {
	Table             string             `json:"table"`
	Score             float64            `json:"score"`
	Coverage          float64            `json:"coverage"`
	RequiredCoverage  float64            `json:"requiredCoverage"`
	SuggestedMapping  map[string]string  `json:"suggestedMapping"`
	ColumnSuggestions []ColumnSuggestion `json:"columnSuggestions"`
	Reasons           []string           `json:"reasons"`
}

// SchemaMatchSuggestion ranks every registry table for one dataset.
type SchemaMatchSuggestion struct {
	DatasetName string            `json:"datasetName"`
	BestTable   *TableSuggestion  `json:"bestTable,omitempty"`
	Tables      []TableSuggestion `json:"tables"`
}
