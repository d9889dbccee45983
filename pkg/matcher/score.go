package matcher

import (
	"fmt"
	"sort"

	"github.com/ekaya-inc/ekaya-ingest/pkg/inference"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

// Candidate weights.
const (
	nameWeight         = 0.62
	typeWeight         = 0.28
	hintWeight         = 0.10
	negativeHintWeight = 0.08
)

// ScoreColumn scores one source column against one target field:
//
//	0.62·name + 0.28·type + 0.10·clamp(hint, 0, 1)
//
// A negative hint additionally subtracts 0.08·|hint|.
func ScoreColumn(col *models.ColumnProfile, table *models.SchemaTable, field *models.SchemaField) models.MatchCandidate {
	bestName := NameSimilarity(col.Name, field.Field)
	matchedAlias := ""
	for _, alias := range field.Aliases {
		if s := NameSimilarity(col.Name, alias); s > bestName {
			bestName = s
			matchedAlias = alias
		}
	}

	typeScore := inference.TypeCompatibilityScore(col.InferredType, field.Type)
	hint, hintReasons := ValueHintScore(col, field)

	score := nameWeight*bestName + typeWeight*typeScore + hintWeight*textutil.Clamp(hint, 0, 1)
	if hint < 0 {
		score += negativeHintWeight * hint
	}

	reasons := make([]string, 0, 2+len(hintReasons))
	if matchedAlias != "" {
		reasons = append(reasons, fmt.Sprintf("name similarity %.2f via alias %q", bestName, matchedAlias))
	} else {
		reasons = append(reasons, fmt.Sprintf("name similarity %.2f", bestName))
	}
	reasons = append(reasons, fmt.Sprintf("type compatibility %.2f (%s vs %s)", typeScore, col.InferredType, field.Type))
	reasons = append(reasons, hintReasons...)

	return models.MatchCandidate{
		Table:   table.Table,
		Field:   field.Field,
		Score:   textutil.Clamp(score, 0, 1),
		Reasons: reasons,
	}
}

// SuggestColumns scores every column of ds against every field of table.
// Each column keeps the candidates scoring at least MinCandidateScore, best
// first, at most PerColumnCandidates of them. Equal scores keep field
// declaration order.
func SuggestColumns(ds *models.Dataset, table *models.SchemaTable, opts Options) []models.ColumnSuggestion {
	opts = opts.withDefaults()

	suggestions := make([]models.ColumnSuggestion, 0, len(ds.Columns))
	for i := range ds.Columns {
		col := &ds.Columns[i]

		candidates := make([]models.MatchCandidate, 0, len(table.Fields))
		for j := range table.Fields {
			c := ScoreColumn(col, table, &table.Fields[j])
			if c.Score >= opts.MinCandidateScore {
				candidates = append(candidates, c)
			}
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].Score > candidates[b].Score
		})
		if len(candidates) > opts.PerColumnCandidates {
			candidates = candidates[:opts.PerColumnCandidates]
		}

		suggestions = append(suggestions, models.ColumnSuggestion{
			SourceColumn: col.Name,
			Candidates:   candidates,
		})
	}
	return suggestions
}
