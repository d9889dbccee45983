package matcher

import (
	"fmt"
	"sort"

	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

// Table score weights.
const (
	avgScoreWeight         = 0.62
	coverageWeight         = 0.22
	requiredCoverageWeight = 0.14
	tableNameBonus         = 0.02
	tableNameThreshold     = 0.3
)

// columnStrength ranks source columns for the greedy pass: well-populated
// columns with confident types claim targets first.
func columnStrength(col *models.ColumnProfile) float64 {
	return col.NonEmptyRatio * (0.6 + 0.4*col.InferredTypeConfidence)
}

// SuggestTable maps ds onto table in a single greedy pass. Columns are
// visited strongest first; each takes its top candidate unless the score is
// below MinAcceptedMappingScore or another column already claimed the
// target. Nothing is revisited, so the result is not a globally optimal
// assignment.
func SuggestTable(ds *models.Dataset, table *models.SchemaTable, opts Options) models.TableSuggestion {
	opts = opts.withDefaults()
	columns := SuggestColumns(ds, table, opts)

	order := make([]int, len(ds.Columns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return columnStrength(&ds.Columns[order[a]]) > columnStrength(&ds.Columns[order[b]])
	})

	mapping := make(map[string]string)
	claimed := make(map[string]bool)
	var accepted []float64
	for _, idx := range order {
		candidates := columns[idx].Candidates
		if len(candidates) == 0 {
			continue
		}
		top := candidates[0]
		if top.Score < opts.MinAcceptedMappingScore || claimed[top.Key()] {
			continue
		}
		claimed[top.Key()] = true
		mapping[columns[idx].SourceColumn] = top.Key()
		accepted = append(accepted, top.Score)
	}

	required := table.RequiredFields()
	matchedRequired := 0
	for _, field := range required {
		if claimed[table.Key(field)] {
			matchedRequired++
		}
	}

	coverage := textutil.SafeRatio(float64(len(accepted)), float64(max(1, len(ds.Columns))))
	requiredCoverage := textutil.SafeRatio(float64(matchedRequired), float64(max(1, len(required))))
	avgScore := mean(accepted)
	nameSimilarity := tableNameSimilarity(ds.Name, table)

	score := avgScoreWeight*avgScore + coverageWeight*coverage + requiredCoverageWeight*requiredCoverage
	if nameSimilarity >= tableNameThreshold {
		score += tableNameBonus
	}

	reasons := make([]string, 0, 3)
	if missing := len(required) - matchedRequired; missing > 0 {
		reasons = append(reasons, fmt.Sprintf("Missing %d required field(s)", missing))
	} else if len(required) > 0 {
		reasons = append(reasons, "All required fields mappable")
	}
	if nameSimilarity >= tableNameThreshold {
		reasons = append(reasons, "Dataset name suggests this table")
	}
	reasons = append(reasons, fmt.Sprintf("Mapped %d of %d columns", len(accepted), len(ds.Columns)))

	return models.TableSuggestion{
		Table:             table.Table,
		Score:             textutil.Clamp(score, 0, 1),
		Coverage:          coverage,
		RequiredCoverage:  requiredCoverage,
		SuggestedMapping:  mapping,
		ColumnSuggestions: columns,
		Reasons:           reasons,
	}
}

// Match scores ds against every table in registry. Tables are sorted by
// score, best first, with registry order breaking ties. BestTable is set
// only when the top score is positive.
func Match(ds *models.Dataset, registry []models.SchemaTable, opts Options) models.SchemaMatchSuggestion {
	tables := make([]models.TableSuggestion, 0, len(registry))
	for i := range registry {
		tables = append(tables, SuggestTable(ds, &registry[i], opts))
	}
	sort.SliceStable(tables, func(a, b int) bool {
		return tables[a].Score > tables[b].Score
	})

	result := models.SchemaMatchSuggestion{
		DatasetName: ds.Name,
		Tables:      tables,
	}
	if len(tables) > 0 && tables[0].Score > 0 {
		best := tables[0]
		result.BestTable = &best
	}
	return result
}

// MatchAll runs Match for each dataset in order.
func MatchAll(datasets []*models.Dataset, registry []models.SchemaTable, opts Options) []models.SchemaMatchSuggestion {
	out := make([]models.SchemaMatchSuggestion, 0, len(datasets))
	for _, ds := range datasets {
		out = append(out, Match(ds, registry, opts))
	}
	return out
}

// tableNameSimilarity is the best token Jaccard between the dataset name and
// the table's name, label or aliases.
func tableNameSimilarity(datasetName string, table *models.SchemaTable) float64 {
	tokens := textutil.Tokenize(datasetName)
	best := 0.0
	for _, name := range append([]string{table.Table, table.Label}, table.Aliases...) {
		best = max(best, jaccard(tokens, textutil.Tokenize(name)))
	}
	return best
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return textutil.SafeRatio(sum, float64(len(values)))
}
