package matcher

import (
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

const (
	minHint = -0.25
	maxHint = 0.5
)

// ValueHintScore adjusts a candidate using what the column's values look like
// rather than what it is called. The result is clamped to [-0.25, 0.5] and
// each adjustment contributes a reason.
func ValueHintScore(col *models.ColumnProfile, field *models.SchemaField) (float64, []string) {
	target := textutil.Tokenize(field.Field)
	source := textutil.Tokenize(col.Name)

	var score float64
	var reasons []string

	switch col.InferredType {
	case models.InferredTypeEmail:
		if textutil.ContainsAny(target, "email") {
			score += 0.28
			reasons = append(reasons, "values look like email addresses")
		}
	case models.InferredTypePhone:
		if textutil.ContainsAny(target, "phone", "mobile", "cell", "tel") {
			score += 0.28
			reasons = append(reasons, "values look like phone numbers")
		}
	case models.InferredTypeCurrency, models.InferredTypeNumber:
		if textutil.ContainsAny(target, "amount", "total", "hours", "count") {
			score += 0.20
			reasons = append(reasons, "numeric values suit a quantity field")
		}
	case models.InferredTypeDate, models.InferredTypeDatetime:
		if textutil.ContainsAny(target, "date", "time", "at") {
			score += 0.20
			reasons = append(reasons, "date values suit a date field")
		}
	}

	if isIdentifierField(target) {
		switch {
		case col.InferredType == models.InferredTypeUUID && col.UniqueRatio >= 0.9 && col.NonEmptyRatio >= 0.8:
			score += 0.25
			reasons = append(reasons, "unique UUID values suit an identifier")
		case col.UniqueRatio < 0.5 && col.NonEmptyRatio >= 0.5:
			score -= 0.15
			reasons = append(reasons, "repeated values are unlikely to be an identifier")
		}
	}

	for _, part := range []string{"first", "last"} {
		if textutil.ContainsAny(source, part) && textutil.ContainsAny(target, part) {
			score += 0.15
			reasons = append(reasons, "both names refer to a "+part+" name part")
		}
	}

	return textutil.Clamp(score, minHint, maxHint), reasons
}

func isIdentifierField(tokens []string) bool {
	return len(tokens) > 0 && tokens[len(tokens)-1] == "id"
}
