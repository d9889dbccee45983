package matcher

import (
	"strings"

	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

// NameSimilarity scores two column or field names in [0,1]. Names that
// normalize to the same string score 1. Otherwise the score blends bigram
// Dice (0.5), token Jaccard (0.4) and a substring bonus (0.1 × 0.8).
func NameSimilarity(a, b string) float64 {
	na := textutil.NormalizeName(a)
	nb := textutil.NormalizeName(b)
	if na == nb {
		return 1.0
	}

	substring := 0.0
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		substring = 0.8
	}

	score := 0.5*dice(na, nb) + 0.4*jaccard(textutil.Tokenize(a), textutil.Tokenize(b)) + 0.1*substring
	return textutil.Clamp(score, 0, 1)
}

// dice is the Sørensen-Dice coefficient over character bigrams, counting
// repeated bigrams as many times as they occur.
func dice(a, b string) float64 {
	ba := bigrams(a)
	bb := bigrams(b)

	counts := make(map[string]int, len(ba))
	for _, g := range ba {
		counts[g]++
	}
	overlap := 0
	for _, g := range bb {
		if counts[g] > 0 {
			counts[g]--
			overlap++
		}
	}
	return textutil.SafeRatio(float64(2*overlap), float64(len(ba)+len(bb)))
}

func bigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}

// jaccard is the intersection-over-union of two token sets.
func jaccard(tokens1, tokens2 []string) float64 {
	set1 := make(map[string]struct{}, len(tokens1))
	for _, t := range tokens1 {
		set1[t] = struct{}{}
	}
	set2 := make(map[string]struct{}, len(tokens2))
	for _, t := range tokens2 {
		set2[t] = struct{}{}
	}

	intersect := 0
	union := len(set2)
	for t := range set1 {
		if _, ok := set2[t]; ok {
			intersect++
		} else {
			union++
		}
	}
	return textutil.SafeRatio(float64(intersect), float64(union))
}
