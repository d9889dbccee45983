// Package matcher scores parsed columns against a schema registry and builds
// a greedy one-to-one mapping of each dataset onto each target table.
package matcher

// Options tunes candidate selection and mapping acceptance.
type Options struct {
	// PerColumnCandidates caps the candidates kept per source column.
	PerColumnCandidates int `json:"perColumnCandidates"`
	// MinCandidateScore drops weaker candidates entirely.
	MinCandidateScore float64 `json:"minCandidateScore"`
	// MinAcceptedMappingScore is the bar a top candidate must clear to be
	// used in the table mapping.
	MinAcceptedMappingScore float64 `json:"minAcceptedMappingScore"`
}

// DefaultOptions returns the standard matching thresholds.
func DefaultOptions() Options {
	return Options{
		PerColumnCandidates:     6,
		MinCandidateScore:       0.22,
		MinAcceptedMappingScore: 0.55,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PerColumnCandidates <= 0 {
		o.PerColumnCandidates = d.PerColumnCandidates
	}
	if o.MinCandidateScore <= 0 {
		o.MinCandidateScore = d.MinCandidateScore
	}
	if o.MinAcceptedMappingScore <= 0 {
		o.MinAcceptedMappingScore = d.MinAcceptedMappingScore
	}
	return o
}
