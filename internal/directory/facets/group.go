package facets

import "github.com/gartstein/bawsala/internal/directory/models"

// Grouped splits a ranked tag list into the leading options and an "other"
// bucket for presentation.
type Grouped struct {
	Top        []models.TagCount `json:"top"`
	Other      []models.TagCount `json:"other,omitempty"`
	OtherCount int               `json:"other_count"`
}

// Group keeps the first cutoff tags and collects the rest. OtherCount is the
// sum of the grouped tags' counts. A non-positive cutoff selects
// DefaultCutoff.
func Group(tags []models.TagCount, cutoff int) Grouped {
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	if len(tags) <= cutoff {
		return Grouped{Top: tags}
	}
	g := Grouped{
		Top:   tags[:cutoff:cutoff],
		Other: tags[cutoff:],
	}
	for _, tc := range g.Other {
		g.OtherCount += tc.Count
	}
	return g
}
