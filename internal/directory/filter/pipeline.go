// Package filter narrows the catalog through four ordered stages: search
// results, conjunctive tags, industry, subindustry. Stages run strictly in
// sequence so that facet counts for a later stage only see companies that
// survived the earlier ones. Every stage is a pure function that returns a
// new slice and leaves its input untouched.
package filter

import (
	"github.com/gartstein/bawsala/internal/directory/models"
)

// Stages holds the output of each pipeline stage.
type Stages struct {
	// Searched is the catalog narrowed by the text query.
	Searched []models.Company
	// Tagged is Searched narrowed by the active tags.
	Tagged []models.Company
	// InIndustry is Tagged narrowed by the selected industry.
	InIndustry []models.Company
	// Visible is InIndustry narrowed by the selected subindustry.
	Visible []models.Company
}

// Run applies all four stages.
func Run(companies []models.Company, hits models.SearchResultSet, sel Selection) Stages {
	var st Stages
	st.Searched = BySearch(companies, hits)
	st.Tagged = ByTags(st.Searched, sel.Tags)
	st.InIndustry = ByIndustry(st.Tagged, sel.Industry)
	st.Visible = BySubindustry(st.InIndustry, sel.Subindustry)
	return st
}

// BySearch keeps companies whose id is in hits. An inactive result passes
// everything through; a failed result keeps nothing.
func BySearch(companies []models.Company, hits models.SearchResultSet) []models.Company {
	if !hits.Active() {
		return pass(companies)
	}
	return keep(companies, func(c *models.Company) bool {
		return hits.Contains(c.ID)
	})
}

// ByTags keeps companies carrying every tag in tags.
func ByTags(companies []models.Company, tags []string) []models.Company {
	if len(tags) == 0 {
		return pass(companies)
	}
	return keep(companies, func(c *models.Company) bool {
		for _, tag := range tags {
			if !c.HasTag(tag) {
				return false
			}
		}
		return true
	})
}

// ByIndustry keeps companies whose industry key equals key.
func ByIndustry(companies []models.Company, key string) []models.Company {
	if key == "" {
		return pass(companies)
	}
	return keep(companies, func(c *models.Company) bool {
		return c.Industry.Key() == key
	})
}

// BySubindustry keeps companies whose subindustry key equals key.
func BySubindustry(companies []models.Company, key string) []models.Company {
	if key == "" {
		return pass(companies)
	}
	return keep(companies, func(c *models.Company) bool {
		return c.Subindustry.Key() == key
	})
}

func keep(companies []models.Company, pred func(*models.Company) bool) []models.Company {
	out := make([]models.Company, 0, len(companies))
	for i := range companies {
		if pred(&companies[i]) {
			out = append(out, companies[i])
		}
	}
	return out
}

// pass returns a copy so later stages and the sort never alias the catalog.
func pass(companies []models.Company) []models.Company {
	out := make([]models.Company, len(companies))
	copy(out, companies)
	return out
}
