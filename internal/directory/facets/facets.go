// Package facets derives the selectable options, with live counts, for each
// filtering dimension. Each facet is computed from the pipeline stage just
// before its own dimension is applied, so its counts reflect every other
// active filter but not its own selection.
package facets

import (
	"sort"

	"github.com/gartstein/bawsala/internal/directory/filter"
	"github.com/gartstein/bawsala/internal/directory/models"
	"github.com/gartstein/bawsala/internal/directory/sorting"
)

// DefaultCutoff is the number of tags shown before the rest are grouped.
const DefaultCutoff = 5

// Facets bundles the three option lists for one view.
type Facets struct {
	Tags          []models.TagCount       `json:"tags"`
	Industries    []models.CategoryOption `json:"industries"`
	Subindustries []models.CategoryOption `json:"subindustries"`
}

// Master is the full allow-list each category facet is filtered down from.
type Master struct {
	Industries    []models.Category
	Subindustries []models.Category
}

// Compute derives every facet from the pipeline stages.
func Compute(st filter.Stages, master Master, locale models.Locale) Facets {
	return Facets{
		Tags:          Tags(st.Visible),
		Industries:    Industries(st.Tagged, master.Industries, locale),
		Subindustries: Subindustries(st.InIndustry, master.Subindustries, locale),
	}
}

// Tags counts, per tag, the visible companies carrying it. A tag repeated
// within one company counts once. The full list is returned, ordered by
// count descending, ties broken by tag ascending.
func Tags(visible []models.Company) []models.TagCount {
	counts := make(map[string]int)
	seen := make(map[string]struct{})
	for i := range visible {
		clear(seen)
		for _, tag := range visible[i].Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}
	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Industries counts industry keys over base (the search and tag stages'
// output).
func Industries(base []models.Company, master []models.Category, locale models.Locale) []models.CategoryOption {
	return categories(base, master, locale, func(c *models.Company) models.Category { return c.Industry })
}

// Subindustries counts subindustry keys over base (the industry stage's
// output).
func Subindustries(base []models.Company, master []models.Category, locale models.Locale) []models.CategoryOption {
	return categories(base, master, locale, func(c *models.Company) models.Category { return c.Subindustry })
}

// categories offers only keys present in base. Labels come from the master
// list; a key missing from the master list falls back to the company's own
// pair. Options are ordered by collated label in the active locale.
func categories(
	base []models.Company,
	master []models.Category,
	locale models.Locale,
	pick func(*models.Company) models.Category,
) []models.CategoryOption {
	counts := make(map[string]int)
	pairs := make(map[string]models.Category)
	for i := range base {
		cat := pick(&base[i])
		if cat.Key() == "" {
			continue
		}
		counts[cat.Key()]++
		if _, ok := pairs[cat.Key()]; !ok {
			pairs[cat.Key()] = cat
		}
	}
	for _, m := range master {
		if _, present := counts[m.Key()]; present {
			pairs[m.Key()] = m
		}
	}

	out := make([]models.CategoryOption, 0, len(counts))
	for key, n := range counts {
		out = append(out, models.CategoryOption{
			Key:   key,
			Label: pairs[key].Label(locale),
			Count: n,
		})
	}
	col := sorting.NewCollator(locale)
	sort.Slice(out, func(i, j int) bool {
		if c := col.CompareString(out[i].Label, out[j].Label); c != 0 {
			return c < 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}
