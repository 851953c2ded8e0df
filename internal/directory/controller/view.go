package controller

import (
	"fmt"

	"github.com/gartstein/bawsala/internal/directory/facets"
	"github.com/gartstein/bawsala/internal/directory/filter"
	"github.com/gartstein/bawsala/internal/directory/models"
	"github.com/gartstein/bawsala/internal/directory/sorting"
)

// ViewState is everything a user controls on the directory page.
type ViewState struct {
	Query   string           `json:"query"`
	Filters filter.Selection `json:"filters"`
	Order   sorting.Order    `json:"order"`
	Locale  models.Locale    `json:"locale"`
}

// DefaultViewState is a fresh page: no query, no filters, name ascending,
// Arabic.
func DefaultViewState() ViewState {
	return ViewState{Order: sorting.DefaultOrder, Locale: models.DefaultLocale}
}

type ViewStatus string

const (
	StatusReady        ViewStatus = "ready"
	StatusNoData       ViewStatus = "no_data"
	StatusNoMatches    ViewStatus = "no_matches"
	StatusSearchFailed ViewStatus = "search_failed"
	StatusError        ViewStatus = "error"
)

// SearchSummary reports the search stage's outcome.
type SearchSummary struct {
	Active  bool   `json:"active"`
	Failed  bool   `json:"failed"`
	Error   string `json:"error,omitempty"`
	Matches int    `json:"matches"`
}

// View is the fully derived page for one ViewState.
type View struct {
	State         ViewStatus              `json:"state"`
	Locale        models.Locale           `json:"locale"`
	Dir           string                  `json:"dir"`
	Query         string                  `json:"query"`
	Selection     filter.Selection        `json:"selection"`
	Order         sorting.Order           `json:"order"`
	Companies     []models.Company        `json:"companies"`
	Count         int                     `json:"count"`
	CountText     string                  `json:"count_text"`
	Message       string                  `json:"message,omitempty"`
	Tags          []models.TagCount       `json:"tags"`
	TagGroups     facets.Grouped          `json:"tag_groups"`
	Industries    []models.CategoryOption `json:"industries"`
	Subindustries []models.CategoryOption `json:"subindustries"`
	Search        SearchSummary           `json:"search"`
	Error         string                  `json:"error,omitempty"`
}

// Derive runs the pipeline, the facets and the sort over companies. It has
// no side effects; the same inputs always give the same View.
func Derive(companies []models.Company, master facets.Master, state ViewState, hits models.SearchResultSet) View {
	locale := state.Locale
	if locale == "" {
		locale = models.DefaultLocale
	}
	order := state.Order
	if order.Key == "" {
		order = sorting.DefaultOrder
	}

	st := filter.Run(companies, hits, state.Filters)
	f := facets.Compute(st, master, locale)
	visible := sorting.Sort(st.Visible, order, locale)

	v := View{
		Locale:        locale,
		Dir:           locale.Dir(),
		Query:         state.Query,
		Selection:     state.Filters,
		Order:         order,
		Companies:     visible,
		Count:         len(visible),
		CountText:     CountText(len(visible), locale),
		Tags:          f.Tags,
		TagGroups:     facets.Group(f.Tags, facets.DefaultCutoff),
		Industries:    f.Industries,
		Subindustries: f.Subindustries,
		Search: SearchSummary{
			Active:  hits.Active(),
			Failed:  hits.Failed(),
			Matches: hits.Len(),
		},
	}
	if hits.Failed() {
		v.Search.Error = hits.Err().Error()
	}

	switch {
	case len(companies) == 0:
		v.State = StatusNoData
		v.Message = noDataMessage(locale)
	case hits.Failed():
		v.State = StatusSearchFailed
		v.Error = v.Search.Error
		v.Message = noMatchesMessage(locale)
	case len(visible) == 0:
		v.State = StatusNoMatches
		v.Message = noMatchesMessage(locale)
	default:
		v.State = StatusReady
	}
	return v
}

// unavailable is the view shown while no catalog is loaded.
func unavailable(state ViewState, err error) View {
	locale := state.Locale
	if locale == "" {
		locale = models.DefaultLocale
	}
	v := View{
		State:     StatusError,
		Locale:    locale,
		Dir:       locale.Dir(),
		Query:     state.Query,
		Selection: state.Filters,
		Order:     state.Order,
		Companies: []models.Company{},
		CountText: CountText(0, locale),
		Message:   noDataMessage(locale),
	}
	if err != nil {
		v.Error = err.Error()
	}
	return v
}

// CountText is the localized result-count line.
func CountText(count int, locale models.Locale) string {
	if locale == models.English {
		if count == 1 {
			return "Showing 1 company"
		}
		return fmt.Sprintf("Showing %d companies", count)
	}
	switch count {
	case 0:
		return "لا توجد شركات لعرضها"
	case 1:
		return "عرض شركة واحدة"
	case 2:
		return "عرض شركتان"
	}
	return fmt.Sprintf("عرض %d شركات", count)
}

func noDataMessage(locale models.Locale) string {
	if locale == models.English {
		return "Company data could not be loaded."
	}
	return "لم يتم تحميل بيانات الشركات."
}

func noMatchesMessage(locale models.Locale) string {
	if locale == models.English {
		return "No matching results found for your search or filters."
	}
	return "لا توجد نتائج مطابقة للبحث أو التصفية."
}
