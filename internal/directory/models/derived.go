package models

import "sort"

// TagCount pairs a tag with the number of visible companies carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CategoryOption is a selectable industry or subindustry.
type CategoryOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SearchResultSet is the outcome of a text query. The zero value is the
// "no query active" sentinel, which is distinct from an active query that
// matched nothing.
type SearchResultSet struct {
	active bool
	ids    map[string]struct{}
	err    error
}

// NoSearch returns the inactive sentinel.
func NoSearch() SearchResultSet {
	return SearchResultSet{}
}

// Matches returns an active result holding ids.
func Matches(ids ...string) SearchResultSet {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return SearchResultSet{active: true, ids: set}
}

// MatchSet returns an active result that takes ownership of set.
func MatchSet(set map[string]struct{}) SearchResultSet {
	if set == nil {
		set = map[string]struct{}{}
	}
	return SearchResultSet{active: true, ids: set}
}

// FailedSearch returns an active, empty result carrying the failure.
func FailedSearch(err error) SearchResultSet {
	return SearchResultSet{active: true, ids: map[string]struct{}{}, err: err}
}

// Active reports whether a query was issued.
func (s SearchResultSet) Active() bool { return s.active }

// Failed reports whether the query failed.
func (s SearchResultSet) Failed() bool { return s.err != nil }

// Err returns the failure, if any.
func (s SearchResultSet) Err() error { return s.err }

// Len returns the number of matched ids.
func (s SearchResultSet) Len() int { return len(s.ids) }

// Contains reports whether id matched.
func (s SearchResultSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the matched ids in ascending order.
func (s SearchResultSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
