// Package search implements the directory's multi-field text index. Every
// indexed field is an independent channel keyed by company id; tokens are
// indexed forward (every prefix), so a query token matches any indexed token
// starting with it. A query hits a company when any field matches.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	e "github.com/gartstein/bawsala/internal/directory/errors"
	"github.com/gartstein/bawsala/internal/directory/models"
)

// MaxQueryRunes bounds accepted query length.
const MaxQueryRunes = 256

// Field names one searchable channel.
type Field string

const (
	FieldNameAr        Field = "name_ar"
	FieldNameEn        Field = "name_en"
	FieldDescriptionAr Field = "description_ar"
	FieldDescriptionEn Field = "description_en"
	FieldTags          Field = "tags"
	FieldHeadquarters  Field = "headquarters"
	FieldIndustryEn    Field = "industry_en"
	FieldIndustryAr    Field = "industry_ar"
	FieldSubindustryEn Field = "subindustry_en"
	FieldSubindustryAr Field = "subindustry_ar"
)

// Fields lists every indexed channel.
var Fields = []Field{
	FieldNameAr, FieldNameEn,
	FieldDescriptionAr, FieldDescriptionEn,
	FieldTags, FieldHeadquarters,
	FieldIndustryEn, FieldIndustryAr,
	FieldSubindustryEn, FieldSubindustryAr,
}

func fieldText(c *models.Company, f Field) string {
	switch f {
	case FieldNameAr:
		return c.NameAr
	case FieldNameEn:
		return c.NameEn
	case FieldDescriptionAr:
		return c.DescriptionAr
	case FieldDescriptionEn:
		return c.DescriptionEn
	case FieldTags:
		return strings.Join(c.Tags, " ")
	case FieldHeadquarters:
		return c.Headquarters
	case FieldIndustryEn:
		return c.Industry[0]
	case FieldIndustryAr:
		return c.Industry[1]
	case FieldSubindustryEn:
		return c.Subindustry[0]
	case FieldSubindustryAr:
		return c.Subindustry[1]
	}
	return ""
}

// postings maps a token prefix to the ascending document numbers carrying it.
type postings map[string][]int

func (p postings) add(prefix string, doc int) {
	docs := p[prefix]
	if n := len(docs); n > 0 && docs[n-1] == doc {
		return
	}
	p[prefix] = append(docs, doc)
}

// Index is built once per catalog and is read-only afterwards, so it is safe
// for concurrent queries.
type Index struct {
	ids      []string
	channels map[Field]postings
}

// Build indexes every company in order.
func Build(companies []models.Company) *Index {
	idx := &Index{
		ids:      make([]string, len(companies)),
		channels: make(map[Field]postings, len(Fields)),
	}
	for _, f := range Fields {
		idx.channels[f] = postings{}
	}
	for doc := range companies {
		c := &companies[doc]
		idx.ids[doc] = c.ID
		for _, f := range Fields {
			ch := idx.channels[f]
			for _, token := range Tokenize(fieldText(c, f)) {
				for _, p := range prefixes(token) {
					ch.add(p, doc)
				}
			}
		}
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.ids)
}

// Ready reports whether the index has been built.
func (idx *Index) Ready() bool {
	return idx != nil && idx.channels != nil
}

// FieldHits returns, per field, the ids whose field text prefix-matches
// any query token. Fields without hits are omitted.
func (idx *Index) FieldHits(ctx context.Context, query string) (map[Field][]string, error) {
	if !idx.Ready() {
		return nil, e.ErrIndexNotReady
	}
	if !utf8.ValidString(query) {
		return nil, fmt.Errorf("%w: invalid UTF-8", e.ErrMalformedQuery)
	}
	if n := utf8.RuneCountInString(query); n > MaxQueryRunes {
		return nil, fmt.Errorf("%w: %d runes exceeds %d", e.ErrMalformedQuery, n, MaxQueryRunes)
	}
	tokens := Tokenize(query)
	hits := make(map[Field][]string)
	if len(tokens) == 0 {
		return hits, nil
	}
	for _, f := range Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs := idx.lookup(f, tokens)
		if len(docs) == 0 {
			continue
		}
		ids := make([]string, len(docs))
		for i, doc := range docs {
			ids[i] = idx.ids[doc]
		}
		hits[f] = ids
	}
	return hits, nil
}

func (idx *Index) lookup(f Field, tokens []string) []int {
	ch := idx.channels[f]
	var docs []int
	for _, token := range tokens {
		docs = merge(docs, ch[token])
	}
	return docs
}

// merge unions two ascending lists.
func merge(a, b []int) []int {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Union merges per-field hits into one id set. No field is weighted over
// another and the result carries no order.
func Union(hits map[Field][]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, ids := range hits {
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	return set
}

// Search answers a free-text query. An empty or whitespace-only query yields
// the inactive sentinel. On failure the returned set is the explicit failed
// state alongside the error, so callers may use the set either way.
func (idx *Index) Search(ctx context.Context, query string) (models.SearchResultSet, error) {
	if strings.TrimSpace(query) == "" {
		if !idx.Ready() {
			return models.NoSearch(), e.ErrIndexNotReady
		}
		return models.NoSearch(), nil
	}
	hits, err := idx.FieldHits(ctx, query)
	if err != nil {
		return models.FailedSearch(err), err
	}
	return models.MatchSet(Union(hits)), nil
}

// Response is the outcome of an asynchronous query.
type Response struct {
	Query  string
	Result models.SearchResultSet
	Err    error
}

// SearchAsync runs Search on its own goroutine. The channel yields exactly
// one Response and is then closed.
func (idx *Index) SearchAsync(ctx context.Context, query string) <-chan Response {
	out := make(chan Response, 1)
	go func() {
		defer close(out)
		res, err := idx.Search(ctx, query)
		out <- Response{Query: query, Result: res, Err: err}
	}()
	return out
}
