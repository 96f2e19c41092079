// Package query resolves raw listing search parameters into a typed
// domain.ListingQuery. Inputs that cannot be used are dropped and reported
// back as domain.IgnoredParam values instead of failing the request.
package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
)

const (
	paramKeyword = "keyword"
	paramSearch  = "search"
	paramSort    = "sort"
	paramPage    = "page"
	paramLimit   = "limit"
)

const (
	reasonNotANumber   = "not a number"
	reasonNotABoolean  = "not a boolean"
	reasonBadSort      = "unsupported sort, using listedAt:desc"
	reasonBadPage      = "not a positive integer"
	reasonLimitClamped = "limit out of range, clamped"
	reasonUnknown      = "unsupported filter"
)

// Build resolves params against schema.
func Build(params url.Values, schema Schema) (domain.ListingQuery, []domain.IgnoredParam) {
	b := &builder{params: params, schema: schema, seen: make(map[string]bool)}

	q := domain.ListingQuery{
		Sort:  domain.DefaultSort,
		Page:  1,
		Limit: domain.DefaultPageLimit,
	}

	for _, field := range schema.Text {
		if c := b.text(field); c != nil {
			q.Clauses = append(q.Clauses, c)
		}
	}
	for _, field := range schema.Ranges {
		if c := b.rangeClause(field); c != nil {
			q.Clauses = append(q.Clauses, c)
		}
	}
	for _, field := range schema.Booleans {
		if c := b.boolean(field); c != nil {
			q.Clauses = append(q.Clauses, c)
		}
	}
	if c := b.keyword(); c != nil {
		q.Clauses = append(q.Clauses, c)
	}

	q.Sort = b.sort()
	q.Page = b.page()
	q.Limit = b.limit()

	b.reportUnknown()
	return q, b.ignored
}

type builder struct {
	params  url.Values
	schema  Schema
	seen    map[string]bool
	ignored []domain.IgnoredParam
}

func (b *builder) ignore(key, value, reason string) {
	b.ignored = append(b.ignored, domain.IgnoredParam{Key: key, Value: value, Reason: reason})
}

// values collects key and key[] occurrences, trimmed, non-empty and de-duplicated.
// With split set, comma separated values ("Benzin,Dizel") count as several.
func (b *builder) values(key string, split bool) []string {
	var out []string
	dup := make(map[string]bool)
	for _, k := range []string{key, key + "[]"} {
		raw, ok := b.params[k]
		if !ok {
			continue
		}
		b.seen[k] = true
		for _, v := range raw {
			parts := []string{strings.TrimSpace(v)}
			if split {
				parts = splitList(v)
			}
			for _, part := range parts {
				if part == "" || dup[part] {
					continue
				}
				dup[part] = true
				out = append(out, part)
			}
		}
	}
	return out
}

// first returns the first non-empty trimmed value of key.
func (b *builder) first(key string) (string, bool) {
	vals := b.values(key, false)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func (b *builder) text(field string) domain.Clause {
	vals := b.values(field, b.schema.list(field))
	switch len(vals) {
	case 0:
		return nil
	case 1:
		return domain.Substring{Field: field, Value: vals[0]}
	default:
		return domain.Multiselect{Field: field, Values: vals}
	}
}

func (b *builder) rangeClause(field string) domain.Clause {
	lo := b.bound(field + "Min")
	hi := b.bound(field + "Max")
	if lo == nil && hi == nil {
		return nil
	}
	return domain.Range{Field: field, Min: lo, Max: hi}
}

func (b *builder) bound(key string) *float64 {
	raw, ok := b.first(key)
	if !ok {
		return nil
	}
	v, ok := domain.ParseNumber(raw)
	if !ok {
		b.ignore(key, raw, reasonNotANumber)
		return nil
	}
	return &v
}

func (b *builder) boolean(field string) domain.Clause {
	raw, ok := b.first(field)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		b.ignore(field, raw, reasonNotABoolean)
		return nil
	}
	if !v {
		return nil
	}
	return domain.Boolean{Field: field}
}

func (b *builder) keyword() domain.Clause {
	if len(b.schema.KeywordFields) == 0 {
		return nil
	}
	kw, ok := b.first(paramKeyword)
	if !ok {
		kw, ok = b.first(paramSearch)
	} else {
		b.values(paramSearch, false)
	}
	if !ok {
		return nil
	}
	fields := make([]string, len(b.schema.KeywordFields))
	copy(fields, b.schema.KeywordFields)
	return domain.Keyword{Fields: fields, Value: kw}
}

func (b *builder) sort() domain.Sort {
	raw, ok := b.first(paramSort)
	if !ok {
		return domain.DefaultSort
	}
	s, ok := ParseSort(raw, b.schema)
	if !ok {
		b.ignore(paramSort, raw, reasonBadSort)
		return domain.DefaultSort
	}
	return s
}

// ParseSort reads "field:asc" or "field:desc". The field must be sortable in schema.
func ParseSort(raw string, schema Schema) (domain.Sort, bool) {
	field, dir, found := strings.Cut(strings.TrimSpace(raw), ":")
	if !found {
		return domain.Sort{}, false
	}
	field = strings.TrimSpace(field)
	if !schema.sortable(field) {
		return domain.Sort{}, false
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
		return domain.Sort{Field: field, Direction: domain.SortAsc}, true
	case "desc":
		return domain.Sort{Field: field, Direction: domain.SortDesc}, true
	default:
		return domain.Sort{}, false
	}
}

func (b *builder) page() int {
	raw, ok := b.first(paramPage)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		b.ignore(paramPage, raw, reasonBadPage)
		return 1
	}
	return n
}

func (b *builder) limit() int {
	raw, ok := b.first(paramLimit)
	if !ok {
		return domain.DefaultPageLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		b.ignore(paramLimit, raw, reasonBadPage)
		return domain.DefaultPageLimit
	}
	switch {
	case n < 1:
		b.ignore(paramLimit, raw, reasonLimitClamped)
		return 1
	case n > domain.MaxPageLimit:
		b.ignore(paramLimit, raw, reasonLimitClamped)
		return domain.MaxPageLimit
	}
	return n
}

func (b *builder) reportUnknown() {
	var unknown []string
	for key := range b.params {
		if !b.seen[key] {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	for _, key := range unknown {
		b.ignore(key, strings.Join(b.params[key], ","), reasonUnknown)
	}
}

// splitList accepts comma separated multi-select values ("Benzin,Dizel").
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
