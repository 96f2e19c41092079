package usecase

import (
	"slices"
	"strings"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/textnorm"
)

// facetGroup collects the spellings of one normalized facet value.
type facetGroup struct {
	norm     string
	total    int64
	variants map[string]int64
	children map[string]*facetGroup
}

func newFacetGroup(norm string) *facetGroup {
	return &facetGroup{norm: norm, variants: make(map[string]int64)}
}

func (g *facetGroup) add(value string, count int64) {
	g.total += count
	g.variants[strings.TrimSpace(value)] += count
}

// child returns the sub-group for value's normalized form, creating it if needed.
func (g *facetGroup) child(value string) *facetGroup {
	norm := textnorm.Normalize(value)
	if g.children == nil {
		g.children = make(map[string]*facetGroup)
	}
	c, ok := g.children[norm]
	if !ok {
		c = newFacetGroup(norm)
		g.children[norm] = c
	}
	return c
}

// canonical is the most frequent spelling; ties go to the smallest string.
func (g *facetGroup) canonical() string {
	var (
		best      string
		bestCount int64 = -1
	)
	for v, n := range g.variants {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}

// display is the canonical name, or placeholder for the group of blank values.
func (g *facetGroup) display(placeholder string) string {
	if g.norm == "" {
		return placeholder
	}
	return g.canonical()
}

// sortedChildren returns the children ordered by display name. When skipEmpty
// is set the group of blank values is left out.
func (g *facetGroup) sortedChildren(skipEmpty bool, placeholder string) []*facetGroup {
	out := make([]*facetGroup, 0, len(g.children))
	for _, c := range g.children {
		if skipEmpty && c.norm == "" {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *facetGroup) int {
		if c := strings.Compare(a.display(placeholder), b.display(placeholder)); c != 0 {
			return c
		}
		return strings.Compare(a.norm, b.norm)
	})
	return out
}

// canonicalize groups raw value counts by normalized form.
func canonicalize(values []domain.ValueCount, keepEmpty bool) []NameCount {
	root := newFacetGroup("")
	for _, vc := range values {
		root.child(vc.Value).add(vc.Value, vc.Count)
	}

	groups := root.sortedChildren(!keepEmpty, "")
	out := make([]NameCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, NameCount{Name: g.display(""), Count: g.total})
	}
	return out
}

func names(counts []NameCount) []string {
	out := make([]string, 0, len(counts))
	for _, c := range counts {
		out = append(out, c.Name)
	}
	return out
}
