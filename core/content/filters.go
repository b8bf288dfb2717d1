package content

import (
	"sort"

	"github.com/lilypad-dao/lilypad/core"
)

// FilterKind tells which taxonomy a Filter was built from.
type FilterKind string

const (
	KindTag        FilterKind = "tag"
	KindTechnology FilterKind = "technology"
)

// Filter is a browse shortcut built from either a Tag or a Technology.
// Use FilterFromTag or FilterFromTechnology to build one.
type Filter struct {
	ID    int        `json:"id"`
	Name  string     `json:"name"`
	Slug  string     `json:"slug"`
	Kind  FilterKind `json:"kind"`
	Count int        `json:"count"`
}

func FilterFromTag(t Tag) Filter {
	return Filter{ID: t.ID, Name: t.Name, Slug: t.Slug, Kind: KindTag, Count: t.Count}
}

func FilterFromTechnology(t Technology) Filter {
	return Filter{ID: t.ID, Name: t.Name, Slug: t.Slug, Kind: KindTechnology, Count: t.Count}
}

// BrowseSegment is the path segment of the filter's browse page (ex: /courses/browse/tech/solidity).
func (f Filter) BrowseSegment() string {
	if f.Kind == KindTechnology {
		return "tech"
	}
	return "tag"
}

// RankFilters merges tags then technologies into Filters and keeps the `topN` most used ones.
// Equal counts keep their input order, so tags come before technologies.
func RankFilters(tags []Tag, techs []Technology, topN int) ([]Filter, error) {
	if topN <= 0 {
		return nil, core.NewArgumentError("topN", "must be positive")
	}

	filters := make([]Filter, 0, len(tags)+len(techs))
	for _, t := range tags {
		filters = append(filters, FilterFromTag(t))
	}
	for _, t := range techs {
		filters = append(filters, FilterFromTechnology(t))
	}

	sort.SliceStable(filters, func(i, j int) bool { return filters[i].Count > filters[j].Count })

	if len(filters) > topN {
		filters = filters[:topN]
	}
	return filters, nil
}
