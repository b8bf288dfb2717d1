package inmemdb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
)

type contentRepository struct {
	db *contentTable
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) content.Repository {
	return &contentRepository{db: db.content}
}

// query returns copies of all items, by ID.
func (repo *contentRepository) query() []content.Item {
	items := make([]content.Item, 0, len(repo.db.items))
	for _, it := range repo.db.items {
		items = append(items, cloneItem(*it))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (repo *contentRepository) QueryItems(_ context.Context, filter content.QueryFilter, ordering []core.DBOrdering) ([]content.Item, error) {
	for _, ord := range ordering {
		switch ord.Field {
		case "id", "title", "created_at":
		default:
			return nil, core.NewArgumentError("ordering", fmt.Sprintf("cannot order by %q", ord.Field))
		}
	}

	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	items := make([]content.Item, 0)
	for _, it := range repo.query() {
		if filter.Type != "" && it.Type != filter.Type {
			continue
		}
		if len(filter.TagSlugs) > 0 && !intersects(filter.TagSlugs, it.TagSlugs()) {
			continue
		}
		if len(filter.TechnologySlugs) > 0 && !intersects(filter.TechnologySlugs, it.TechnologySlugs()) {
			continue
		}
		if len(filter.LevelSlugs) > 0 && !intersects(filter.LevelSlugs, levelSlugs(it)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(it.Title), search) &&
			!strings.Contains(strings.ToLower(it.Description), search) {
			continue
		}
		items = append(items, it)
	}

	if len(ordering) > 0 {
		sort.SliceStable(items, func(i, j int) bool {
			for _, ord := range ordering {
				if c := compareItems(items[i], items[j], ord.Field); c != 0 {
					return (c < 0) == ord.Ascending
				}
			}
			return false
		})
	}

	if filter.Skip > 0 {
		if filter.Skip >= len(items) {
			return []content.Item{}, nil
		}
		items = items[filter.Skip:]
	}
	if filter.Take > 0 && len(items) > filter.Take {
		items = items[:filter.Take]
	}
	return items, nil
}

func compareItems(a, b content.Item, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	}
	return a.ID - b.ID
}

func (repo *contentRepository) GetItem(_ context.Context, typ content.Type, id int) (content.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if it, ok := repo.db.items[id]; ok && it.Type == typ {
		return cloneItem(*it), nil
	}
	return content.Item{}, content.ErrNotFound
}

func (repo *contentRepository) QueryRelatedCandidates(_ context.Context, q content.RelatednessQuery) ([]content.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := make([]content.Item, 0)
	for _, it := range repo.query() {
		if it.Type != q.Type || (q.ExcludeID != 0 && it.ID == q.ExcludeID) {
			continue
		}
		if intersects(q.TagSlugs, it.TagSlugs()) || intersects(q.TechnologySlugs, it.TechnologySlugs()) {
			items = append(items, it)
		}
	}
	return items, nil
}

func (repo *contentRepository) QueryTags(_ context.Context, typ content.Type) ([]content.Tag, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, it := range repo.query() {
		if typ == "" || it.Type == typ {
			for _, slug := range distinct(it.TagSlugs()) {
				counts[slug]++
			}
		}
	}
	tags := make([]content.Tag, 0, len(counts))
	for _, t := range repo.db.tags {
		if n := counts[t.Slug]; n > 0 || typ == "" {
			t.Count = n
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func (repo *contentRepository) QueryTechnologies(_ context.Context, typ content.Type) ([]content.Technology, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, it := range repo.query() {
		if typ == "" || it.Type == typ {
			for _, slug := range distinct(it.TechnologySlugs()) {
				counts[slug]++
			}
		}
	}
	techs := make([]content.Technology, 0, len(counts))
	for _, t := range repo.db.techs {
		if n := counts[t.Slug]; n > 0 || typ == "" {
			t.Count = n
			techs = append(techs, t)
		}
	}
	return techs, nil
}

func (repo *contentRepository) QueryLevels(_ context.Context) ([]content.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]content.Level{}, repo.db.levels...), nil
}

func levelSlugs(it content.Item) []string {
	slugs := make([]string, 0, len(it.Levels))
	for _, l := range it.Levels {
		slugs = append(slugs, l.Slug)
	}
	return slugs
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func distinct(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := ss[:0:0]
	for _, s := range ss {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
