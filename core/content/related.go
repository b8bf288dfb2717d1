package content

import (
	"sort"

	"github.com/lilypad-dao/lilypad/core"
)

// ResolveRelated picks the candidates sharing at least one tag or technology with q.
// Each candidate scores one point per tag slug and per technology slug in common; zero scores and
// q.ExcludeID are dropped. Results are ordered by descending score, ties keep the candidates' order,
// and at most `limit` items are returned.
func ResolveRelated(q RelatednessQuery, candidates []Item, limit int) ([]Item, error) {
	if limit <= 0 {
		return nil, core.NewArgumentError("limit", "must be positive")
	}

	tags := toSet(q.TagSlugs)
	techs := toSet(q.TechnologySlugs)

	type scored struct {
		item  Item
		score int
	}
	matches := make([]scored, 0, len(candidates))
	for _, it := range candidates {
		if q.ExcludeID != 0 && it.ID == q.ExcludeID {
			continue
		}
		score := overlap(tags, it.TagSlugs()) + overlap(techs, it.TechnologySlugs())
		if score == 0 {
			continue
		}
		matches = append(matches, scored{item: it, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if len(matches) > limit {
		matches = matches[:limit]
	}
	related := make([]Item, 0, len(matches))
	for _, m := range matches {
		related = append(related, m.item)
	}
	return related, nil
}

func toSet(ss []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

// overlap counts the distinct values of ss found in set.
func overlap(set map[string]struct{}, ss []string) int {
	if len(set) == 0 {
		return 0
	}
	var n int
	seen := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			n++
		}
	}
	return n
}
