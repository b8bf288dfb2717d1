package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/lilypad-dao/lilypad/core"
)

var (
	// errors
	ErrNotFound = errors.New("content not found")
)

type (
	Repository interface {
		// QueryItems returns the items matching filter ordered by insertion (ID) unless ordering is set.
		QueryItems(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Item, error)
		GetItem(ctx context.Context, typ Type, id int) (Item, error)
		// QueryRelatedCandidates returns the items of q.Type sharing at least one tag or technology
		// slug with q, except q.ExcludeID, in insertion order.
		QueryRelatedCandidates(ctx context.Context, q RelatednessQuery) ([]Item, error)
		// QueryTags returns the tags used by items of typ with their usage count. An empty typ counts all items.
		QueryTags(ctx context.Context, typ Type) ([]Tag, error)
		QueryTechnologies(ctx context.Context, typ Type) ([]Technology, error)
		QueryLevels(ctx context.Context) ([]Level, error)
	}

	Service interface {
		Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Item, error)
		Get(ctx context.Context, typ Type, id int) (Item, error)
		Related(ctx context.Context, q RelatednessQuery, limit int) ([]Item, error)
		RelatedTo(ctx context.Context, src Item, typ Type, limit int) ([]Item, error)
		Tags(ctx context.Context, typ Type) ([]Tag, error)
		Technologies(ctx context.Context, typ Type) ([]Technology, error)
		Levels(ctx context.Context) ([]Level, error)
		Filters(ctx context.Context, typ Type, topN int) ([]Filter, error)
	}

	service struct {
		repo     Repository
		cache    core.Cache
		cacheTTL time.Duration
		logger   core.Logger
		maxTake  int
	}
)

var _ Service = (*service)(nil)

// NewService returns the content Service. cache may be nil.
func NewService(repo Repository, cache core.Cache, logger core.Logger, conf *core.Config) Service {
	return &service{
		repo:     repo,
		cache:    cache,
		cacheTTL: conf.Redis.TTL,
		logger:   logger,
		maxTake:  conf.Content.MaxTake,
	}
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Item, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, core.NewArgumentError("type", fmt.Sprintf("unknown content type %q", filter.Type))
	}
	if svc.maxTake > 0 && (filter.Take == 0 || filter.Take > svc.maxTake) {
		filter.Take = svc.maxTake
	}
	items, err := svc.repo.QueryItems(ctx, filter, ordering)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying items")
	}
	return items, nil
}

func (svc *service) Get(ctx context.Context, typ Type, id int) (Item, error) {
	if id <= 0 {
		return Item{}, ErrNotFound
	}
	return svc.repo.GetItem(ctx, typ, id)
}

func (svc *service) Related(ctx context.Context, q RelatednessQuery, limit int) ([]Item, error) {
	if limit <= 0 {
		return nil, core.NewArgumentError("limit", "must be positive")
	}
	if !q.Type.IsValid() {
		return nil, core.NewArgumentError("type", fmt.Sprintf("unknown content type %q", q.Type))
	}
	if q.IsEmpty() {
		return []Item{}, nil
	}

	candidates, err := svc.repo.QueryRelatedCandidates(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying related candidates")
	}
	return ResolveRelated(q, candidates, limit)
}

func (svc *service) RelatedTo(ctx context.Context, src Item, typ Type, limit int) ([]Item, error) {
	return svc.Related(ctx, NewRelatednessQuery(src, typ), limit)
}

func (svc *service) Tags(ctx context.Context, typ Type) ([]Tag, error) {
	tags, err := svc.repo.QueryTags(ctx, typ)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying tags")
	}
	return tags, nil
}

func (svc *service) Technologies(ctx context.Context, typ Type) ([]Technology, error) {
	techs, err := svc.repo.QueryTechnologies(ctx, typ)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying technologies")
	}
	return techs, nil
}

func (svc *service) Levels(ctx context.Context) ([]Level, error) {
	levels, err := svc.repo.QueryLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying levels")
	}
	return levels, nil
}

// Filters returns the `topN` most used tags and technologies of typ, read through the cache.
func (svc *service) Filters(ctx context.Context, typ Type, topN int) ([]Filter, error) {
	if topN <= 0 {
		return nil, core.NewArgumentError("topN", "must be positive")
	}

	key := fmt.Sprintf("filters:%s:%d", typ, topN)
	if svc.cache != nil {
		var cached []Filter
		found, err := svc.cache.Get(ctx, key, &cached)
		if err != nil {
			// a broken cache must not take the homepage down
			svc.logger.Warn("reading filters from cache", pkgerrors.Wrap(err, key))
		} else if found {
			return cached, nil
		}
	}

	tags, err := svc.Tags(ctx, typ)
	if err != nil {
		return nil, err
	}
	techs, err := svc.Technologies(ctx, typ)
	if err != nil {
		return nil, err
	}
	// unused taxonomy would link to empty browse pages
	filters, err := RankFilters(usedTags(tags), usedTechnologies(techs), topN)
	if err != nil {
		return nil, err
	}

	if svc.cache != nil {
		if err = svc.cache.Set(ctx, key, filters, svc.cacheTTL); err != nil {
			svc.logger.Warn("writing filters to cache", pkgerrors.Wrap(err, key))
		}
	}
	return filters, nil
}

func usedTags(tags []Tag) []Tag {
	res := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t.Count > 0 {
			res = append(res, t)
		}
	}
	return res
}

func usedTechnologies(techs []Technology) []Technology {
	res := make([]Technology, 0, len(techs))
	for _, t := range techs {
		if t.Count > 0 {
			res = append(res, t)
		}
	}
	return res
}
