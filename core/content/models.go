package content

import (
	"strings"
	"time"

	"github.com/lilypad-dao/lilypad/core"
)

// Type is the kind of a content Item.
type Type string

const (
	TypeCourse   Type = "COURSE"
	TypeResource Type = "RESOURCE"
	TypeProject  Type = "PROJECT"
)

var AllTypes = []Type{TypeCourse, TypeResource, TypeProject}

func (t Type) IsValid() bool {
	for _, v := range AllTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseType parses a content type case-insensitively. An empty string yields an empty Type (all types).
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(core.CleanString(s)))
	if t == "" || t.IsValid() {
		return t, nil
	}
	return "", core.NewArgumentError("type", "unknown content type "+s)
}

type (
	Tag struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Slug  string `json:"slug"`
		Count int    `json:"count"`
	}

	Technology struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Slug  string `json:"slug"`
		Count int    `json:"count"`
	}

	// Level is a course difficulty level (ex: beginner).
	Level struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}

	// Item is a course, resource or project.
	Item struct {
		ID            int          `json:"id"`
		Type          Type         `json:"type"`
		Title         string       `json:"title"`
		Slug          string       `json:"slug"`
		Description   string       `json:"description"`
		CoverImageURL string       `json:"cover_image_url,omitempty"`
		URL           string       `json:"url,omitempty"`
		Tags          []Tag        `json:"tags"`
		Technologies  []Technology `json:"technologies"`
		Levels        []Level      `json:"levels,omitempty"`
		CreatedAt     time.Time    `json:"created_at"` // UTC
	}
)

func (it Item) TagSlugs() []string {
	slugs := make([]string, 0, len(it.Tags))
	for _, t := range it.Tags {
		slugs = append(slugs, t.Slug)
	}
	return slugs
}

func (it Item) TechnologySlugs() []string {
	slugs := make([]string, 0, len(it.Technologies))
	for _, t := range it.Technologies {
		slugs = append(slugs, t.Slug)
	}
	return slugs
}

// RelatednessQuery describes what related items must share with their source.
type RelatednessQuery struct {
	TagSlugs        []string `json:"tags" query:"tag" validate:"omitempty,slug"`
	TechnologySlugs []string `json:"technologies" query:"tech" validate:"omitempty,slug"`
	Type            Type     `json:"type" query:"type" validate:"required,contenttype"`
	ExcludeID       int      `json:"exclude" query:"exclude" validate:"gte=0"`
}

func (q *RelatednessQuery) Clean() {
	q.TagSlugs = core.CleanStrings(q.TagSlugs, true /* lower */)
	q.TechnologySlugs = core.CleanStrings(q.TechnologySlugs, true /* lower */)
	q.Type = Type(strings.ToUpper(core.CleanString(string(q.Type))))
}

func (q RelatednessQuery) IsEmpty() bool {
	return len(q.TagSlugs) == 0 && len(q.TechnologySlugs) == 0
}

// NewRelatednessQuery builds the query finding items of type `typ` related to `src`.
func NewRelatednessQuery(src Item, typ Type) RelatednessQuery {
	q := RelatednessQuery{
		TagSlugs:        src.TagSlugs(),
		TechnologySlugs: src.TechnologySlugs(),
		Type:            typ,
	}
	if src.Type == typ {
		q.ExcludeID = src.ID
	}
	return q
}

// QueryFilter selects items on the browse pages. Slug filters are OR'ed within a group and AND'ed across groups.
type QueryFilter struct {
	Type            Type     `query:"-"`
	TagSlugs        []string `query:"tag" validate:"omitempty,slug"`
	TechnologySlugs []string `query:"tech" validate:"omitempty,slug"`
	LevelSlugs      []string `query:"level" validate:"omitempty,slug"`
	Search          string   `query:"search"`
	Take            int      `query:"take" validate:"gte=0"`
	Skip            int      `query:"skip" validate:"gte=0"`
}

func (qf *QueryFilter) Clean() {
	qf.TagSlugs = core.CleanStrings(qf.TagSlugs, true /* lower */)
	qf.TechnologySlugs = core.CleanStrings(qf.TechnologySlugs, true /* lower */)
	qf.LevelSlugs = core.CleanStrings(qf.LevelSlugs, true /* lower */)
	qf.Search = core.CleanString(qf.Search)
}
