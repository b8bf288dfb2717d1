package inmemdb

import (
	"sync"
	"time"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/core/user"
)

type (
	// DB keeps every table in memory. Its zero value is not usable; call Open.
	DB struct {
		content *contentTable
		user    *userTable
	}

	contentTable struct {
		sync.RWMutex
		pk     int
		items  map[int]*content.Item
		tags   []content.Tag // count is always 0; computed on query
		techs  []content.Technology
		levels []content.Level
	}

	userCourseKey struct {
		userID, courseID int
	}

	userTable struct {
		sync.RWMutex
		pk      int
		table   map[int]*user.User
		courses map[userCourseKey]*user.UserCourse
		levels  []user.Level
	}
)

// Open returns an empty database seeded with the default course and user levels.
func Open() *DB {
	return &DB{
		content: &contentTable{
			items: make(map[int]*content.Item),
			levels: []content.Level{
				{ID: 1, Name: "Beginner", Slug: "beginner"},
				{ID: 2, Name: "Intermediate", Slug: "intermediate"},
				{ID: 3, Name: "Advanced", Slug: "advanced"},
			},
		},
		user: &userTable{
			table:   make(map[int]*user.User),
			courses: make(map[userCourseKey]*user.UserCourse),
			levels: []user.Level{
				{Number: 1, MinXP: 0}, {Number: 2, MinXP: 100}, {Number: 3, MinXP: 300},
				{Number: 4, MinXP: 600}, {Number: 5, MinXP: 1000}, {Number: 6, MinXP: 1500},
				{Number: 7, MinXP: 2100}, {Number: 8, MinXP: 2800}, {Number: 9, MinXP: 3600},
				{Number: 10, MinXP: 4500},
			},
		},
	}
}

// InsertItem stores a copy of it with a new ID. Tags, technologies and levels are matched by slug and
// created when unknown (levels must exist).
func (db *DB) InsertItem(it content.Item) (content.Item, error) {
	if !it.Type.IsValid() {
		return content.Item{}, core.NewArgumentError("type", "unknown content type "+string(it.Type))
	}
	tbl := db.content
	tbl.Lock()
	defer tbl.Unlock()

	tags := make([]content.Tag, 0, len(it.Tags))
	for _, t := range it.Tags {
		tags = append(tags, tbl.tag(t))
	}
	techs := make([]content.Technology, 0, len(it.Technologies))
	for _, t := range it.Technologies {
		techs = append(techs, tbl.technology(t))
	}
	var levels []content.Level
	for _, l := range it.Levels {
		lvl, ok := tbl.level(l.Slug)
		if !ok {
			return content.Item{}, core.NewArgumentError("levels", "unknown level "+l.Slug)
		}
		levels = append(levels, lvl)
	}

	tbl.pk++
	it.ID = tbl.pk
	it.Tags = tags
	it.Technologies = techs
	it.Levels = levels
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC()
	}
	tbl.items[it.ID] = &it
	return cloneItem(it), nil
}

func (tbl *contentTable) tag(t content.Tag) content.Tag {
	for _, existing := range tbl.tags {
		if existing.Slug == t.Slug {
			return existing
		}
	}
	t.ID = len(tbl.tags) + 1
	t.Count = 0
	tbl.tags = append(tbl.tags, t)
	return t
}

func (tbl *contentTable) technology(t content.Technology) content.Technology {
	for _, existing := range tbl.techs {
		if existing.Slug == t.Slug {
			return existing
		}
	}
	t.ID = len(tbl.techs) + 1
	t.Count = 0
	tbl.techs = append(tbl.techs, t)
	return t
}

func (tbl *contentTable) level(slug string) (content.Level, bool) {
	for _, l := range tbl.levels {
		if l.Slug == slug {
			return l, true
		}
	}
	return content.Level{}, false
}

func cloneItem(it content.Item) content.Item {
	it.Tags = append([]content.Tag{}, it.Tags...)
	it.Technologies = append([]content.Technology{}, it.Technologies...)
	if it.Levels != nil {
		it.Levels = append([]content.Level{}, it.Levels...)
	}
	return it
}
