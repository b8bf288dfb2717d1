package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/storage/database"
)

const itemColumns = "c.id, c.type, c.title, c.slug, c.description, c.cover_image_url, c.url, c.created_at"

// likeEscaper escapes LIKE wildcards so a search matches them literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// orderable columns of the content table
var itemOrderings = map[string]string{
	"id":         "c.id",
	"title":      "c.title",
	"created_at": "c.created_at",
}

type (
	contentRepository struct {
		db *sqlx.DB
	}

	itemRow struct {
		ID            int       `db:"id"`
		Type          string    `db:"type"`
		Title         string    `db:"title"`
		Slug          string    `db:"slug"`
		Description   string    `db:"description"`
		CoverImageURL string    `db:"cover_image_url"`
		URL           string    `db:"url"`
		CreatedAt     time.Time `db:"created_at"`
	}

	// taxonomyRow is a tag, technology or level attached to an item.
	taxonomyRow struct {
		ContentID int    `db:"content_id"`
		ID        int    `db:"id"`
		Name      string `db:"name"`
		Slug      string `db:"slug"`
	}

	countRow struct {
		ID    int    `db:"id"`
		Name  string `db:"name"`
		Slug  string `db:"slug"`
		Count int    `db:"count"`
	}
)

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

// NewContentRepository returns a Postgres content.Repository.
func NewContentRepository(db *sql.DB) *contentRepository {
	return &contentRepository{db: sqlx.NewDb(db, "postgres")}
}

func (row itemRow) item() content.Item {
	return content.Item{
		ID:            row.ID,
		Type:          content.Type(row.Type),
		Title:         row.Title,
		Slug:          row.Slug,
		Description:   row.Description,
		CoverImageURL: row.CoverImageURL,
		URL:           row.URL,
		Tags:          []content.Tag{},
		Technologies:  []content.Technology{},
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func orderBy(ordering []core.DBOrdering) (string, error) {
	if len(ordering) == 0 {
		return "c.id ASC", nil
	}
	clauses := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		col, ok := itemOrderings[ord.Field]
		if !ok {
			return "", core.NewArgumentError("ordering", fmt.Sprintf("cannot order by %q", ord.Field))
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	clauses = append(clauses, "c.id ASC") // stable pagination
	return strings.Join(clauses, ", "), nil
}

func (repo contentRepository) QueryItems(ctx context.Context, filter content.QueryFilter, ordering []core.DBOrdering) ([]content.Item, error) {
	order, err := orderBy(ordering)
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Type != "" {
		where = append(where, "c.type = "+arg(string(filter.Type)))
	}
	if len(filter.TagSlugs) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM content_tag ct JOIN tag t ON t.id = ct.tag_id "+
			"WHERE ct.content_id = c.id AND t.slug = ANY("+arg(pq.Array(filter.TagSlugs))+"))")
	}
	if len(filter.TechnologySlugs) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM content_technology ct JOIN technology t ON t.id = ct.technology_id "+
			"WHERE ct.content_id = c.id AND t.slug = ANY("+arg(pq.Array(filter.TechnologySlugs))+"))")
	}
	if len(filter.LevelSlugs) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM course_level cl JOIN level l ON l.id = cl.level_id "+
			"WHERE cl.content_id = c.id AND l.slug = ANY("+arg(pq.Array(filter.LevelSlugs))+"))")
	}
	if filter.Search != "" {
		p := arg("%" + likeEscaper.Replace(filter.Search) + "%")
		where = append(where, fmt.Sprintf(`(c.title ILIKE %[1]s ESCAPE '\' OR c.description ILIKE %[1]s ESCAPE '\')`, p))
	}

	q := "SELECT " + itemColumns + " FROM content c"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + order
	if filter.Take > 0 {
		q += " LIMIT " + arg(filter.Take)
	}
	if filter.Skip > 0 {
		q += " OFFSET " + arg(filter.Skip)
	}

	var rows []itemRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, database.Wrap(err, "selecting items")
	}
	return repo.hydrate(ctx, rows)
}

func (repo contentRepository) GetItem(ctx context.Context, typ content.Type, id int) (content.Item, error) {
	var row itemRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+itemColumns+" FROM content c WHERE c.id = $1 AND c.type = $2", id, string(typ))
	if err == sql.ErrNoRows {
		return content.Item{}, content.ErrNotFound
	}
	if err != nil {
		return content.Item{}, database.Wrap(err, "selecting item")
	}

	items, err := repo.hydrate(ctx, []itemRow{row})
	if err != nil {
		return content.Item{}, err
	}
	return items[0], nil
}

func (repo contentRepository) QueryRelatedCandidates(ctx context.Context, q content.RelatednessQuery) ([]content.Item, error) {
	const query = "SELECT " + itemColumns + " FROM content c WHERE c.type = $1 AND c.id <> $2 AND (" +
		"EXISTS (SELECT 1 FROM content_tag ct JOIN tag t ON t.id = ct.tag_id WHERE ct.content_id = c.id AND t.slug = ANY($3)) OR " +
		"EXISTS (SELECT 1 FROM content_technology ct JOIN technology t ON t.id = ct.technology_id WHERE ct.content_id = c.id AND t.slug = ANY($4))" +
		") ORDER BY c.id ASC"

	var rows []itemRow
	err := repo.db.SelectContext(ctx, &rows, query,
		string(q.Type), q.ExcludeID, pq.Array(nonNil(q.TagSlugs)), pq.Array(nonNil(q.TechnologySlugs)))
	if err != nil {
		return nil, database.Wrap(err, "selecting related candidates")
	}
	return repo.hydrate(ctx, rows)
}

// hydrate attaches tags, technologies and levels to the items.
func (repo contentRepository) hydrate(ctx context.Context, rows []itemRow) ([]content.Item, error) {
	items := make([]content.Item, 0, len(rows))
	if len(rows) == 0 {
		return items, nil
	}

	ids := make([]int64, 0, len(rows))
	index := make(map[int]int, len(rows))
	for i, row := range rows {
		items = append(items, row.item())
		ids = append(ids, int64(row.ID))
		index[row.ID] = i
	}

	var tags []taxonomyRow
	err := repo.db.SelectContext(ctx, &tags,
		"SELECT ct.content_id, t.id, t.name, t.slug FROM content_tag ct JOIN tag t ON t.id = ct.tag_id "+
			"WHERE ct.content_id = ANY($1) ORDER BY t.id", pq.Array(ids))
	if err != nil {
		return nil, database.Wrap(err, "selecting item tags")
	}
	for _, t := range tags {
		it := &items[index[t.ContentID]]
		it.Tags = append(it.Tags, content.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}

	var techs []taxonomyRow
	err = repo.db.SelectContext(ctx, &techs,
		"SELECT ct.content_id, t.id, t.name, t.slug FROM content_technology ct JOIN technology t ON t.id = ct.technology_id "+
			"WHERE ct.content_id = ANY($1) ORDER BY t.id", pq.Array(ids))
	if err != nil {
		return nil, database.Wrap(err, "selecting item technologies")
	}
	for _, t := range techs {
		it := &items[index[t.ContentID]]
		it.Technologies = append(it.Technologies, content.Technology{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}

	var levels []taxonomyRow
	err = repo.db.SelectContext(ctx, &levels,
		"SELECT cl.content_id, l.id, l.name, l.slug FROM course_level cl JOIN level l ON l.id = cl.level_id "+
			"WHERE cl.content_id = ANY($1) ORDER BY l.id", pq.Array(ids))
	if err != nil {
		return nil, database.Wrap(err, "selecting item levels")
	}
	for _, l := range levels {
		it := &items[index[l.ContentID]]
		it.Levels = append(it.Levels, content.Level{ID: l.ID, Name: l.Name, Slug: l.Slug})
	}
	return items, nil
}

// QueryTags counts the items of typ using each tag. Tags unused by typ are left out;
// with an empty typ every tag is listed, unused ones with a zero count.
func (repo contentRepository) QueryTags(ctx context.Context, typ content.Type) ([]content.Tag, error) {
	rows, err := repo.queryCounts(ctx, "tag", "content_tag", "tag_id", typ)
	if err != nil {
		return nil, database.Wrap(err, "counting tags")
	}
	tags := make([]content.Tag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, content.Tag{ID: r.ID, Name: r.Name, Slug: r.Slug, Count: r.Count})
	}
	return tags, nil
}

func (repo contentRepository) QueryTechnologies(ctx context.Context, typ content.Type) ([]content.Technology, error) {
	rows, err := repo.queryCounts(ctx, "technology", "content_technology", "technology_id", typ)
	if err != nil {
		return nil, database.Wrap(err, "counting technologies")
	}
	techs := make([]content.Technology, 0, len(rows))
	for _, r := range rows {
		techs = append(techs, content.Technology{ID: r.ID, Name: r.Name, Slug: r.Slug, Count: r.Count})
	}
	return techs, nil
}

func (repo contentRepository) queryCounts(ctx context.Context, table, joinTable, fk string, typ content.Type) ([]countRow, error) {
	var (
		q    string
		args []interface{}
	)
	if typ == "" {
		q = fmt.Sprintf(
			"SELECT x.id, x.name, x.slug, COUNT(DISTINCT j.content_id) AS count FROM %[1]s x "+
				"LEFT JOIN %[2]s j ON j.%[3]s = x.id GROUP BY x.id, x.name, x.slug ORDER BY x.id",
			table, joinTable, fk,
		)
	} else {
		q = fmt.Sprintf(
			"SELECT x.id, x.name, x.slug, COUNT(DISTINCT c.id) AS count FROM %[1]s x "+
				"JOIN %[2]s j ON j.%[3]s = x.id JOIN content c ON c.id = j.content_id "+
				"WHERE c.type = $1 GROUP BY x.id, x.name, x.slug ORDER BY x.id",
			table, joinTable, fk,
		)
		args = append(args, string(typ))
	}
	var rows []countRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo contentRepository) QueryLevels(ctx context.Context) ([]content.Level, error) {
	levels := make([]content.Level, 0)
	if err := repo.db.SelectContext(ctx, &levels, "SELECT id, name, slug FROM level ORDER BY id"); err != nil {
		return nil, database.Wrap(err, "selecting levels")
	}
	return levels, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
