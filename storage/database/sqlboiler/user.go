package boiledrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/user"
	"github.com/lilypad-dao/lilypad/storage/database"
)

const (
	userColumns       = "id, address, username, name, bio, image_url, xp, created_at, updated_at"
	userCourseColumns = "user_id, course_id, roadmap, completed, completed_at"
)

type (
	userRepository struct {
		db core.DB
	}

	userRow struct {
		ID        int         `boil:"id"`
		Address   string      `boil:"address"`
		Username  string      `boil:"username"`
		Name      null.String `boil:"name"`
		Bio       null.String `boil:"bio"`
		ImageURL  null.String `boil:"image_url"`
		XP        int         `boil:"xp"`
		CreatedAt time.Time   `boil:"created_at"`
		UpdatedAt time.Time   `boil:"updated_at"`
	}

	userCourseRow struct {
		UserID      int       `boil:"user_id"`
		CourseID    int       `boil:"course_id"`
		Roadmap     bool      `boil:"roadmap"`
		Completed   bool      `boil:"completed"`
		CompletedAt null.Time `boil:"completed_at"`
	}

	levelRow struct {
		Number int `boil:"number"`
		MinXP  int `boil:"min_xp"`
	}
)

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) *userRepository {
	return &userRepository{db: db}
}

func (row userRow) unboil() user.User {
	return user.User{
		ID:        row.ID,
		Address:   row.Address,
		Username:  row.Username,
		Name:      row.Name.String,
		Bio:       row.Bio.String,
		ImageURL:  row.ImageURL.String,
		XP:        row.XP,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func (row userCourseRow) unboil() user.UserCourse {
	uc := user.UserCourse{
		UserID:    row.UserID,
		CourseID:  row.CourseID,
		Roadmap:   row.Roadmap,
		Completed: row.Completed,
	}
	if row.CompletedAt.Valid {
		t := row.CompletedAt.Time.UTC()
		uc.CompletedAt = &t
	}
	return uc
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return database.Wrap(err, msg)
}

func (repo userRepository) CheckUniqueness(ctx context.Context, username, address string, excludedUsers ...user.User) error {
	ids := make([]int64, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, int64(u.ID))
	}

	var found []userRow
	err := queries.Raw(
		"SELECT "+userColumns+" FROM app_user WHERE (username = $1 OR address = $2) AND NOT (id = ANY($3)) ORDER BY id",
		username, address, pq.Array(ids),
	).Bind(ctx, repo.db, &found)
	if err != nil {
		return database.Wrap(err, "checking user uniqueness")
	}
	for _, u := range found {
		if username != "" && u.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(found) > 0 && address != "" {
		return user.ErrAddressExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	err := queries.Raw(
		"INSERT INTO app_user (address, username, name, bio, image_url, xp, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING "+userColumns,
		usr.Address, usr.Username, usr.Name, usr.Bio, usr.ImageURL, usr.XP, usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(),
	).Bind(ctx, repo.db, &row)
	if err != nil {
		return user.User{}, database.Wrap(err, "inserting user")
	}
	return row.unboil(), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		where string
		arg   interface{}
	)
	switch {
	case filter.ID != 0:
		where, arg = "id = $1", filter.ID
	case filter.Address != "":
		where, arg = "address = $1", filter.Address
	case filter.Username != "":
		where, arg = "username = $1", filter.Username
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	err := queries.Raw("SELECT "+userColumns+" FROM app_user WHERE "+where, arg).Bind(ctx, repo.db, &row)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "selecting user")
	}
	return row.unboil(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	err := queries.Raw(
		"UPDATE app_user SET username = $2, name = $3, bio = $4, image_url = $5, updated_at = $6 WHERE id = $1 RETURNING "+userColumns,
		usr.ID, usr.Username, usr.Name, usr.Bio, usr.ImageURL, usr.UpdatedAt.UTC(),
	).Bind(ctx, repo.db, &row)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return row.unboil(), nil
}

func (repo userRepository) QueryLevels(ctx context.Context) ([]user.Level, error) {
	var rows []levelRow
	if err := queries.Raw("SELECT number, min_xp FROM user_level ORDER BY min_xp").Bind(ctx, repo.db, &rows); err != nil {
		return nil, database.Wrap(err, "selecting user levels")
	}
	levels := make([]user.Level, 0, len(rows))
	for _, r := range rows {
		levels = append(levels, user.Level{Number: r.Number, MinXP: r.MinXP})
	}
	return levels, nil
}

func (repo userRepository) QueryUserCourses(ctx context.Context, userID int) ([]user.UserCourse, error) {
	var rows []userCourseRow
	err := queries.Raw("SELECT "+userCourseColumns+" FROM user_course WHERE user_id = $1 ORDER BY course_id", userID).
		Bind(ctx, repo.db, &rows)
	if err != nil {
		return nil, database.Wrap(err, "selecting user courses")
	}
	ucs := make([]user.UserCourse, 0, len(rows))
	for _, r := range rows {
		ucs = append(ucs, r.unboil())
	}
	return ucs, nil
}

func (repo userRepository) SetRoadmap(ctx context.Context, userID, courseID int, roadmap bool) (user.UserCourse, error) {
	var row userCourseRow
	err := queries.Raw(
		"INSERT INTO user_course (user_id, course_id, roadmap) VALUES ($1, $2, $3) "+
			"ON CONFLICT (user_id, course_id) DO UPDATE SET roadmap = EXCLUDED.roadmap RETURNING "+userCourseColumns,
		userID, courseID, roadmap,
	).Bind(ctx, repo.db, &row)
	if err != nil {
		return user.UserCourse{}, database.Wrap(err, "upserting user course")
	}
	return row.unboil(), nil
}

// CompleteCourse runs in a transaction: the course is flagged and the user's xp is raised only when
// the course was not completed yet.
func (repo userRepository) CompleteCourse(ctx context.Context, userID, courseID, xp int) (uc user.UserCourse, awarded bool, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return user.UserCourse{}, false, database.Wrap(err, "starting transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var rows []userCourseRow
	err = queries.Raw(
		"INSERT INTO user_course (user_id, course_id, completed, completed_at) VALUES ($1, $2, TRUE, $3) "+
			"ON CONFLICT (user_id, course_id) DO UPDATE SET completed = TRUE, completed_at = EXCLUDED.completed_at "+
			"WHERE user_course.completed = FALSE RETURNING "+userCourseColumns,
		userID, courseID, time.Now().UTC(),
	).Bind(ctx, tx, &rows)
	if err != nil {
		return user.UserCourse{}, false, database.Wrap(err, "completing user course")
	}

	if len(rows) == 0 { // already completed
		var row userCourseRow
		err = queries.Raw("SELECT "+userCourseColumns+" FROM user_course WHERE user_id = $1 AND course_id = $2", userID, courseID).
			Bind(ctx, tx, &row)
		if err != nil {
			return user.UserCourse{}, false, database.Wrap(err, "selecting user course")
		}
		if err = tx.Commit(); err != nil {
			return user.UserCourse{}, false, database.Wrap(err, "committing transaction")
		}
		return row.unboil(), false, nil
	}

	res, err := queries.Raw("UPDATE app_user SET xp = xp + $1 WHERE id = $2", xp, userID).ExecContext(ctx, tx)
	if err != nil {
		return user.UserCourse{}, false, database.Wrap(err, "awarding xp")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = user.ErrNotFound
		return user.UserCourse{}, false, err
	}
	if err = tx.Commit(); err != nil {
		return user.UserCourse{}, false, database.Wrap(err, "committing transaction")
	}
	return rows[0].unboil(), true, nil
}
