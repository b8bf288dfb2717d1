package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/lilypad-dao/lilypad/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) checkUniqueness(username, address string, excludedUsers []user.User) error {
	exclUsrsLen := len(excludedUsers)
	if exclUsrsLen > 1 {
		sort.Slice(excludedUsers, func(i, j int) bool { return excludedUsers[i].ID < excludedUsers[j].ID })
	}

	for _, usr := range repo.query() {
		if isExcluded(usr, excludedUsers, exclUsrsLen) {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if address != "" && usr.Address == address {
			return user.ErrAddressExists
		}
	}
	return nil
}

func (repo *userRepository) CheckUniqueness(_ context.Context, username, address string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.checkUniqueness(username, address, excludedUsers)
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkUniqueness(usr.Username, usr.Address, nil); err != nil {
		return user.User{}, err
	}
	repo.db.pk++
	usr.ID = repo.db.pk
	usr.Level = user.Level{}
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		switch {
		case filter.ID != 0:
			if usr.ID == filter.ID {
				return usr, nil
			}
		case filter.Address != "":
			if usr.Address == filter.Address {
				return usr, nil
			}
		case filter.Username != "":
			if usr.Username == filter.Username {
				return usr, nil
			}
		default:
			return user.User{}, user.ErrNotFound
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save editable fields
	origUsr, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if err := repo.checkUniqueness(usr.Username, "", []user.User{*origUsr}); err != nil {
		return user.User{}, err
	}
	origUsr.Username = usr.Username
	origUsr.Name = usr.Name
	origUsr.Bio = usr.Bio
	origUsr.ImageURL = usr.ImageURL
	origUsr.UpdatedAt = usr.UpdatedAt
	return *origUsr, nil
}

func (repo *userRepository) QueryLevels(_ context.Context) ([]user.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]user.Level{}, repo.db.levels...), nil
}

func (repo *userRepository) QueryUserCourses(_ context.Context, userID int) ([]user.UserCourse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ucs := make([]user.UserCourse, 0)
	for key, uc := range repo.db.courses {
		if key.userID == userID {
			ucs = append(ucs, *uc)
		}
	}
	sort.Slice(ucs, func(i, j int) bool { return ucs[i].CourseID < ucs[j].CourseID })
	return ucs, nil
}

// userCourse returns the row of (userID, courseID), creating it when missing. Must hold the write lock.
func (repo *userRepository) userCourse(userID, courseID int) *user.UserCourse {
	key := userCourseKey{userID: userID, courseID: courseID}
	uc, ok := repo.db.courses[key]
	if !ok {
		uc = &user.UserCourse{UserID: userID, CourseID: courseID}
		repo.db.courses[key] = uc
	}
	return uc
}

func (repo *userRepository) SetRoadmap(_ context.Context, userID, courseID int, roadmap bool) (user.UserCourse, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[userID]; !ok {
		return user.UserCourse{}, user.ErrNotFound
	}
	uc := repo.userCourse(userID, courseID)
	uc.Roadmap = roadmap
	return *uc, nil
}

func (repo *userRepository) CompleteCourse(_ context.Context, userID, courseID, xp int) (user.UserCourse, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[userID]
	if !ok {
		return user.UserCourse{}, false, user.ErrNotFound
	}
	uc := repo.userCourse(userID, courseID)
	if uc.Completed {
		return *uc, false, nil
	}

	now := time.Now().UTC()
	uc.Completed = true
	uc.CompletedAt = &now
	usr.XP += xp
	return *uc, true, nil
}

func isExcluded(usr user.User, excludedUsers []user.User, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.Search(n, func(i int) bool { return excludedUsers[i].ID >= usr.ID })
	return idx < n && excludedUsers[idx].ID == usr.ID
}
