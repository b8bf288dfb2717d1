package user

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/lilypad-dao/lilypad/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrAddressExists  = errors.New("a user with this address already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	// GetFilter selects a single User; the first non-zero field is used.
	GetFilter struct {
		ID       int
		Address  string
		Username string
	}

	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrAddressExists when another user (not in excludedUsers) holds them.
		CheckUniqueness(ctx context.Context, username, address string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		QueryLevels(ctx context.Context) ([]Level, error)

		QueryUserCourses(ctx context.Context, userID int) ([]UserCourse, error)
		SetRoadmap(ctx context.Context, userID, courseID int, roadmap bool) (UserCourse, error)
		// CompleteCourse marks the course completed and adds xp to the user, only the first time.
		CompleteCourse(ctx context.Context, userID, courseID, xp int) (uc UserCourse, awarded bool, err error)
	}

	Service interface {
		CheckUniqueness(username, address string, excludedUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByAddress(ctx context.Context, address string) (User, error)
		GetByUsername(ctx context.Context, username string) (User, error)
		UpdateProfile(ctx context.Context, usr User, uu UpdateUser) (User, error)

		Courses(ctx context.Context, userID int) ([]UserCourse, error)
		SetRoadmap(ctx context.Context, userID, courseID int, roadmap bool) (UserCourse, error)
		CompleteCourse(ctx context.Context, userID, courseID int) (UserCourse, error)
	}

	service struct {
		repo        Repository
		logger      core.Logger
		xpPerCourse int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, logger core.Logger, conf *core.Config) Service {
	return &service{
		repo:        repo,
		logger:      logger,
		xpPerCourse: conf.Content.XPPerCourse,
	}
}

func (svc *service) CheckUniqueness(uname, address string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(context.Background(), uname, address, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrAddressExists:
			field = "address"
		default:
			return pkgerrors.Wrap(err, "checking user uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	address, err := ChecksumAddress(nu.Address)
	if err != nil {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "address", Error: err.Error()})
	}
	now := time.Now().UTC()
	usr, err := svc.repo.CreateUser(ctx, User{
		Address:   address,
		Username:  nu.Username,
		Name:      nu.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return User{}, pkgerrors.Wrap(err, "creating user")
	}
	return svc.withLevel(ctx, usr)
}

func (svc *service) get(ctx context.Context, filter GetFilter) (User, error) {
	usr, err := svc.repo.GetUser(ctx, filter)
	if err != nil {
		return User{}, err
	}
	return svc.withLevel(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return svc.get(ctx, GetFilter{ID: id})
}

func (svc *service) GetByAddress(ctx context.Context, address string) (User, error) {
	addr, err := ChecksumAddress(address)
	if err != nil {
		return User{}, ErrNotFound
	}
	return svc.get(ctx, GetFilter{Address: addr})
}

func (svc *service) GetByUsername(ctx context.Context, uname string) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	if uname == "" {
		return User{}, ErrNotFound
	}
	return svc.get(ctx, GetFilter{Username: uname})
}

func (svc *service) UpdateProfile(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	usr.Username = uu.Username
	usr.Name = uu.Name
	usr.Bio = uu.Bio
	usr.ImageURL = uu.ImageURL
	usr.UpdatedAt = time.Now().UTC()

	usr, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, pkgerrors.Wrap(err, "updating user")
	}
	return svc.withLevel(ctx, usr)
}

func (svc *service) Courses(ctx context.Context, userID int) ([]UserCourse, error) {
	ucs, err := svc.repo.QueryUserCourses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying user courses")
	}
	return ucs, nil
}

func (svc *service) SetRoadmap(ctx context.Context, userID, courseID int, roadmap bool) (UserCourse, error) {
	uc, err := svc.repo.SetRoadmap(ctx, userID, courseID, roadmap)
	if err != nil {
		return UserCourse{}, pkgerrors.Wrap(err, "setting roadmap")
	}
	return uc, nil
}

func (svc *service) CompleteCourse(ctx context.Context, userID, courseID int) (UserCourse, error) {
	uc, awarded, err := svc.repo.CompleteCourse(ctx, userID, courseID, svc.xpPerCourse)
	if err != nil {
		return UserCourse{}, pkgerrors.Wrap(err, "completing course")
	}
	if awarded {
		svc.logger.Info("course completed", map[string]interface{}{"user_id": userID, "course_id": courseID, "xp": svc.xpPerCourse})
	}
	return uc, nil
}

func (svc *service) withLevel(ctx context.Context, usr User) (User, error) {
	levels, err := svc.repo.QueryLevels(ctx)
	if err != nil {
		return User{}, pkgerrors.Wrap(err, "querying levels")
	}
	usr.Level = LevelForXP(levels, usr.XP)
	return usr, nil
}
