package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lilypad-dao/lilypad/core"
)

// Level is a user level reached once XP >= MinXP.
type Level struct {
	Number int `json:"number"`
	MinXP  int `json:"min_xp"`
}

// LevelForXP returns the highest level reachable with xp. levels must be sorted by MinXP.
func LevelForXP(levels []Level, xp int) Level {
	var lvl Level
	for _, l := range levels {
		if l.MinXP > xp {
			break
		}
		lvl = l
	}
	return lvl
}

type User struct {
	ID        int       `json:"id"`
	Address   string    `json:"address"` // EIP-55 checksummed
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	ImageURL  string    `json:"image_url"`
	XP        int       `json:"xp"`
	Level     Level     `json:"level"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// UserCourse is the progress of a User on a course.
type UserCourse struct {
	UserID      int        `json:"user_id"`
	CourseID    int        `json:"course_id"`
	Roadmap     bool       `json:"roadmap"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Address  string `json:"address" validate:"required,ethaddr"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum_"`
	Name     string `json:"name" validate:"max=64"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.Address = core.CleanString(nu.Address)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Name = core.CleanString(nu.Name)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if addr, err := ChecksumAddress(nu.Address); err == nil {
		nu.Address = addr
	}
	return svc.CheckUniqueness(nu.Username, nu.Address)
}

// UpdateUser defines what information may be provided to modify a User's profile.
type UpdateUser struct {
	Username string `json:"username" validate:"omitempty,min=3,max=32,alphanum_"`
	Name     string `json:"name" validate:"max=64"`
	Bio      string `json:"bio" validate:"max=500"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc Service) error {
	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}
	uu.Name = core.CleanString(uu.Name)
	uu.Bio = core.CleanString(uu.Bio)
	uu.ImageURL = core.CleanString(uu.ImageURL)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Username, "", origUsr)
}
