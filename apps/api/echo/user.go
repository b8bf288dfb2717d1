package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/core/user"
)

type userApi struct {
	svc        user.Service
	contentSvc content.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc user.Service,
	contentSvc content.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := userApi{
		svc:        svc,
		contentSvc: contentSvc,
		validate:   validate,
		translator: translator,
	}

	// public profiles
	ug := g.Group("/users")
	ug.GET("/by-address/:address", api.retrieveByAddress)
	ug.GET("/:username", api.retrieveByUsername)

	// authed endpoints
	mg := g.Group("/me", jwt, ctxUserMiddleware(svc))
	mg.GET("", api.retrieveMe)
	mg.PUT("", api.updateMe)
	mg.GET("/courses", api.queryCourses)
	mg.PUT("/courses/:id/roadmap", api.addToRoadmap)
	mg.DELETE("/courses/:id/roadmap", api.removeFromRoadmap)
	mg.POST("/courses/:id/complete", api.completeCourse)
}

// Handlers

func (api *userApi) retrieveByAddress(ctx echo.Context) error {
	usr, err := api.svc.GetByAddress(ctx.Request().Context(), ctx.Param("address"))
	if err != nil {
		return errors.Wrap(err, "finding user by address")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieveByUsername(ctx echo.Context) error {
	usr, err := api.svc.GetByUsername(ctx.Request().Context(), ctx.Param("username"))
	if err != nil {
		return errors.Wrap(err, "finding user by username")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieveMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateMe(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(usr, api.validate, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.UpdateProfile(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) queryCourses(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ucs, err := api.svc.Courses(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying user courses")
	}
	return ctx.JSON(http.StatusOK, ucs)
}

func (api *userApi) addToRoadmap(ctx echo.Context) error {
	return api.setRoadmap(ctx, true)
}

func (api *userApi) removeFromRoadmap(ctx echo.Context) error {
	return api.setRoadmap(ctx, false)
}

func (api *userApi) setRoadmap(ctx echo.Context, roadmap bool) error {
	usr, course, err := api.contextUserAndCourse(ctx)
	if err != nil {
		return err
	}
	uc, err := api.svc.SetRoadmap(ctx.Request().Context(), usr.ID, course.ID, roadmap)
	if err != nil {
		return errors.Wrap(err, "setting roadmap")
	}
	return ctx.JSON(http.StatusOK, uc)
}

func (api *userApi) completeCourse(ctx echo.Context) error {
	usr, course, err := api.contextUserAndCourse(ctx)
	if err != nil {
		return err
	}
	uc, err := api.svc.CompleteCourse(ctx.Request().Context(), usr.ID, course.ID)
	if err != nil {
		return errors.Wrap(err, "completing course")
	}
	return ctx.JSON(http.StatusOK, uc)
}

func (api *userApi) contextUserAndCourse(ctx echo.Context) (user.User, content.Item, error) {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return user.User{}, content.Item{}, errors.Wrap(err, "getting context user")
	}
	id, err := pathID(ctx)
	if err != nil {
		return user.User{}, content.Item{}, err
	}
	course, err := api.contentSvc.Get(ctx.Request().Context(), content.TypeCourse, id)
	if err != nil {
		return user.User{}, content.Item{}, errors.Wrap(err, "finding course")
	}
	return usr, course, nil
}
