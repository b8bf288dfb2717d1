package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
)

var itemOrderingFields = []string{"id", "title", "created_at"}

type contentApi struct {
	svc          content.Service
	validate     *validator.Validate
	relatedLimit int
}

func registerContentAPI(g *echo.Group, svc content.Service, validate *validator.Validate, conf *core.Config) {
	api := contentApi{
		svc:          svc,
		validate:     validate,
		relatedLimit: conf.Content.RelatedLimit,
	}

	for prefix, typ := range map[string]content.Type{
		"/courses":   content.TypeCourse,
		"/resources": content.TypeResource,
		"/projects":  content.TypeProject,
	} {
		tg := g.Group(prefix)
		tg.GET("", func(ctx echo.Context) error { return api.query(ctx, typ) })
		tg.GET("/:id", func(ctx echo.Context) error { return api.retrieve(ctx, typ) })
		tg.GET("/:id/related", func(ctx echo.Context) error { return api.relatedTo(ctx, typ, typ) })
	}
	g.GET("/courses/:id/related-resources", func(ctx echo.Context) error {
		return api.relatedTo(ctx, content.TypeCourse, content.TypeResource)
	})
	g.GET("/related", api.related)
}

// Handlers

func (api *contentApi) query(ctx echo.Context, typ content.Type) error {
	var filter content.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Type = typ
	if err := filter.Validate(api.validate); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, itemOrderingFields...)

	items, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying items")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *contentApi) retrieve(ctx echo.Context, typ content.Type) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	it, err := api.svc.Get(ctx.Request().Context(), typ, id)
	if err != nil {
		return errors.Wrap(err, "finding item")
	}
	return ctx.JSON(http.StatusOK, it)
}

// relatedTo lists the items of type `typ` related to the `srcType` item in the path.
func (api *contentApi) relatedTo(ctx echo.Context, srcType, typ content.Type) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	src, err := api.svc.Get(ctx.Request().Context(), srcType, id)
	if err != nil {
		return errors.Wrap(err, "finding item")
	}
	items, err := api.svc.RelatedTo(ctx.Request().Context(), src, typ, api.relatedLimit)
	if err != nil {
		return errors.Wrap(err, "resolving related items")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *contentApi) related(ctx echo.Context) error {
	var q content.RelatednessQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to RelatednessQuery")
	}
	if err := q.Validate(api.validate); err != nil {
		return err
	}
	take, err := queryInt(ctx, "take", api.relatedLimit)
	if err != nil {
		return err
	}

	items, err := api.svc.Related(ctx.Request().Context(), q, take)
	if err != nil {
		return errors.Wrap(err, "resolving related items")
	}
	return ctx.JSON(http.StatusOK, items)
}
