package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
)

type (
	taxonomyApi struct {
		svc         content.Service
		filtersTopN int
	}

	// FilterResponse is a ranked filter with the browse path segment it links to.
	FilterResponse struct {
		content.Filter
		Segment string `json:"segment"`
	}
)

func registerTaxonomyAPI(g *echo.Group, svc content.Service, conf *core.Config) {
	api := taxonomyApi{svc: svc, filtersTopN: conf.Content.HomepageFilters}

	g.GET("/tags", api.queryTags)
	g.GET("/technologies", api.queryTechnologies)
	g.GET("/levels", api.queryLevels)
	g.GET("/filters", api.queryFilters)
}

// Handlers

func (api *taxonomyApi) queryTags(ctx echo.Context) error {
	typ, err := queryType(ctx)
	if err != nil {
		return err
	}
	tags, err := api.svc.Tags(ctx.Request().Context(), typ)
	if err != nil {
		return errors.Wrap(err, "querying tags")
	}
	return ctx.JSON(http.StatusOK, tags)
}

func (api *taxonomyApi) queryTechnologies(ctx echo.Context) error {
	typ, err := queryType(ctx)
	if err != nil {
		return err
	}
	techs, err := api.svc.Technologies(ctx.Request().Context(), typ)
	if err != nil {
		return errors.Wrap(err, "querying technologies")
	}
	return ctx.JSON(http.StatusOK, techs)
}

func (api *taxonomyApi) queryLevels(ctx echo.Context) error {
	levels, err := api.svc.Levels(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying levels")
	}
	return ctx.JSON(http.StatusOK, levels)
}

func (api *taxonomyApi) queryFilters(ctx echo.Context) error {
	typ, err := queryType(ctx)
	if err != nil {
		return err
	}
	top, err := queryInt(ctx, "top", api.filtersTopN)
	if err != nil {
		return err
	}

	filters, err := api.svc.Filters(ctx.Request().Context(), typ, top)
	if err != nil {
		return errors.Wrap(err, "ranking filters")
	}
	resp := make([]FilterResponse, 0, len(filters))
	for _, f := range filters {
		resp = append(resp, FilterResponse{Filter: f, Segment: f.BrowseSegment()})
	}
	return ctx.JSON(http.StatusOK, resp)
}
