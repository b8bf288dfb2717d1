package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lilypad-dao/lilypad/core/treasury"
)

func registerTreasuryAPI(g *echo.Group, svc treasury.Service) {
	g.GET("/treasury", func(ctx echo.Context) error {
		val, err := svc.Value(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "reading treasury value")
		}
		return ctx.JSON(http.StatusOK, val)
	})
}
