package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=title,-created_at`. Fields outside allowed are ignored.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if !isAllowed(field, allowed) {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func isAllowed(field string, allowed []string) bool {
	for _, a := range allowed {
		if field == a {
			return true
		}
	}
	return false
}

// pathID parses the `:id` path param; anything but a positive integer is not found.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryInt parses an optional integer query param.
func queryInt(ctx echo.Context, name string, dflt int) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return dflt, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewArgumentError(name, "must be an integer")
	}
	return n, nil
}

func queryType(ctx echo.Context) (content.Type, error) {
	return content.ParseType(ctx.QueryParam("type"))
}
