package http

import (
	xutil "MarketWatch/pkg/util"

	"github.com/labstack/echo/v4"
)

// QueryBool reads a boolean query parameter, falling back to def.
func QueryBool(c echo.Context, name string, def bool) bool {
	return xutil.ParseBoolDefault(c.QueryParam(name), def)
}
