package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "MarketWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Recover converts a handler panic into a 500 HTTPError for the server's
// error handler to render. The stack is logged, never returned.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	log := l.Component("recover")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				log.Error("panic recovered",
					applogger.String("method", c.Request().Method),
					applogger.String("route", c.Path()),
					applogger.Any("panic", r),
					applogger.String("stack", string(debug.Stack())),
				)
				err = echo.NewHTTPError(http.StatusInternalServerError).SetInternal(fmt.Errorf("panic: %v", r))
			}()
			return next(c)
		}
	}
}
