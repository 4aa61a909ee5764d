package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recovery converts a panicking handler into a 500 response. Assessment
// saves run inside a transaction, so any rollback has already happened by
// the time the panic reaches here; all that is left is to log it and keep
// the worker alive.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logPanic(logger, c, r)
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
			}()
			return next(c)
		}
	}
}

func logPanic(logger zerolog.Logger, c echo.Context, r interface{}) {
	rid, _ := c.Get("request_id").(string)
	logger.Error().
		Str("request_id", rid).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Str("panic", fmt.Sprintf("%v", r)).
		Bytes("stack", debug.Stack()).
		Msg("panic recovered")
}
