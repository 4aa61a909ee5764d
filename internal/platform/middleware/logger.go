package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Logger emits one structured line per request. Failed requests log at
// error level with the handler error attached so a rejected assessment
// save shows up next to its validation message.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logRequest(logger, c, err, time.Since(start))
			return err
		}
	}
}

func logRequest(logger zerolog.Logger, c echo.Context, err error, latency time.Duration) {
	evt := logger.Info()
	if err != nil {
		evt = logger.Error().Err(err)
	}

	rid, _ := c.Get("request_id").(string)
	req := c.Request()
	evt.
		Str("request_id", rid).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", c.Response().Status).
		Int64("bytes_out", c.Response().Size).
		Dur("latency", latency).
		Str("remote_ip", c.RealIP()).
		Msg("request")
}
