package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrorLocalKey holds the internal error a handler chose not to expose in the response body.
const ErrorLocalKey = "handler_error"

// Logger writes one entry per request with request_id, method, path,
// status and latency in milliseconds. 5xx responses log at error level with
// the handler's internal error, 4xx at warn.
func Logger(logger zerolog.Logger) fiber.Handler {
	logger = logger.With().Str("component", "http").Logger()

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = logger.Error()
		case status >= fiber.StatusBadRequest:
			ev = logger.Warn()
		default:
			ev = logger.Info()
		}

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		ev = ev.Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000)
		if herr, ok := c.Locals(ErrorLocalKey).(error); ok {
			ev = ev.AnErr("error", herr)
		} else if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("http_request")

		return err
	}
}
