package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

var quietPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// Audit emits one structured log line per request. Health and scrape paths
// are logged at debug level.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("ip", c.IP()),
		}
		if requestID, _ := c.Locals(requestIDHeader).(string); requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}

		switch {
		case err != nil && status >= fiber.StatusInternalServerError:
			logger.Error("request completed", append(attrs, slog.Any("error", err))...)
		case err != nil:
			logger.Warn("request completed", append(attrs, slog.Any("error", err))...)
		case quietPaths[c.Path()]:
			logger.Debug("request completed", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
		return err
	}
}
