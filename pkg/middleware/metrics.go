package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

type RequestTracker interface {
	TrackPortalRequest(route string, status int, elapsed time.Duration)
}

// Metrics records each request under its route pattern, not its raw path.
func Metrics(t RequestTracker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		t.TrackPortalRequest(c.Route().Path, status, time.Since(start))
		return err
	}
}
