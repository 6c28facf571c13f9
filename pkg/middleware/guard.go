package middleware

import (
	"evex/pkg/guard"
	"evex/pkg/models"
	"evex/pkg/session"

	"github.com/gofiber/fiber/v2"
)

// Resolve settles an Unknown session before the guard looks at it. A
// network failure keeps it Unknown and the guard answers "loading".
func Resolve(c *fiber.Ctx) session.State {
	e := Entry(c)
	if e == nil {
		return session.Anonymous{}
	}
	s, _ := e.Holder.Ensure(c.UserContext())
	return s
}

func RequireRole(area models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return Decide(c, guard.Check(Resolve(c), area))
	}
}

func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return Decide(c, guard.Authenticated(Resolve(c)))
	}
}

func PublicOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return Decide(c, guard.PublicOnly(Resolve(c)))
	}
}

// Decide turns a guard decision into a response, or continues on Allow.
// Redirects to the login page answer 401, others 303 with a Location.
func Decide(c *fiber.Ctx, d guard.Decision) error {
	switch d.Kind {
	case guard.Allow:
		return c.Next()
	case guard.Loading:
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "loading"})
	}
	return Redirect(c, d.Location)
}

func Redirect(c *fiber.Ctx, location string) error {
	if location == guard.LoginPath {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"redirect": location})
	}
	c.Location(location)
	return c.Status(fiber.StatusSeeOther).JSON(fiber.Map{"redirect": location})
}
