package handlers

import (
	"errors"
	"strconv"

	"evex/pkg/apiclient"
	"evex/pkg/fetch"
	"evex/pkg/forms"
	"evex/pkg/guard"
	"evex/pkg/middleware"
	"evex/pkg/services"
	"evex/pkg/session"

	"github.com/gofiber/fiber/v2"
)

func api(c *fiber.Ctx) *services.Set {
	return middleware.Entry(c).API
}

func holder(c *fiber.Ctx) *session.Holder {
	return middleware.Entry(c).Holder
}

// statusOf maps a page error onto the portal's own status code.
func statusOf(err error) int {
	var (
		ferrs  forms.Errors
		clash  *services.ClashError
		apiErr *apiclient.APIError
	)
	switch {
	case errors.As(err, &ferrs):
		return fiber.StatusBadRequest
	case errors.As(err, &clash):
		return fiber.StatusConflict
	case errors.Is(err, apiclient.ErrAuthExpired):
		return fiber.StatusUnauthorized
	case errors.As(err, &apiErr):
		return apiErr.Status
	case errors.Is(err, apiclient.ErrNetwork):
		return fiber.StatusBadGateway
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// fail renders err the way a page shows it. fallback replaces upstream
// errors that carry no message of their own; empty means the generic text.
func fail(c *fiber.Ctx, err error, fallback string) error {
	msg := fetch.Message(err)
	if fallback != "" {
		msg = fetch.Or(err, fallback)
	}
	body := fiber.Map{"status": fetch.Failed, "error": msg}

	var (
		ferrs forms.Errors
		clash *services.ClashError
		fe    *fiber.Error
	)
	switch {
	case errors.As(err, &ferrs):
		body["error"] = ferrs.Message()
		body["fields"] = ferrs.Map()
	case errors.As(err, &clash):
		body["error"] = fetch.Message(err)
		body["clash"] = true
		body["clashing_events"] = clash.Events
	case errors.Is(err, apiclient.ErrAuthExpired):
		body["redirect"] = guard.LoginPath
	case errors.As(err, &fe):
		body["error"] = fe.Message
	}
	return c.Status(statusOf(err)).JSON(body)
}

func render[T any](c *fiber.Ctx, r fetch.Result[T], fallback string) error {
	if !r.Ok() {
		return fail(c, r.Err, fallback)
	}
	return c.JSON(r)
}

// done answers a mutation with its message and the re-fetched data.
func done(c *fiber.Ctx, msg string, data any) error {
	return c.JSON(fiber.Map{"status": fetch.Ready, "message": msg, "data": data})
}

func badJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": fetch.Failed, "error": "invalid JSON"})
}

func idParam(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
