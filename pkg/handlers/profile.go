package handlers

import (
	"evex/pkg/fetch"
	"evex/pkg/forms"
	"evex/pkg/logger"
	"evex/pkg/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProfileHandler serves every role's own account page.
type ProfileHandler struct {
	log *logrus.Entry
}

func NewProfile(log logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{log: logger.Component(log, "portal")}
}

func (ph *ProfileHandler) Get(c *fiber.Ctx) error {
	u, ok := holder(c).User()
	if !ok {
		return fail(c, fiber.ErrUnauthorized, "")
	}
	return c.JSON(fetch.Done(u))
}

func (ph *ProfileHandler) Update(c *fiber.Ctx) error {
	var patch models.ProfileUpdate
	if err := c.BodyParser(&patch); err != nil {
		return badJSON(c)
	}
	patch, err := forms.Profile(patch)
	if err != nil {
		return fail(c, err, "")
	}

	ctx := c.UserContext()
	if _, err := api(c).Profile.Update(ctx, patch); err != nil {
		return fail(c, err, "Error updating profile. Please try again.")
	}

	h := holder(c)
	if _, err := h.Refresh(ctx); err != nil {
		ph.log.WithError(err).Debug("reload user after profile update")
	}
	u, _ := h.User()
	return done(c, "Profile updated successfully!", u)
}

func (ph *ProfileHandler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := api(c).Profile.DeleteMe(ctx); err != nil {
		return fail(c, err, "Failed to delete account. Please try again.")
	}
	if err := holder(c).Logout(ctx); err != nil {
		ph.log.WithError(err).Warn("logout after account deletion")
	}
	return c.JSON(fiber.Map{
		"status":   fetch.Ready,
		"message":  "Your account has been successfully deleted.",
		"redirect": "/",
	})
}
