package handlers

import (
	"context"

	"evex/pkg/fetch"
	"evex/pkg/filter"
	"evex/pkg/forms"
	"evex/pkg/logger"
	"evex/pkg/models"
	"evex/pkg/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	log *logrus.Entry
}

func NewAdmin(log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{log: logger.Component(log, "portal")}
}

func (ah *AdminHandler) Analytics(c *fiber.Ctx) error {
	set := api(c)
	return render(c, fetch.Load(c.UserContext(), set.Admin.Analytics), "Failed to load analytics.")
}

// AdminEvents carries counters taken before the search narrows the list.
type AdminEvents struct {
	Events []models.Event    `json:"events"`
	Stats  filter.EventStats `json:"stats"`
}

func (ah *AdminHandler) Events(c *fiber.Ctx) error {
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (AdminEvents, error) {
		return adminEvents(ctx, c, api(c))
	})
	return render(c, r, "Failed to load events. Please try again.")
}

func adminEvents(ctx context.Context, c *fiber.Ctx, set *services.Set) (AdminEvents, error) {
	events, err := set.Admin.Events(ctx, filter.ParseID(c.Query("university")), filter.ParseStatus(c.Query("status")))
	if err != nil {
		return AdminEvents{}, err
	}
	return AdminEvents{
		Events: filter.Events(events, filter.EventFilter{Search: c.Query("search"), Scope: filter.ScopeCatalog}),
		Stats:  filter.Stats(events),
	}, nil
}

func (ah *AdminHandler) Event(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (models.Event, error) {
		return api(c).Admin.Event(ctx, id)
	})
	return render(c, r, "Failed to load event.")
}

func (ah *AdminHandler) UpdateEvent(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	var patch models.EventUpdate
	if err := c.BodyParser(&patch); err != nil {
		return badJSON(c)
	}
	if err := forms.Struct(&patch); err != nil {
		return fail(c, err, "")
	}

	ctx := c.UserContext()
	set := api(c)
	if _, err := set.Admin.UpdateEvent(ctx, id, patch); err != nil {
		return fail(c, err, "Failed to update event status")
	}
	list, err := adminEvents(ctx, c, set)
	if err != nil {
		ah.log.WithError(err).Debug("refetch events")
	}
	return done(c, "Event updated", list)
}

func (ah *AdminHandler) DeleteEvent(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	ctx := c.UserContext()
	set := api(c)
	if err := set.Admin.DeleteEvent(ctx, id); err != nil {
		return fail(c, err, "Failed to delete event")
	}
	list, err := adminEvents(ctx, c, set)
	if err != nil {
		ah.log.WithError(err).Debug("refetch events")
	}
	return done(c, "Event deleted", list)
}

func (ah *AdminHandler) Users(c *fiber.Ctx) error {
	r := fetch.Load(c.UserContext(), func(ctx context.Context) ([]models.User, error) {
		return adminUsers(ctx, c, api(c))
	})
	return render(c, r, "")
}

func adminUsers(ctx context.Context, c *fiber.Ctx, set *services.Set) ([]models.User, error) {
	users, err := set.Admin.Users(ctx, nil)
	if err != nil {
		return nil, err
	}
	role := models.Role(filter.ParseStatus(c.Query("role")))
	if !role.Valid() {
		role = models.RoleAnonymous
	}
	return filter.Users(users, c.Query("search"), role), nil
}

func (ah *AdminHandler) User(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (models.User, error) {
		return api(c).Admin.User(ctx, id)
	})
	return render(c, r, "")
}

func (ah *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	var patch models.UserUpdate
	if err := c.BodyParser(&patch); err != nil {
		return badJSON(c)
	}
	if err := forms.Struct(&patch); err != nil {
		return fail(c, err, "")
	}

	u, err := api(c).Admin.UpdateUser(c.UserContext(), id, patch)
	if err != nil {
		return fail(c, err, "Failed to update user")
	}
	return done(c, "User updated", u)
}

func (ah *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	ctx := c.UserContext()
	set := api(c)
	if err := set.Admin.DeleteUser(ctx, id); err != nil {
		return fail(c, err, "Failed to delete user")
	}
	users, err := adminUsers(ctx, c, set)
	if err != nil {
		ah.log.WithError(err).Debug("refetch users")
	}
	return done(c, "User deleted", users)
}

func (ah *AdminHandler) Universities(c *fiber.Ctx) error {
	r := fetch.Load(c.UserContext(), func(ctx context.Context) ([]models.University, error) {
		unis, err := api(c).Admin.Universities(ctx)
		return filter.Universities(unis, c.Query("search")), err
	})
	return render(c, r, "")
}

func (ah *AdminHandler) University(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (models.University, error) {
		return api(c).Admin.University(ctx, id)
	})
	return render(c, r, "")
}

func (ah *AdminHandler) CreateUniversity(c *fiber.Ctx) error {
	var u models.University
	if err := c.BodyParser(&u); err != nil {
		return badJSON(c)
	}
	u, err := forms.University(u)
	if err != nil {
		return fail(c, err, "")
	}

	ctx := c.UserContext()
	set := api(c)
	if _, err := set.Admin.CreateUniversity(ctx, u); err != nil {
		return fail(c, err, "Failed to create university")
	}
	unis, err := set.Admin.Universities(ctx)
	if err != nil {
		ah.log.WithError(err).Debug("refetch universities")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": fetch.Ready, "message": "University created", "data": unis})
}

func (ah *AdminHandler) UpdateUniversity(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	var patch map[string]any
	if err := c.BodyParser(&patch); err != nil {
		return badJSON(c)
	}

	ctx := c.UserContext()
	set := api(c)
	if _, err := set.Admin.UpdateUniversity(ctx, id, patch); err != nil {
		return fail(c, err, "Failed to update university")
	}
	unis, err := set.Admin.Universities(ctx)
	if err != nil {
		ah.log.WithError(err).Debug("refetch universities")
	}
	return done(c, "University updated", unis)
}

func (ah *AdminHandler) DeleteUniversity(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	ctx := c.UserContext()
	set := api(c)
	if err := set.Admin.DeleteUniversity(ctx, id); err != nil {
		return fail(c, err, "Failed to delete university")
	}
	unis, err := set.Admin.Universities(ctx)
	if err != nil {
		ah.log.WithError(err).Debug("refetch universities")
	}
	return done(c, "University deleted", unis)
}
