package handlers

import (
	"context"

	"evex/pkg/fetch"
	"evex/pkg/filter"
	"evex/pkg/forms"
	"evex/pkg/logger"
	"evex/pkg/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type OrganizerHandler struct {
	log *logrus.Entry
}

func NewOrganizer(log logrus.FieldLogger) *OrganizerHandler {
	return &OrganizerHandler{log: logger.Component(log, "portal")}
}

func (oh *OrganizerHandler) Dashboard(c *fiber.Ctx) error {
	set := api(c)
	return render(c, fetch.Load(c.UserContext(), set.Organizer.Dashboard), "Unable to load dashboard data.")
}

func (oh *OrganizerHandler) Analytics(c *fiber.Ctx) error {
	set := api(c)
	return render(c, fetch.Load(c.UserContext(), set.Organizer.Analytics), "Failed to load analytics.")
}

type OrganizerEvents struct {
	Events []models.Event    `json:"events"`
	Stats  filter.EventStats `json:"stats"`
}

func (oh *OrganizerHandler) Events(c *fiber.Ctx) error {
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (OrganizerEvents, error) {
		events, err := api(c).Organizer.Events(ctx)
		if err != nil {
			return OrganizerEvents{}, err
		}
		return OrganizerEvents{
			Events: filter.Events(events, filter.EventFilter{
				Search: c.Query("search"),
				Scope:  filter.ScopeTitle,
				Status: filter.ParseStatus(c.Query("status")),
			}),
			Stats: filter.Stats(events),
		}, nil
	})
	return render(c, r, "Failed to load events. Please try again.")
}

// EventForm holds the choices offered by the create-event page.
type EventForm struct {
	Categories   []string            `json:"categories"`
	Venues       []models.Venue      `json:"venues"`
	Universities []models.University `json:"universities"`
}

// NewEvent loads the create-event choices. A failed lookup only empties its list.
func (oh *OrganizerHandler) NewEvent(c *fiber.Ctx) error {
	set := api(c)
	form := EventForm{
		Categories:   forms.Categories,
		Venues:       []models.Venue{},
		Universities: []models.University{},
	}

	g, gctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		if venues, err := set.Catalog.Venues(gctx); err != nil {
			oh.log.WithError(err).Debug("venues unavailable")
		} else {
			form.Venues = venues
		}
		return nil
	})
	g.Go(func() error {
		if unis, err := set.Catalog.Universities(gctx); err != nil {
			oh.log.WithError(err).Debug("universities unavailable")
		} else {
			form.Universities = unis
		}
		return nil
	})
	_ = g.Wait()

	return c.JSON(fetch.Done(form))
}

func (oh *OrganizerHandler) Event(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (models.Event, error) {
		return api(c).Organizer.Event(ctx, id)
	})
	return render(c, r, "Failed to load event details.")
}

func (oh *OrganizerHandler) CreateEvent(c *fiber.Ctx) error {
	var in models.EventInput
	if err := c.BodyParser(&in); err != nil {
		return badJSON(c)
	}
	in, err := forms.Event(in)
	if err != nil {
		return fail(c, err, "")
	}

	e, err := api(c).Organizer.CreateEvent(c.UserContext(), in)
	if err != nil {
		return fail(c, err, "Failed to create event. Please try again.")
	}

	msg := "Draft saved successfully."
	if in.Status == models.EventPublished {
		msg = "Event published successfully!"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": fetch.Ready, "message": msg, "data": e})
}

func (oh *OrganizerHandler) UpdateEvent(c *fiber.Ctx) error {
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

	e, err := api(c).Organizer.UpdateEvent(c.UserContext(), id, patch)
	if err != nil {
		return fail(c, err, "Failed to update event. Please try again.")
	}
	return done(c, "Event updated successfully!", e)
}

func (oh *OrganizerHandler) Attendance(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	r := fetch.Load(c.UserContext(), func(ctx context.Context) ([]models.Attendance, error) {
		rows, err := api(c).Organizer.Attendance(ctx, id)
		return filter.Attendance(rows, c.Query("search")), err
	})
	return render(c, r, "Failed to load event details.")
}

func (oh *OrganizerHandler) MarkAttendance(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	var req models.MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	req, err = forms.Attendance(req)
	if err != nil {
		return fail(c, err, "")
	}

	ctx := c.UserContext()
	set := api(c)
	if err := set.Organizer.MarkAttendance(ctx, id, req); err != nil {
		return fail(c, err, "Failed to mark attendance")
	}
	rows, err := set.Organizer.Attendance(ctx, id)
	if err != nil {
		oh.log.WithError(err).Debug("refetch attendance")
	}
	return done(c, "Attendance marked", rows)
}

func (oh *OrganizerHandler) Registrations(c *fiber.Ctx) error {
	r := fetch.Load(c.UserContext(), func(ctx context.Context) ([]models.EventRegistrations, error) {
		groups, err := api(c).Organizer.Registrations(ctx)
		if err != nil {
			return nil, err
		}
		search := c.Query("search")
		for i := range groups {
			groups[i].Registrations = filter.Registrants(groups[i].Registrations, search)
		}
		return groups, nil
	})
	return render(c, r, "Failed to load events. Please try again.")
}
