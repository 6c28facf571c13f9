package handlers

import (
	"context"
	"time"

	"evex/pkg/cache"
	"evex/pkg/fetch"
	"evex/pkg/filter"
	"evex/pkg/logger"
	"evex/pkg/middleware"
	"evex/pkg/models"
	"evex/pkg/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const registerLockTTL = 30 * time.Second

// EventView is an event with its register button already worked out.
type EventView struct {
	models.Event
	RegisterLabel    string `json:"register_label"`
	RegisterDisabled bool   `json:"register_disabled"`
}

func views(events []models.Event) []EventView {
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, EventView{
			Event:            e,
			RegisterLabel:    filter.RegisterLabel(e),
			RegisterDisabled: filter.RegisterDisabled(e, false),
		})
	}
	return out
}

type EventsPage struct {
	Events       []EventView     `json:"events"`
	Total        int             `json:"total"`
	Categories   []filter.Option `json:"categories"`
	Universities []filter.Option `json:"universities"`
}

type EventsHandler struct {
	inflight cache.Inflight
	log      *logrus.Entry
}

func NewEvents(inflight cache.Inflight, log logrus.FieldLogger) *EventsHandler {
	if inflight == nil {
		inflight = cache.NewMemory()
	}
	return &EventsHandler{inflight: inflight, log: logger.Component(log, "portal")}
}

// Home shows the first few published events.
func (eh *EventsHandler) Home(c *fiber.Ctx) error {
	set := api(c)
	r := fetch.Load(c.UserContext(), func(ctx context.Context) ([]EventView, error) {
		events, err := set.Events.List(ctx, models.EventQuery{})
		if err != nil {
			return nil, err
		}
		return views(filter.Featured(events, filter.FeaturedCount)), nil
	})
	return render(c, r, "Failed to load events. Please try again.")
}

func (eh *EventsHandler) List(c *fiber.Ctx) error {
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (EventsPage, error) {
		return eh.page(ctx, c, api(c))
	})
	return render(c, r, "Failed to load events. Please try again.")
}

// page loads events and both facet lists together. A facet failure only
// empties its buttons.
func (eh *EventsHandler) page(ctx context.Context, c *fiber.Ctx, set *services.Set) (EventsPage, error) {
	var (
		events []models.Event
		cats   []models.Category
		unis   []models.University
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = set.Events.List(gctx, models.EventQuery{})
		return err
	})
	g.Go(func() error {
		var err error
		if cats, err = set.Catalog.Categories(gctx); err != nil {
			eh.log.WithError(err).Debug("categories unavailable")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if unis, err = set.Catalog.Universities(gctx); err != nil {
			eh.log.WithError(err).Debug("universities unavailable")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return EventsPage{}, err
	}

	shown := filter.Events(events, filter.EventFilter{
		Search:     c.Query("search"),
		Category:   filter.ParseID(c.Query("category")),
		University: filter.ParseID(c.Query("university")),
		Status:     filter.ParseStatus(c.Query("status")),
	})
	return EventsPage{
		Events:       views(shown),
		Total:        len(shown),
		Categories:   filter.CategoryOptions(cats),
		Universities: filter.UniversityOptions(unis),
	}, nil
}

func (eh *EventsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (EventView, error) {
		e, err := api(c).Events.Get(ctx, id)
		if err != nil {
			return EventView{}, err
		}
		return views([]models.Event{e})[0], nil
	})
	return render(c, r, "Failed to load event.")
}

// University is the public page of one host university.
func (eh *EventsHandler) University(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (models.University, error) {
		return api(c).Catalog.University(ctx, id)
	})
	return render(c, r, "")
}

type registerBody struct {
	Force bool `json:"force"`
}

// Register books a seat. A second click while the first is in flight is
// refused rather than sent twice.
func (eh *EventsHandler) Register(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	var body registerBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badJSON(c)
		}
	}

	ctx := c.UserContext()
	key := cache.Key(middleware.SID(c), "register", id)
	token, ok, err := eh.inflight.Acquire(ctx, key, registerLockTTL)
	switch {
	case err != nil:
		eh.log.WithError(err).Warn("inflight guard unavailable")
	case !ok:
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"status": fetch.Failed,
			"error":  "Registration already in progress",
		})
	default:
		defer func() {
			if err := eh.inflight.Release(context.WithoutCancel(ctx), key, token); err != nil {
				eh.log.WithError(err).Debug("release inflight")
			}
		}()
	}

	set := api(c)
	res, err := set.Events.Register(ctx, id, body.Force)
	if err != nil {
		return fail(c, err, "Unable to register for this event.")
	}

	msg := res.Message
	if msg == "" {
		msg = "Registration successful!"
	}
	page, err := eh.page(ctx, c, set)
	if err != nil {
		eh.log.WithError(err).Debug("refetch after register")
	}
	return c.JSON(fiber.Map{
		"status":            fetch.Ready,
		"message":           msg,
		"registration":      res.Status,
		"waitlist_position": res.WaitlistPosition,
		"data":              page,
	})
}

func (eh *EventsHandler) Cancel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	ctx := c.UserContext()
	set := api(c)
	if err := set.Events.Cancel(ctx, id); err != nil {
		return fail(c, err, "Failed to cancel registration. Please try again.")
	}

	page, err := eh.page(ctx, c, set)
	if err != nil {
		eh.log.WithError(err).Debug("refetch after cancel")
	}
	return done(c, "Registration cancelled", page)
}
