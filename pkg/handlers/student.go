package handlers

import (
	"context"
	"time"

	"evex/pkg/fetch"
	"evex/pkg/filter"
	"evex/pkg/forms"
	"evex/pkg/logger"
	"evex/pkg/models"
	"evex/pkg/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type StudentHandler struct {
	log *logrus.Entry
}

func NewStudent(log logrus.FieldLogger) *StudentHandler {
	return &StudentHandler{log: logger.Component(log, "portal")}
}

// Overview falls back to counting the registration list when the overview
// endpoint fails.
func (sh *StudentHandler) Overview(c *fiber.Ctx) error {
	set := api(c)
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (models.StudentOverview, error) {
		ov, err := set.Profile.StudentOverview(ctx)
		if err != nil {
			regs, ferr := set.Profile.Registrations(ctx)
			if ferr != nil {
				return models.StudentOverview{}, err
			}
			sh.log.WithError(err).Debug("overview unavailable, counting registrations")
			return models.StudentOverview{
				RecentActivities: []map[string]any{},
				Stats:            filter.Overview(regs, time.Now()),
			}, nil
		}

		if ov.RecentActivities == nil {
			ov.RecentActivities = []map[string]any{}
		}
		if ov.Stats.AttendanceRate == "" {
			ov.Stats.AttendanceRate = "0%"
		}
		ov.Stats.HoursEngaged = ov.Stats.EventsAttended * filter.HoursPerEvent
		return ov, nil
	})
	return render(c, r, "Unable to load dashboard data.")
}

// MyEvents is the one paginated listing: cancelled rows are hidden, then
// search and status apply, then the page is clamped.
func (sh *StudentHandler) MyEvents(c *fiber.Ctx) error {
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (filter.Page[models.Registration], error) {
		return sh.myEvents(ctx, c, api(c))
	})
	return render(c, r, "Failed to load events. Please try again.")
}

func (sh *StudentHandler) myEvents(ctx context.Context, c *fiber.Ctx, set *services.Set) (filter.Page[models.Registration], error) {
	regs, err := set.Profile.Registrations(ctx)
	if err != nil {
		return filter.Page[models.Registration]{}, err
	}
	shown := filter.Registrations(filter.Active(regs), c.Query("search"), filter.ParseStatus(c.Query("status")))
	return filter.Paginate(shown, c.QueryInt("page", 1), filter.ItemsPerPage), nil
}

func (sh *StudentHandler) Cancel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	ctx := c.UserContext()
	set := api(c)
	if err := set.Events.Cancel(ctx, id); err != nil {
		return fail(c, err, "Failed to cancel registration. Please try again.")
	}

	page, err := sh.myEvents(ctx, c, set)
	if err != nil {
		sh.log.WithError(err).Debug("refetch after cancel")
	}
	return done(c, "Registration cancelled", page)
}

type FeedbackPage struct {
	Feedback       []models.Feedback `json:"feedback"`
	AttendedEvents []models.Event    `json:"attended_events"`
}

func (sh *StudentHandler) Feedback(c *fiber.Ctx) error {
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (FeedbackPage, error) {
		return feedbackPage(ctx, api(c))
	})
	return render(c, r, "Failed to load attended events. Please try again.")
}

func feedbackPage(ctx context.Context, set *services.Set) (FeedbackPage, error) {
	var p FeedbackPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p.Feedback, err = set.Feedback.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		p.AttendedEvents, err = set.Feedback.AttendedEvents(gctx)
		return err
	})
	return p, g.Wait()
}

func (sh *StudentHandler) SubmitFeedback(c *fiber.Ctx) error {
	var in models.FeedbackInput
	if err := c.BodyParser(&in); err != nil {
		return badJSON(c)
	}
	in, err := forms.Feedback(in)
	if err != nil {
		return fail(c, err, "")
	}

	ctx := c.UserContext()
	set := api(c)
	if _, err := set.Feedback.Create(ctx, in); err != nil {
		return fail(c, err, "Failed to submit feedback. Please try again.")
	}

	page, err := feedbackPage(ctx, set)
	if err != nil {
		sh.log.WithError(err).Debug("refetch after feedback")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  fetch.Ready,
		"message": "Feedback submitted successfully!",
		"data":    page,
	})
}

func (sh *StudentHandler) FeedbackEntry(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	r := fetch.Load(c.UserContext(), func(ctx context.Context) (models.Feedback, error) {
		return api(c).Feedback.Get(ctx, id)
	})
	return render(c, r, "")
}

func (sh *StudentHandler) UpdateFeedback(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	var patch models.FeedbackUpdate
	if err := c.BodyParser(&patch); err != nil {
		return badJSON(c)
	}
	patch, err = forms.FeedbackUpdate(patch)
	if err != nil {
		return fail(c, err, "")
	}

	ctx := c.UserContext()
	set := api(c)
	if _, err := set.Feedback.Update(ctx, id, patch); err != nil {
		return fail(c, err, "Failed to update feedback. Please try again.")
	}
	page, err := feedbackPage(ctx, set)
	if err != nil {
		sh.log.WithError(err).Debug("refetch after feedback update")
	}
	return done(c, "Feedback updated", page)
}

func (sh *StudentHandler) DeleteFeedback(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err, "")
	}
	ctx := c.UserContext()
	set := api(c)
	if err := set.Feedback.Delete(ctx, id); err != nil {
		return fail(c, err, "Failed to delete feedback. Please try again.")
	}
	page, err := feedbackPage(ctx, set)
	if err != nil {
		sh.log.WithError(err).Debug("refetch after feedback delete")
	}
	return done(c, "Feedback deleted", page)
}

// Attendance lists the events the student was checked in at.
func (sh *StudentHandler) Attendance(c *fiber.Ctx) error {
	set := api(c)
	r := fetch.Load(c.UserContext(), set.Profile.Attendance)
	return render(c, r, "")
}

func (sh *StudentHandler) Notifications(c *fiber.Ctx) error {
	set := api(c)
	r := fetch.Load(c.UserContext(), set.Profile.Notifications)
	return render(c, r, "")
}

func (sh *StudentHandler) MarkAllRead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	set := api(c)
	if err := set.Profile.MarkAllNotificationsRead(ctx); err != nil {
		return fail(c, err, "")
	}
	list, err := set.Profile.Notifications(ctx)
	if err != nil {
		sh.log.WithError(err).Debug("refetch notifications")
	}
	return done(c, "All notifications marked as read", list)
}
