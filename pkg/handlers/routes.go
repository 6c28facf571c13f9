package handlers

import (
	"time"

	"evex/pkg/cache"
	"evex/pkg/hub"
	"evex/pkg/middleware"
	"evex/pkg/models"
	"evex/pkg/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Registry *session.Registry
	Hub      *hub.Hub
	Inflight cache.Inflight
	Log      logrus.FieldLogger

	Secret string
	Secure bool
	// AuthLimit caps login and sign-up attempts per IP per minute. Zero disables it.
	AuthLimit int
}

func perMinute(n int) fiber.Handler {
	if n <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        n,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})
}

// Mount wires every page behind the session cookie. Routes registered on app
// before Mount (health, metrics) never see a session.
func Mount(app *fiber.App, d Deps) {
	auth := NewAuth(d.Log)
	events := NewEvents(d.Inflight, d.Log)
	student := NewStudent(d.Log)
	profile := NewProfile(d.Log)
	organizer := NewOrganizer(d.Log)
	admin := NewAdmin(d.Log)

	app.Use(middleware.Session(middleware.SessionConfig{
		Secret:   d.Secret,
		Secure:   d.Secure,
		Registry: d.Registry,
	}))

	app.Get("/api/session", auth.Session)
	app.Get("/login", middleware.PublicOnly(), auth.LoginPage)
	app.Post("/login", perMinute(d.AuthLimit), middleware.PublicOnly(), auth.Login)
	app.Get("/register", middleware.PublicOnly(), auth.RegisterPage)
	app.Post("/register", perMinute(d.AuthLimit), middleware.PublicOnly(), auth.Register)
	app.Post("/logout", auth.Logout)

	app.Get("/", events.Home)
	app.Get("/events", events.List)
	app.Get("/events/:id", events.Get)
	app.Get("/universities/:id", events.University)
	app.Post("/events/:id/register", middleware.RequireSession(), events.Register)
	app.Post("/events/:id/cancel", middleware.RequireSession(), events.Cancel)

	app.Get("/dashboard", auth.Dashboard)

	st := app.Group("/dashboard/student", middleware.RequireRole(models.RoleStudent))
	st.Get("/", student.Overview)
	st.Get("/events", student.MyEvents)
	st.Post("/events/:id/cancel", student.Cancel)
	st.Get("/feedback", student.Feedback)
	st.Post("/feedback", student.SubmitFeedback)
	st.Get("/feedback/:id", student.FeedbackEntry)
	st.Patch("/feedback/:id", student.UpdateFeedback)
	st.Delete("/feedback/:id", student.DeleteFeedback)
	st.Get("/attendance", student.Attendance)
	st.Get("/notifications", student.Notifications)
	st.Post("/notifications/read", student.MarkAllRead)

	org := app.Group("/dashboard/organizer", middleware.RequireRole(models.RoleOrganizer))
	org.Get("/", organizer.Dashboard)
	org.Get("/analytics", organizer.Analytics)
	org.Get("/events", organizer.Events)
	org.Post("/events", organizer.CreateEvent)
	org.Get("/events/new", organizer.NewEvent)
	org.Get("/events/:id", organizer.Event)
	org.Patch("/events/:id", organizer.UpdateEvent)
	org.Get("/events/:id/attendance", organizer.Attendance)
	org.Post("/events/:id/attendance", organizer.MarkAttendance)
	org.Get("/registrations", organizer.Registrations)

	adm := app.Group("/dashboard/admin", middleware.RequireRole(models.RoleAdmin))
	adm.Get("/", admin.Analytics)
	adm.Get("/events", admin.Events)
	adm.Get("/events/:id", admin.Event)
	adm.Patch("/events/:id", admin.UpdateEvent)
	adm.Delete("/events/:id", admin.DeleteEvent)
	adm.Get("/users", admin.Users)
	adm.Get("/users/:id", admin.User)
	adm.Patch("/users/:id", admin.UpdateUser)
	adm.Delete("/users/:id", admin.DeleteUser)
	adm.Get("/universities", admin.Universities)
	adm.Post("/universities", admin.CreateUniversity)
	adm.Get("/universities/:id", admin.University)
	adm.Patch("/universities/:id", admin.UpdateUniversity)
	adm.Delete("/universities/:id", admin.DeleteUniversity)

	pr := app.Group("/profile", middleware.RequireSession())
	pr.Get("/", profile.Get)
	pr.Patch("/", profile.Update)
	pr.Delete("/", profile.Delete)

	if d.Hub != nil {
		sock := NewSocket(d.Hub, d.Registry)
		sock.RegisterActions()
		app.Get("/ws", sock.Upgrade, sock.Serve())
	}
}
