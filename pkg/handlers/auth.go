package handlers

import (
	"evex/pkg/fetch"
	"evex/pkg/forms"
	"evex/pkg/guard"
	"evex/pkg/logger"
	"evex/pkg/middleware"
	"evex/pkg/models"
	"evex/pkg/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionView is what a browser learns about its own session.
type SessionView struct {
	State       string       `json:"state"`
	Role        models.Role  `json:"role,omitempty"`
	User        *models.User `json:"user,omitempty"`
	DisplayName string       `json:"display_name,omitempty"`
	Initials    string       `json:"initials,omitempty"`
	Error       string       `json:"error,omitempty"`
	// Redirect is set when the page the client is on needs a session it lacks.
	Redirect string `json:"redirect,omitempty"`
}

// viewAt is viewOf for a client currently showing path.
func viewAt(s session.State, path string) SessionView {
	v := viewOf(s)
	if _, anon := s.(session.Anonymous); anon && guard.Protected(path) {
		v.Redirect = guard.LoginPath
	}
	return v
}

func viewOf(s session.State) SessionView {
	v := SessionView{State: session.Name(s)}
	if a, ok := s.(session.Authenticated); ok {
		u := a.User
		v.Role = u.Role()
		v.User = &u
		v.DisplayName = u.DisplayName()
		v.Initials = u.Initials()
	}
	return v
}

type AuthHandler struct {
	log *logrus.Entry
}

func NewAuth(log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{log: logger.Component(log, "portal")}
}

func (ah *AuthHandler) Session(c *fiber.Ctx) error {
	s, err := holder(c).Ensure(c.UserContext())
	v := viewAt(s, c.Query("path"))
	if err != nil {
		v.Error = fetch.Message(err)
	}
	return c.JSON(v)
}

func (ah *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": fetch.Ready})
}

// RegisterPage lists the choices and password rules the sign-up form shows.
func (ah *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         fetch.Ready,
		"user_types":     []models.Role{models.RoleStudent, models.RoleOrganizer},
		"password_rules": forms.CheckPassword("").Unmet(),
	})
}

func (ah *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	req, err := forms.Login(req)
	if err != nil {
		return fail(c, err, "")
	}

	role, err := holder(c).Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		ah.log.WithError(err).WithField("sid", middleware.SID(c)).Info("login failed")
		return fail(c, err, "Invalid username or password")
	}

	ah.log.WithFields(logrus.Fields{"sid": middleware.SID(c), "role": role}).Info("login")
	return c.JSON(fiber.Map{
		"status":   fetch.Ready,
		"role":     role,
		"redirect": guard.AreaPath(role),
		"session":  viewOf(holder(c).State()),
	})
}

func (ah *AuthHandler) Register(c *fiber.Ctx) error {
	var f forms.RegisterForm
	if err := c.BodyParser(&f); err != nil {
		return badJSON(c)
	}
	req, err := forms.Register(f)
	if err != nil {
		return fail(c, err, "")
	}

	if _, err := api(c).Auth.Register(c.UserContext(), req); err != nil {
		return fail(c, err, "Registration failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":   fetch.Ready,
		"message":  "Registration successful! Redirecting to login...",
		"redirect": guard.LoginPath,
	})
}

func (ah *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := holder(c).Logout(c.UserContext()); err != nil {
		ah.log.WithError(err).WithField("sid", middleware.SID(c)).Warn("logout: clear tokens")
	}
	return c.JSON(fiber.Map{"status": fetch.Ready, "redirect": guard.LoginPath})
}

// Dashboard is the /dashboard role router.
func (ah *AuthHandler) Dashboard(c *fiber.Ctx) error {
	return middleware.Decide(c, guard.Dispatch(middleware.Resolve(c)))
}
