package guard

import (
	"testing"

	"evex/pkg/models"
	"evex/pkg/session"

	"github.com/stretchr/testify/assert"
)

func authed(role models.Role) session.State {
	return session.Authenticated{User: models.User{
		Username: "u",
		Profile:  &models.Profile{UserType: role},
	}}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		area  models.Role
		want  Decision
	}{
		{"unknown waits", session.Unknown{}, models.RoleStudent, Decision{Kind: Loading}},
		{"anonymous to login", session.Anonymous{}, models.RoleStudent, Decision{Kind: Redirect, Location: "/login"}},
		{"student in student area", authed(models.RoleStudent), models.RoleStudent, Decision{Kind: Allow}},
		{"student in organizer area", authed(models.RoleStudent), models.RoleOrganizer, Decision{Kind: Redirect, Location: "/dashboard"}},
		{"organizer in admin area", authed(models.RoleOrganizer), models.RoleAdmin, Decision{Kind: Redirect, Location: "/dashboard"}},
		{"admin in admin area", authed(models.RoleAdmin), models.RoleAdmin, Decision{Kind: Allow}},
		{"missing user_type counts as student", authed(""), models.RoleStudent, Decision{Kind: Allow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.state, tt.area))
		})
	}
}

func TestDispatch(t *testing.T) {
	assert.Equal(t, "/dashboard/student", Dispatch(authed(models.RoleStudent)).Location)
	assert.Equal(t, "/dashboard/organizer", Dispatch(authed(models.RoleOrganizer)).Location)
	assert.Equal(t, "/dashboard/admin", Dispatch(authed(models.RoleAdmin)).Location)
	assert.Equal(t, "/login", Dispatch(session.Anonymous{}).Location)
	assert.Equal(t, Loading, Dispatch(session.Unknown{}).Kind)
}

func TestPublicOnly(t *testing.T) {
	assert.True(t, PublicOnly(session.Anonymous{}).Allowed())
	assert.True(t, PublicOnly(session.Unknown{}).Allowed())
	assert.Equal(t, Decision{Kind: Redirect, Location: "/dashboard"}, PublicOnly(authed(models.RoleAdmin)))
}

func TestAuthenticated(t *testing.T) {
	assert.True(t, Authenticated(authed(models.RoleOrganizer)).Allowed())
	assert.Equal(t, "/login", Authenticated(session.Anonymous{}).Location)
}

func TestProtected(t *testing.T) {
	for path, want := range map[string]bool{
		"/dashboard":            true,
		"/dashboard/admin":      true,
		"/profile":              true,
		"/settings/security":    true,
		"/events":               false,
		"/events/3":             false,
		"/events/3/register":    true,
		"/events/3/cancel":      true,
		"/login":                false,
		"/dashboards-marketing": false,
		"/":                     false,
	} {
		assert.Equal(t, want, Protected(path), path)
	}
}
