// Package guard decides, once per navigation, whether a session may enter
// a dashboard area.
package guard

import (
	"strings"

	"evex/pkg/models"
	"evex/pkg/session"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type Kind int

const (
	Allow Kind = iota
	Loading
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	}
	return "redirect"
}

type Decision struct {
	Kind     Kind
	Location string
}

func (d Decision) Allowed() bool {
	return d.Kind == Allow
}

func allow() Decision {
	return Decision{Kind: Allow}
}

func loading() Decision {
	return Decision{Kind: Loading}
}

func to(loc string) Decision {
	return Decision{Kind: Redirect, Location: loc}
}

// Check is the area guard. A role change after entry is only seen on the
// next navigation.
func Check(s session.State, area models.Role) Decision {
	switch st := s.(type) {
	case session.Authenticated:
		if st.User.Role() != area {
			return to(DashboardPath)
		}
		return allow()
	case session.Anonymous:
		return to(LoginPath)
	}
	return loading()
}

// Authenticated lets any signed-in role through.
func Authenticated(s session.State) Decision {
	switch s.(type) {
	case session.Authenticated:
		return allow()
	case session.Anonymous:
		return to(LoginPath)
	}
	return loading()
}

// Dispatch is the /dashboard router.
func Dispatch(s session.State) Decision {
	switch st := s.(type) {
	case session.Authenticated:
		return to(AreaPath(st.User.Role()))
	case session.Anonymous:
		return to(LoginPath)
	}
	return loading()
}

// PublicOnly keeps signed-in users off the login and register pages.
func PublicOnly(s session.State) Decision {
	if _, ok := s.(session.Authenticated); ok {
		return to(DashboardPath)
	}
	return allow()
}

func AreaPath(r models.Role) string {
	return DashboardPath + "/" + string(r.OrDefault())
}

var protectedPrefixes = []string{DashboardPath, "/profile", "/settings"}

// Protected reports whether path needs a session. Event browsing is public,
// its register and cancel actions are not.
func Protected(path string) bool {
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	if strings.HasPrefix(path, "/events/") {
		return strings.HasSuffix(path, "/register") || strings.HasSuffix(path, "/cancel")
	}
	return false
}
