package session

import "evex/pkg/models"

// State is one of Unknown, Anonymous or Authenticated.
type State interface {
	sessionState()
}

// Unknown is the state before the first load completes.
type Unknown struct{}

type Anonymous struct{}

type Authenticated struct {
	User models.User
}

func (Unknown) sessionState()       {}
func (Anonymous) sessionState()     {}
func (Authenticated) sessionState() {}

func Name(s State) string {
	switch s.(type) {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// RoleOf returns RoleAnonymous unless s is Authenticated.
func RoleOf(s State) models.Role {
	if a, ok := s.(Authenticated); ok {
		return a.User.Role()
	}
	return models.RoleAnonymous
}
