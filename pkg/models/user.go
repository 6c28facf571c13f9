package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Role string

const (
	RoleAnonymous Role = ""
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// OrDefault maps an unknown or missing user_type to student.
func (r Role) OrDefault() Role {
	if r.Valid() {
		return r
	}
	return RoleStudent
}

type Profile struct {
	ID             int    `json:"id,omitempty"`
	User           int    `json:"user,omitempty"`
	UserType       Role   `json:"user_type"`
	University     *int   `json:"university,omitempty"`
	UniversityName string `json:"university_name,omitempty"`
	ContactNumber  string `json:"contact_number,omitempty"`
	Department     string `json:"department,omitempty"`
	IsVerified     bool   `json:"is_verified"`
}

type User struct {
	ID        int      `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	IsActive  *bool    `json:"is_active,omitempty"`
	Profile   *Profile `json:"profile,omitempty"`
	// UserType is set on the flat admin user listing.
	UserType Role `json:"user_type,omitempty"`
}

func (u User) Role() Role {
	if u.Profile != nil && u.Profile.UserType != "" {
		return u.Profile.UserType.OrDefault()
	}
	return u.UserType.OrDefault()
}

func (u User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}

// Initials returns up to two uppercase letters, falling back to a role letter.
func (u User) Initials() string {
	var letters []rune
	for _, w := range strings.Fields(u.DisplayName()) {
		r, _ := utf8.DecodeRuneInString(w)
		letters = append(letters, unicode.ToUpper(r))
		if len(letters) == 2 {
			break
		}
	}
	if len(letters) > 0 {
		return string(letters)
	}
	switch u.Role() {
	case RoleOrganizer:
		return "O"
	case RoleAdmin:
		return "A"
	}
	return "U"
}

// Me is the /profiles/me/ payload.
type Me struct {
	User    User     `json:"user"`
	Profile *Profile `json:"profile"`
}

func (m Me) Merge() User {
	u := m.User
	if m.Profile != nil {
		u.Profile = m.Profile
	}
	return u
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=150"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	UserType      Role   `json:"user_type" validate:"required,oneof=student organizer"`
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	ContactNumber string `json:"contact_number,omitempty"`
	Department    string `json:"department,omitempty"`
}

type ProfileUpdate struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	ContactNumber *string `json:"contact_number,omitempty"`
	Department    *string `json:"department,omitempty"`
	University    *int    `json:"university,omitempty"`
}

// UserUpdate is the admin-side patch of another account.
type UserUpdate struct {
	UserType   *Role `json:"user_type,omitempty" validate:"omitempty,oneof=student organizer admin"`
	IsVerified *bool `json:"is_verified,omitempty"`
	IsActive   *bool `json:"is_active,omitempty"`
}
