// Package filter holds the client-side narrowing applied to lists that were
// already fetched in full: search, facets, pagination and counters.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"evex/pkg/models"
)

// All is the facet key that disables a filter.
const All = "all"

// ItemsPerPage is the fixed page size of the student's event list.
const ItemsPerPage = 6

// FeaturedCount is how many published events the home page shows.
const FeaturedCount = 3

func matches(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ParseID turns a facet key into an id. "", "all" and junk mean no filter.
func ParseID(key string) int {
	if key == "" || key == All {
		return 0
	}
	id, err := strconv.Atoi(key)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// ParseStatus maps "all" to no filter.
func ParseStatus(key string) string {
	if key == All {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(key))
}

// Scope picks which event fields a search looks at. Each page searches its
// own set.
type Scope int

const (
	// ScopePublic is the public events page: title and description.
	ScopePublic Scope = iota
	// ScopeTitle is the organizer's own event list.
	ScopeTitle
	// ScopeCatalog is the admin list, which adds category and university names.
	ScopeCatalog
)

func (s Scope) fields(e models.Event) []string {
	switch s {
	case ScopeTitle:
		return []string{e.Title}
	case ScopeCatalog:
		return []string{e.Title, e.Description, e.UniversityName, e.CategoryName}
	}
	return []string{e.Title, e.Description}
}

// EventFilter is zero-valued for "show everything".
type EventFilter struct {
	Search     string
	Scope      Scope
	Category   int
	University int
	Status     string
}

func Events(events []models.Event, f EventFilter) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if !matches(f.Search, f.Scope.fields(e)...) {
			continue
		}
		if f.Category != 0 && (e.Category == nil || *e.Category != f.Category) {
			continue
		}
		if f.University != 0 && (e.HostUniversity == nil || *e.HostUniversity != f.University) {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Featured returns the first n published events.
func Featured(events []models.Event, n int) []models.Event {
	out := make([]models.Event, 0, n)
	for _, e := range events {
		if len(out) == n {
			break
		}
		if e.Status == models.EventPublished {
			out = append(out, e)
		}
	}
	return out
}

// Option is one facet button.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func CategoryOptions(cats []models.Category) []Option {
	opts := []Option{{Key: All, Label: "All Events"}}
	for _, c := range cats {
		opts = append(opts, Option{Key: strconv.Itoa(c.ID), Label: c.Name})
	}
	return opts
}

func UniversityOptions(unis []models.University) []Option {
	opts := []Option{{Key: All, Label: "All Universities"}}
	for _, u := range unis {
		opts = append(opts, Option{Key: strconv.Itoa(u.ID), Label: u.Name})
	}
	return opts
}

// RegisterLabel is the text of an event's register button.
func RegisterLabel(e models.Event) string {
	switch e.RegistrationStatus() {
	case models.RegistrationRegistered:
		return "Registered"
	case models.RegistrationWaitlisted:
		return "On Waitlist"
	}
	if e.IsFull {
		return "Join Waitlist"
	}
	return "Register Now"
}

// RegisterDisabled is true while a registration is in flight or once the
// viewer holds a seat or a waitlist spot.
func RegisterDisabled(e models.Event, pending bool) bool {
	if pending {
		return true
	}
	s := e.RegistrationStatus()
	return s == models.RegistrationRegistered || s == models.RegistrationWaitlisted
}

// HoursPerEvent is the engagement credited for each attended event.
const HoursPerEvent = 3

// Overview derives the student dashboard counters from the raw registration
// list. Upcoming counts registered rows whose event starts after now.
func Overview(regs []models.Registration, now time.Time) models.OverviewStats {
	var s models.OverviewStats
	for _, r := range regs {
		switch r.Status {
		case models.RegistrationRegistered:
			if r.Event != nil && r.Event.DateTime.After(now) {
				s.UpcomingEvents++
			}
		case models.RegistrationAttended:
			s.EventsAttended++
		}
	}
	rate := 0
	if len(regs) > 0 {
		rate = int(math.Round(float64(s.EventsAttended) / float64(len(regs)) * 100))
	}
	s.AttendanceRate = fmt.Sprintf("%d%%", rate)
	s.HoursEngaged = s.EventsAttended * HoursPerEvent
	return s
}

// Active drops cancelled registrations.
func Active(regs []models.Registration) []models.Registration {
	out := make([]models.Registration, 0, len(regs))
	for _, r := range regs {
		if r.Status != models.RegistrationCancelled {
			out = append(out, r)
		}
	}
	return out
}

func Registrations(regs []models.Registration, search, status string) []models.Registration {
	out := make([]models.Registration, 0, len(regs))
	for _, r := range regs {
		desc, cat := "No description available", "General"
		if r.Event != nil {
			if r.Event.Description != "" {
				desc = r.Event.Description
			}
			if r.Event.CategoryName != "" {
				cat = r.Event.CategoryName
			}
		}
		if !matches(search, r.Title(), desc, cat) {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Registrants narrows an organizer's registration list by attendee.
func Registrants(regs []models.Registration, search string) []models.Registration {
	if search == "" {
		return regs
	}
	out := make([]models.Registration, 0, len(regs))
	for _, r := range regs {
		var name, email string
		if r.User != nil {
			name, email = r.User.DisplayName(), r.User.Email
		}
		if matches(search, name, email, r.Status) {
			out = append(out, r)
		}
	}
	return out
}

func Attendance(rows []models.Attendance, search string) []models.Attendance {
	out := make([]models.Attendance, 0, len(rows))
	for _, a := range rows {
		if matches(search, a.Username, a.FullName, a.Email) {
			out = append(out, a)
		}
	}
	return out
}

// Users filters the admin listing. An empty role matches everyone.
func Users(users []models.User, search string, role models.Role) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		full := u.FirstName + " " + u.LastName
		if !matches(search, u.Username, u.Email, full) {
			continue
		}
		if role != models.RoleAnonymous && u.Role() != role {
			continue
		}
		out = append(out, u)
	}
	return out
}

func Universities(unis []models.University, search string) []models.University {
	out := make([]models.University, 0, len(unis))
	for _, u := range unis {
		if matches(search, u.Name, u.ShortName, u.City) {
			out = append(out, u)
		}
	}
	return out
}

// EventStats are the admin moderation counters, taken over the unfiltered list.
type EventStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Draft     int `json:"draft"`
	Cancelled int `json:"cancelled"`
}

func Stats(events []models.Event) EventStats {
	s := EventStats{Total: len(events)}
	for _, e := range events {
		switch e.Status {
		case models.EventPublished:
			s.Published++
		case models.EventDraft:
			s.Draft++
		case models.EventCancelled:
			s.Cancelled++
		}
	}
	return s
}
