package models

import "time"

const (
	RegistrationRegistered = "registered"
	RegistrationAttended   = "attended"
	RegistrationCancelled  = "cancelled"
	RegistrationWaitlisted = "waitlisted"
)

type Registration struct {
	ID               int        `json:"id"`
	Status           string     `json:"status"`
	RegisteredAt     time.Time  `json:"registered_at"`
	WaitlistPosition *int       `json:"waitlist_position,omitempty"`
	Event            *Event     `json:"event,omitempty"`
	EventID          int        `json:"event_id,omitempty"`
	EventTitle       string     `json:"event_title,omitempty"`
	User             *User      `json:"user,omitempty"`
	AttendedAt       *time.Time `json:"attended_at,omitempty"`
}

func (r Registration) Title() string {
	if r.Event != nil && r.Event.Title != "" {
		return r.Event.Title
	}
	return r.EventTitle
}

// Attendance is a row of the organizer attendance sheet.
type Attendance struct {
	ID         int        `json:"id"`
	UserID     int        `json:"user_id"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Status     string     `json:"status"`
	Attended   bool       `json:"attended"`
	Notes      string     `json:"notes,omitempty"`
	MarkedAt   *time.Time `json:"marked_at,omitempty"`
	Registered *time.Time `json:"registered_at,omitempty"`
}

type MarkAttendanceRequest struct {
	UserID int    `json:"user_id" validate:"required,gt=0"`
	Notes  string `json:"notes"`
}

// EventRegistrations groups registrations under their event in
// GET /organizer/registrations/.
type EventRegistrations struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	DateTime      *time.Time     `json:"date_time,omitempty"`
	Registrations []Registration `json:"registrations"`
}
