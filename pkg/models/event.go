package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventCancelled = "cancelled"
	EventCompleted = "completed"
)

const (
	VisibilityUniversity      = "university"
	VisibilityPublic          = "public"
	VisibilityInterUniversity = "inter_university"
)

// Event is the read projection the backend sends to every viewer.
// UserRegistrationStatus is nil, "registered" or "waitlisted".
type Event struct {
	ID                     int                 `json:"id"`
	Title                  string              `json:"title"`
	Description            string              `json:"description"`
	DateTime               time.Time           `json:"date_time"`
	EndDateTime            *time.Time          `json:"end_date_time,omitempty"`
	RegistrationDeadline   *time.Time          `json:"registration_deadline,omitempty"`
	Category               *int                `json:"category,omitempty"`
	CategoryName           string              `json:"category_name,omitempty"`
	HostUniversity         *int                `json:"host_university,omitempty"`
	UniversityName         string              `json:"university_name,omitempty"`
	HostUniversityName     string              `json:"host_university_name,omitempty"`
	OrganizerName          string              `json:"organizer_name,omitempty"`
	VenueName              string              `json:"venue_name,omitempty"`
	ParticipantLimit       int                 `json:"participant_limit"`
	RegisteredCount        int                 `json:"registered_count"`
	WaitlistCount          int                 `json:"waitlist_count,omitempty"`
	IsFull                 bool                `json:"is_full"`
	Visibility             string              `json:"visibility,omitempty"`
	AllowedUniversities    []int               `json:"allowed_universities,omitempty"`
	Status                 string              `json:"status"`
	Price                  decimal.NullDecimal `json:"price,omitempty"`
	Image                  string              `json:"image,omitempty"`
	Tags                   Tags                `json:"tags,omitempty"`
	UserRegistrationStatus *string             `json:"user_registration_status"`
}

// Tags decodes either a JSON array or the comma-separated string the
// create-event form posts.
type Tags []string

func (t *Tags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	if b[0] == '[' {
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*t = items
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out Tags
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	*t = out
	return nil
}

func (e Event) RegistrationStatus() string {
	if e.UserRegistrationStatus == nil {
		return ""
	}
	return *e.UserRegistrationStatus
}

func (e Event) Free() bool {
	return !e.Price.Valid || e.Price.Decimal.IsZero()
}

func (e Event) SeatsLeft() int {
	if e.ParticipantLimit <= 0 {
		return 0
	}
	if left := e.ParticipantLimit - e.RegisteredCount; left > 0 {
		return left
	}
	return 0
}

// ClashingEvent is one entry of the 409 clashing_events payload.
type ClashingEvent struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	DateTime  time.Time `json:"date_time"`
	VenueName string    `json:"venue_name"`
}

// EventInput is the organizer create-event body.
type EventInput struct {
	Title               string          `json:"title" validate:"required"`
	Description         string          `json:"description" validate:"required"`
	Date                string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time                string          `json:"time" validate:"required,datetime=15:04"`
	EndTime             string          `json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
	Location            string          `json:"location" validate:"required"`
	Capacity            int             `json:"capacity" validate:"required,gt=0"`
	Price               decimal.Decimal `json:"price" validate:"gte=0"`
	Category            string          `json:"category" validate:"required,category"`
	Tags                string          `json:"tags,omitempty"`
	Status              string          `json:"status" validate:"required,oneof=published draft"`
	Visibility          string          `json:"visibility" validate:"required,oneof=university public inter_university"`
	AllowedUniversities []int           `json:"allowed_universities"`
}

// EventUpdate is a partial organizer or admin patch.
type EventUpdate struct {
	Title            *string          `json:"title,omitempty"`
	Description      *string          `json:"description,omitempty"`
	DateTime         *time.Time       `json:"date_time,omitempty"`
	VenueName        *string          `json:"venue_name,omitempty"`
	ParticipantLimit *int             `json:"participant_limit,omitempty" validate:"omitempty,gt=0"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Status           *string          `json:"status,omitempty" validate:"omitempty,oneof=draft published cancelled completed"`
	Visibility       *string          `json:"visibility,omitempty" validate:"omitempty,oneof=university public inter_university"`
}

// EventQuery are the server-side filters of GET /events/ and /admin/events/.
type EventQuery struct {
	Search     string
	Category   int
	University int
	Status     string
}
