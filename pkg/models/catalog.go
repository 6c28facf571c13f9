package models

import "time"

type University struct {
	ID          int    `json:"id"`
	Name        string `json:"name" validate:"required"`
	ShortName   string `json:"short_name,omitempty"`
	City        string `json:"city,omitempty"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	Description string `json:"description,omitempty"`
}

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Venue struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	University *int   `json:"university,omitempty"`
	Capacity   int    `json:"capacity,omitempty"`
}

type Feedback struct {
	ID         int       `json:"id,omitempty"`
	Event      int       `json:"event"`
	EventTitle string    `json:"event_title,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// FeedbackInput is the body of POST /feedback/. Comment is dropped when blank.
// FeedbackUpdate edits a student's own feedback.
type FeedbackUpdate struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

type FeedbackInput struct {
	Event   int    `json:"event" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}

type Notification struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats covers dashboard and analytics payloads whose shape the backend owns.
type Stats map[string]any

// StudentOverview is the student dashboard payload.
type StudentOverview struct {
	RecentActivities []map[string]any `json:"recent_activities"`
	Stats            OverviewStats    `json:"stats"`
}

type OverviewStats struct {
	UpcomingEvents int    `json:"upcoming_events"`
	EventsAttended int    `json:"events_attended"`
	AttendanceRate string `json:"attendance_rate"`
	HoursEngaged   int    `json:"hours_engaged"`
}
