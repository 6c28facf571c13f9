package services

import (
	"bytes"
	"context"
	"encoding/json"

	"evex/pkg/models"
)

type OrganizerService interface {
	Dashboard(ctx context.Context) (models.Stats, error)
	Analytics(ctx context.Context) (models.Stats, error)
	Events(ctx context.Context) ([]models.Event, error)
	Event(ctx context.Context, id int) (models.Event, error)
	CreateEvent(ctx context.Context, in models.EventInput) (models.Event, error)
	UpdateEvent(ctx context.Context, id int, patch models.EventUpdate) (models.Event, error)
	Attendance(ctx context.Context, eventID int) ([]models.Attendance, error)
	MarkAttendance(ctx context.Context, eventID int, req models.MarkAttendanceRequest) error
	Registrations(ctx context.Context) ([]models.EventRegistrations, error)
}

type organizerService struct {
	api API
}

func NewOrganizerService(api API) OrganizerService {
	return &organizerService{api: api}
}

func (s *organizerService) Dashboard(ctx context.Context) (models.Stats, error) {
	var out models.Stats
	if err := s.api.Get(ctx, "/organizer/dashboard/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *organizerService) Analytics(ctx context.Context) (models.Stats, error) {
	var out models.Stats
	if err := s.api.Get(ctx, "/organizer/analytics/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *organizerService) Events(ctx context.Context) ([]models.Event, error) {
	return getList[models.Event](ctx, s.api, "/organizer/events/", nil)
}

func (s *organizerService) Event(ctx context.Context, id int) (models.Event, error) {
	var e models.Event
	if err := s.api.Get(ctx, "/organizer/events/"+itoa(id)+"/", nil, &e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *organizerService) CreateEvent(ctx context.Context, in models.EventInput) (models.Event, error) {
	if in.Visibility != models.VisibilityInterUniversity {
		in.AllowedUniversities = []int{}
	}

	var e models.Event
	if err := s.api.Post(ctx, "/organizer/create-event/", in, &e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *organizerService) UpdateEvent(ctx context.Context, id int, patch models.EventUpdate) (models.Event, error) {
	var e models.Event
	if err := s.api.Patch(ctx, "/organizer/events/"+itoa(id)+"/update/", patch, &e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *organizerService) Attendance(ctx context.Context, eventID int) ([]models.Attendance, error) {
	return getList[models.Attendance](ctx, s.api, "/organizer/events/"+itoa(eventID)+"/attendance/", nil)
}

func (s *organizerService) MarkAttendance(ctx context.Context, eventID int, req models.MarkAttendanceRequest) error {
	return s.api.Post(ctx, "/organizer/events/"+itoa(eventID)+"/mark-attendance/", req, nil)
}

func (s *organizerService) Registrations(ctx context.Context) ([]models.EventRegistrations, error) {
	var out groupedRegistrations
	if err := s.api.Get(ctx, "/organizer/registrations/", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return []models.EventRegistrations{}, nil
	}
	return out, nil
}

// groupedRegistrations accepts {"events": [...]} as well as the list shapes.
type groupedRegistrations []models.EventRegistrations

func (g *groupedRegistrations) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var wrapped struct {
			Events []models.EventRegistrations `json:"events"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return err
		}
		if wrapped.Events != nil {
			*g = wrapped.Events
			return nil
		}
	}

	var l list[models.EventRegistrations]
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	*g = groupedRegistrations(l)
	return nil
}
