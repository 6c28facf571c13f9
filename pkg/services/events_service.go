package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"evex/pkg/apiclient"
	"evex/pkg/models"
)

// ClashError is a registration refused because of a time clash. Events are
// the backend's clashing_events, passed through untouched.
type ClashError struct {
	Message string
	Events  []models.ClashingEvent
}

func (e *ClashError) Error() string {
	if e.Message != "" {
		return "register: time clash: " + e.Message
	}
	return "register: time clash"
}

// RegisterResult is the backend's answer to a registration.
type RegisterResult struct {
	Message          string `json:"message"`
	Status           string `json:"status"`
	WaitlistPosition *int   `json:"waitlist_position,omitempty"`
}

type EventService interface {
	List(ctx context.Context, q models.EventQuery) ([]models.Event, error)
	Get(ctx context.Context, id int) (models.Event, error)
	// Register with force=false turns a 409 carrying clashing_events into
	// *ClashError. force=true posts {"force": true} and never short-circuits.
	Register(ctx context.Context, id int, force bool) (RegisterResult, error)
	Cancel(ctx context.Context, id int) error
}

type eventService struct {
	api API
}

func NewEventService(api API) EventService {
	return &eventService{api: api}
}

func (s *eventService) List(ctx context.Context, q models.EventQuery) ([]models.Event, error) {
	return getList[models.Event](ctx, s.api, "/events/", eventParams(q))
}

func (s *eventService) Get(ctx context.Context, id int) (models.Event, error) {
	var e models.Event
	if err := s.api.Get(ctx, "/events/"+itoa(id)+"/", nil, &e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *eventService) Register(ctx context.Context, id int, force bool) (RegisterResult, error) {
	var body any
	if force {
		body = map[string]bool{"force": true}
	}

	var out RegisterResult
	err := s.api.Post(ctx, "/events/"+itoa(id)+"/register/", body, &out)
	if err == nil {
		return out, nil
	}
	if !force {
		if clash := asClash(err); clash != nil {
			return RegisterResult{}, clash
		}
	}
	return RegisterResult{}, err
}

func (s *eventService) Cancel(ctx context.Context, id int) error {
	return s.api.Post(ctx, "/events/"+itoa(id)+"/cancel_registration/", nil, nil)
}

func asClash(err error) *ClashError {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		return nil
	}

	var payload struct {
		Error          string                 `json:"error"`
		Message        string                 `json:"message"`
		ClashingEvents *[]models.ClashingEvent `json:"clashing_events"`
	}
	// Any clashing_events array marks a clash, even an empty one.
	if apiErr.Decode(&payload) != nil || payload.ClashingEvents == nil {
		return nil
	}

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	events := *payload.ClashingEvents
	if events == nil {
		events = []models.ClashingEvent{}
	}
	return &ClashError{Message: msg, Events: events}
}

func eventParams(q models.EventQuery) url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category > 0 {
		v.Set("category", itoa(q.Category))
	}
	if q.University > 0 {
		v.Set("university", itoa(q.University))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}
