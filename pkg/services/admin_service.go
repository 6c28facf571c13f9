package services

import (
	"context"
	"net/url"

	"evex/pkg/models"
)

type AdminService interface {
	Analytics(ctx context.Context) (models.Stats, error)

	Events(ctx context.Context, university int, status string) ([]models.Event, error)
	Event(ctx context.Context, id int) (models.Event, error)
	UpdateEvent(ctx context.Context, id int, patch models.EventUpdate) (models.Event, error)
	DeleteEvent(ctx context.Context, id int) error

	Users(ctx context.Context, query url.Values) ([]models.User, error)
	User(ctx context.Context, id int) (models.User, error)
	UpdateUser(ctx context.Context, id int, patch models.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, id int) error

	Universities(ctx context.Context) ([]models.University, error)
	University(ctx context.Context, id int) (models.University, error)
	CreateUniversity(ctx context.Context, u models.University) (models.University, error)
	UpdateUniversity(ctx context.Context, id int, patch map[string]any) (models.University, error)
	DeleteUniversity(ctx context.Context, id int) error
}

type adminService struct {
	api API
}

func NewAdminService(api API) AdminService {
	return &adminService{api: api}
}

func (s *adminService) Analytics(ctx context.Context) (models.Stats, error) {
	var out models.Stats
	if err := s.api.Get(ctx, "/analytics/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *adminService) Events(ctx context.Context, university int, status string) ([]models.Event, error) {
	q := url.Values{}
	if university > 0 {
		q.Set("university", itoa(university))
	}
	if status != "" && status != "all" {
		q.Set("status", status)
	}
	return getList[models.Event](ctx, s.api, "/admin/events/", q)
}

func (s *adminService) Event(ctx context.Context, id int) (models.Event, error) {
	var e models.Event
	if err := s.api.Get(ctx, "/admin/events/"+itoa(id)+"/", nil, &e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *adminService) UpdateEvent(ctx context.Context, id int, patch models.EventUpdate) (models.Event, error) {
	var e models.Event
	if err := s.api.Patch(ctx, "/admin/events/"+itoa(id)+"/", patch, &e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *adminService) DeleteEvent(ctx context.Context, id int) error {
	return s.api.Delete(ctx, "/admin/events/"+itoa(id)+"/", nil)
}

func (s *adminService) Users(ctx context.Context, query url.Values) ([]models.User, error) {
	return getList[models.User](ctx, s.api, "/admin/users/", query)
}

func (s *adminService) User(ctx context.Context, id int) (models.User, error) {
	var u models.User
	if err := s.api.Get(ctx, "/admin/users/"+itoa(id)+"/", nil, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id int, patch models.UserUpdate) (models.User, error) {
	var u models.User
	if err := s.api.Patch(ctx, "/admin/users/"+itoa(id)+"/", patch, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id int) error {
	return s.api.Delete(ctx, "/admin/users/"+itoa(id)+"/", nil)
}

func (s *adminService) Universities(ctx context.Context) ([]models.University, error) {
	return getList[models.University](ctx, s.api, "/admin/universities/", nil)
}

func (s *adminService) University(ctx context.Context, id int) (models.University, error) {
	var u models.University
	if err := s.api.Get(ctx, "/admin/universities/"+itoa(id)+"/", nil, &u); err != nil {
		return models.University{}, err
	}
	return u, nil
}

func (s *adminService) CreateUniversity(ctx context.Context, u models.University) (models.University, error) {
	var out models.University
	if err := s.api.Post(ctx, "/admin/universities/", u, &out); err != nil {
		return models.University{}, err
	}
	return out, nil
}

func (s *adminService) UpdateUniversity(ctx context.Context, id int, patch map[string]any) (models.University, error) {
	var out models.University
	if err := s.api.Patch(ctx, "/admin/universities/"+itoa(id)+"/", patch, &out); err != nil {
		return models.University{}, err
	}
	return out, nil
}

func (s *adminService) DeleteUniversity(ctx context.Context, id int) error {
	return s.api.Delete(ctx, "/admin/universities/"+itoa(id)+"/", nil)
}
