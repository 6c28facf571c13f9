package services

import (
	"context"

	"evex/pkg/models"
)

type ProfileService interface {
	Update(ctx context.Context, patch models.ProfileUpdate) (models.Me, error)
	DeleteMe(ctx context.Context) error
	Registrations(ctx context.Context) ([]models.Registration, error)
	Attendance(ctx context.Context) ([]models.Registration, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) error
	StudentOverview(ctx context.Context) (models.StudentOverview, error)
}

type profileService struct {
	api API
}

func NewProfileService(api API) ProfileService {
	return &profileService{api: api}
}

func (s *profileService) Update(ctx context.Context, patch models.ProfileUpdate) (models.Me, error) {
	var me models.Me
	if err := s.api.Patch(ctx, "/profiles/update_me/", patch, &me); err != nil {
		return models.Me{}, err
	}
	return me, nil
}

func (s *profileService) DeleteMe(ctx context.Context) error {
	return s.api.Delete(ctx, "/profiles/delete_me/", nil)
}

func (s *profileService) Registrations(ctx context.Context) ([]models.Registration, error) {
	return getList[models.Registration](ctx, s.api, "/registrations/", nil)
}

func (s *profileService) Attendance(ctx context.Context) ([]models.Registration, error) {
	return getList[models.Registration](ctx, s.api, "/attendance/", nil)
}

func (s *profileService) Notifications(ctx context.Context) ([]models.Notification, error) {
	return getList[models.Notification](ctx, s.api, "/notifications/", nil)
}

func (s *profileService) MarkAllNotificationsRead(ctx context.Context) error {
	return s.api.Post(ctx, "/notifications/mark_all_read/", nil, nil)
}

func (s *profileService) StudentOverview(ctx context.Context) (models.StudentOverview, error) {
	var out models.StudentOverview
	if err := s.api.Get(ctx, "/student/overview/", nil, &out); err != nil {
		return models.StudentOverview{}, err
	}
	return out, nil
}
