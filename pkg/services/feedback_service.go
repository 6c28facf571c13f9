package services

import (
	"context"
	"strings"

	"evex/pkg/models"
)

type FeedbackService interface {
	List(ctx context.Context) ([]models.Feedback, error)
	Get(ctx context.Context, id int) (models.Feedback, error)
	Create(ctx context.Context, in models.FeedbackInput) (models.Feedback, error)
	Update(ctx context.Context, id int, patch models.FeedbackUpdate) (models.Feedback, error)
	Delete(ctx context.Context, id int) error
	AttendedEvents(ctx context.Context) ([]models.Event, error)
}

type feedbackService struct {
	api API
}

func NewFeedbackService(api API) FeedbackService {
	return &feedbackService{api: api}
}

func (s *feedbackService) List(ctx context.Context) ([]models.Feedback, error) {
	return getList[models.Feedback](ctx, s.api, "/feedback/", nil)
}

func (s *feedbackService) Get(ctx context.Context, id int) (models.Feedback, error) {
	var f models.Feedback
	if err := s.api.Get(ctx, "/feedback/"+itoa(id)+"/", nil, &f); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

func (s *feedbackService) Create(ctx context.Context, in models.FeedbackInput) (models.Feedback, error) {
	in.Comment = strings.TrimSpace(in.Comment)

	var f models.Feedback
	if err := s.api.Post(ctx, "/feedback/", in, &f); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

func (s *feedbackService) Update(ctx context.Context, id int, patch models.FeedbackUpdate) (models.Feedback, error) {
	var f models.Feedback
	if err := s.api.Patch(ctx, "/feedback/"+itoa(id)+"/", patch, &f); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

func (s *feedbackService) Delete(ctx context.Context, id int) error {
	return s.api.Delete(ctx, "/feedback/"+itoa(id)+"/", nil)
}

func (s *feedbackService) AttendedEvents(ctx context.Context) ([]models.Event, error) {
	return getList[models.Event](ctx, s.api, "/feedback/attended_events/", nil)
}
