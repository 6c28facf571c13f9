package services

import (
	"context"

	"evex/pkg/models"
)

type CatalogService interface {
	Universities(ctx context.Context) ([]models.University, error)
	University(ctx context.Context, id int) (models.University, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Venues(ctx context.Context) ([]models.Venue, error)
}

type catalogService struct {
	api API
}

func NewCatalogService(api API) CatalogService {
	return &catalogService{api: api}
}

func (s *catalogService) Universities(ctx context.Context) ([]models.University, error) {
	return getList[models.University](ctx, s.api, "/universities/", nil)
}

func (s *catalogService) University(ctx context.Context, id int) (models.University, error) {
	var u models.University
	if err := s.api.Get(ctx, "/universities/"+itoa(id)+"/", nil, &u); err != nil {
		return models.University{}, err
	}
	return u, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return getList[models.Category](ctx, s.api, "/categories/", nil)
}

func (s *catalogService) Venues(ctx context.Context) ([]models.Venue, error) {
	return getList[models.Venue](ctx, s.api, "/venues/", nil)
}
