package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"evex/pkg/models"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (models.TokenPair, error)
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Me(ctx context.Context) (models.Me, error)
	// Profiles is the older /profiles/ lookup used when /me is unavailable.
	Profiles(ctx context.Context) ([]models.Profile, error)
}

type authService struct {
	api API
}

func NewAuthService(api API) AuthService {
	return &authService{api: api}
}

func (s *authService) Login(ctx context.Context, username, password string) (models.TokenPair, error) {
	var pair models.TokenPair
	err := s.api.Post(ctx, "/token/", models.LoginRequest{Username: username, Password: password}, &pair)
	if err != nil {
		return models.TokenPair{}, err
	}
	if pair.Access == "" {
		return models.TokenPair{}, fmt.Errorf("login: empty access token")
	}
	return pair, nil
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var user models.User
	if err := s.api.Post(ctx, "/register/", req, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context) (models.Me, error) {
	var me models.Me
	if err := s.api.Get(ctx, "/profiles/me/", nil, &me); err != nil {
		return models.Me{}, err
	}
	return me, nil
}

func (s *authService) Profiles(ctx context.Context) ([]models.Profile, error) {
	var out oneOrMany[models.Profile]
	if err := s.api.Get(ctx, "/profiles/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// oneOrMany accepts a list shape or a single object.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(b, &probe); err != nil {
			return err
		}
		_, hasResults := probe["results"]
		_, hasData := probe["data"]
		if !hasResults && !hasData {
			var one T
			if err := json.Unmarshal(b, &one); err != nil {
				return err
			}
			*o = []T{one}
			return nil
		}
	}

	var l list[T]
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	*o = oneOrMany[T](l)
	return nil
}
