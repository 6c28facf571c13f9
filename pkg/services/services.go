package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// API is the transport every endpoint group is built on.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Set bundles the endpoint groups bound to one session's client.
type Set struct {
	Auth      AuthService
	Profile   ProfileService
	Events    EventService
	Catalog   CatalogService
	Organizer OrganizerService
	Admin     AdminService
	Feedback  FeedbackService
}

func NewSet(api API) *Set {
	return &Set{
		Auth:      NewAuthService(api),
		Profile:   NewProfileService(api),
		Events:    NewEventService(api),
		Catalog:   NewCatalogService(api),
		Organizer: NewOrganizerService(api),
		Admin:     NewAdminService(api),
		Feedback:  NewFeedbackService(api),
	}
}

// list accepts a bare array, {"results": [...]} or {"data": [...]}.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var wrapped struct {
		Results []T `json:"results"`
		Data    []T `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	if wrapped.Results != nil {
		*l = wrapped.Results
	} else {
		*l = wrapped.Data
	}
	return nil
}

func getList[T any](ctx context.Context, api API, path string, query url.Values) ([]T, error) {
	var l list[T]
	if err := api.Get(ctx, path, query, &l); err != nil {
		return nil, err
	}
	if l == nil {
		return []T{}, nil
	}
	return l, nil
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
