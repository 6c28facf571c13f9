// Package tokenstore persists the session's two tokens, access_token and
// refresh_token, and nothing else.
package tokenstore

import (
	"context"
	"errors"
)

const (
	AccessKey  = "access_token"
	RefreshKey = "refresh_token"
)

var ErrNotFound = errors.New("tokenstore: no tokens")

type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

func (t Tokens) Empty() bool {
	return t.Access == "" && t.Refresh == ""
}

type Store interface {
	// Load returns empty Tokens, not an error, when nothing is stored.
	Load(ctx context.Context) (Tokens, error)
	Save(ctx context.Context, t Tokens) error
	SetAccess(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

// Factory returns the store of one browser session.
type Factory func(sid string) Store
