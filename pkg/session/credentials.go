package session

import (
	"context"

	"evex/pkg/apiclient"
	"evex/pkg/tokenstore"
)

type storeCredentials struct {
	store tokenstore.Store
}

// Credentials lets the API client read the stored tokens and record a
// refreshed access token. Clearing stays with the Holder.
func Credentials(store tokenstore.Store) apiclient.Credentials {
	return storeCredentials{store: store}
}

func (c storeCredentials) AccessToken(ctx context.Context) (string, error) {
	t, err := c.store.Load(ctx)
	return t.Access, err
}

func (c storeCredentials) RefreshToken(ctx context.Context) (string, error) {
	t, err := c.store.Load(ctx)
	return t.Refresh, err
}

func (c storeCredentials) UpdateAccessToken(ctx context.Context, access, refresh string) error {
	if refresh != "" {
		return c.store.Save(ctx, tokenstore.Tokens{Access: access, Refresh: refresh})
	}
	return c.store.SetAccess(ctx, access)
}
