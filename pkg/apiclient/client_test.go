package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds struct {
	mu      sync.Mutex
	access  string
	refresh string
	updates int
}

func (f *fakeCreds) AccessToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, nil
}

func (f *fakeCreds) RefreshToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh, nil
}

func (f *fakeCreds) UpdateAccessToken(_ context.Context, access, refresh string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = access
	if refresh != "" {
		f.refresh = refresh
	}
	f.updates++
	return nil
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithCredentials(&fakeCreds{access: "tok-1"}))
	var out map[string]bool
	require.NoError(t, c.Get(context.Background(), "/events/", nil, &out))

	assert.Equal(t, "Bearer tok-1", got)
	assert.True(t, out["ok"])
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, WithCredentials(&fakeCreds{}))
	require.NoError(t, c.Get(context.Background(), "/events/", nil, nil))
	assert.False(t, present)
}

func TestDo_RefreshesOnceAndRetries(t *testing.T) {
	var calls, refreshes int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/refresh/":
			atomic.AddInt32(&refreshes, 1)
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "rt", body["refresh"])
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Write([]byte(`{"access":"fresh"}`))
		case "/profiles/update_me/":
			atomic.AddInt32(&calls, 1)
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "Ada", body["first_name"])
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Given token not valid"}`))
				return
			}
			w.Write([]byte(`{"first_name":"Ada"}`))
		}
	}))
	defer srv.Close()

	creds := &fakeCreds{access: "stale", refresh: "rt"}
	c := New(srv.URL, WithCredentials(creds))
	expired := false
	c.OnAuthExpired(func(context.Context, error) { expired = true })

	var out map[string]string
	err := c.Patch(context.Background(), "/profiles/update_me/", map[string]string{"first_name": "Ada"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Ada", out["first_name"])
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshes))
	assert.Equal(t, "fresh", creds.access)
	assert.False(t, expired)
}

func TestDo_RetriedRequestDoesNotRefreshAgain(t *testing.T) {
	var calls, refreshes int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			atomic.AddInt32(&refreshes, 1)
			w.Write([]byte(`{"access":"fresh"}`))
			return
		}
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"nope"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithCredentials(&fakeCreds{access: "a", refresh: "r"}))
	err := c.Get(context.Background(), "/registrations/", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "nope", apiErr.Message())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshes))
}

func TestDo_RefreshFailureReportsAuthExpired(t *testing.T) {
	var refreshes int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			atomic.AddInt32(&refreshes, 1)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := &fakeCreds{access: "a", refresh: "r"}
	c := New(srv.URL, WithCredentials(creds))

	var callbackErr error
	c.OnAuthExpired(func(_ context.Context, err error) { callbackErr = err })

	err := c.Get(context.Background(), "/profiles/me/", nil, nil)
	require.ErrorIs(t, err, ErrAuthExpired)
	require.ErrorIs(t, callbackErr, ErrAuthExpired)
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshes))
	// storage belongs to the callback owner, not the transport
	assert.Equal(t, "a", creds.access)
	assert.Zero(t, creds.updates)
}

func TestDo_MissingRefreshTokenIsExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEqual(t, "/token/refresh/", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	called := 0
	c := New(srv.URL, WithCredentials(&fakeCreds{access: "a"}))
	c.OnAuthExpired(func(context.Context, error) { called++ })

	err := c.Get(context.Background(), "/notifications/", nil, nil)
	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.Equal(t, 1, called)
}

func TestDo_RotatedRefreshTokenIsStored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			w.Write([]byte(`{"access":"a2","refresh":"r2"}`))
			return
		}
		if r.Header.Get("Authorization") != "Bearer a2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	creds := &fakeCreds{access: "a1", refresh: "r1"}
	c := New(srv.URL, WithCredentials(creds))
	require.NoError(t, c.Delete(context.Background(), "/profiles/delete_me/", nil))
	assert.Equal(t, "r2", creds.refresh)
}

func TestDo_ErrorPayloadVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"username":["A user with that username already exists."]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Post(context.Background(), "/register/", map[string]string{"username": "alice"}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, "username: A user with that username already exists.", apiErr.Message())
	payload, ok := apiErr.Payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, payload, "username")
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>Bad Gateway</html>\n"))
	}))
	defer srv.Close()

	err := New(srv.URL).Get(context.Background(), "/events/", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "<html>Bad Gateway</html>", apiErr.Payload)
	assert.Equal(t, "<html>Bad Gateway</html>", apiErr.Message())
}

func TestDo_MessagePrecedence(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":"e","message":"m","detail":"d"}`, "e"},
		{`{"message":"m","detail":"d"}`, "m"},
		{`{"detail":"No active account found with the given credentials"}`, "No active account found with the given credentials"},
		{`["first"]`, "first"},
		{``, "Internal Server Error"},
	}
	for _, tt := range tests {
		e := newAPIError(http.StatusInternalServerError, []byte(tt.body))
		assert.Equal(t, tt.want, e.Message(), tt.body)
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url).Get(context.Background(), "/events/", nil, nil)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, errors.Is(err, ErrAuthExpired))
}

func TestDo_ConcurrentRefreshIsShared(t *testing.T) {
	var refreshes int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			atomic.AddInt32(&refreshes, 1)
			<-release
			w.Write([]byte(`{"access":"fresh"}`))
			return
		}
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithCredentials(&fakeCreds{access: "stale", refresh: "rt"}))

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Get(context.Background(), "/events/", nil, nil)
		}()
	}

	for atomic.LoadInt32(&refreshes) == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&refreshes), int32(4))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&refreshes), int32(1))
}

func TestDo_SharedRefreshFailureExpiresOnce(t *testing.T) {
	const callers = 4
	var refreshes, rejected, expired int32
	allRejected := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			atomic.AddInt32(&refreshes, 1)
			<-allRejected
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if atomic.AddInt32(&rejected, 1) == callers {
			close(allRejected)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, WithCredentials(&fakeCreds{access: "stale", refresh: "rt"}))
	c.OnAuthExpired(func(context.Context, error) { atomic.AddInt32(&expired, 1) })

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.ErrorIs(t, c.Get(context.Background(), "/events/", nil, nil), ErrAuthExpired)
		}()
	}
	wg.Wait()

	// every failed exchange expires the session exactly once
	assert.Equal(t, atomic.LoadInt32(&refreshes), atomic.LoadInt32(&expired))
	assert.Less(t, atomic.LoadInt32(&expired), int32(callers+1))
}

func TestDo_TokenEndpointSkipsAuth(t *testing.T) {
	var refreshed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			refreshed = true
		}
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
	}))
	defer srv.Close()

	called := false
	c := New(srv.URL, WithCredentials(&fakeCreds{access: "stale", refresh: "r"}))
	c.OnAuthExpired(func(context.Context, error) { called = true })

	err := c.Post(context.Background(), "/token/", map[string]string{"username": "alice", "password": "bad"}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No active account found with the given credentials", apiErr.Message())
	assert.False(t, refreshed)
	assert.False(t, called)
}
