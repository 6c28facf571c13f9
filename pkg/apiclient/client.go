package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"evex/pkg/logger"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	tokenPrefix = "/token/"
	refreshPath = "/token/refresh/"
)

// Credentials is where the client reads tokens and reports a refreshed pair.
// The client never clears them.
type Credentials interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	// UpdateAccessToken stores a refreshed access token. refresh is empty
	// unless the backend rotated it.
	UpdateAccessToken(ctx context.Context, access, refresh string) error
}

// AuthExpiredFunc is called once per request whose 401 could not be recovered.
type AuthExpiredFunc func(ctx context.Context, err error)

// Observer receives request and refresh outcomes.
type Observer interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
	ObserveRefresh(ok bool)
}

type Client struct {
	baseURL string
	hc      *http.Client
	creds   Credentials
	log     *logrus.Entry
	metrics Observer

	refreshGroup singleflight.Group

	mu        sync.RWMutex
	onExpired AuthExpiredFunc
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = logger.Component(l, "apiclient") }
}

func WithMetrics(o Observer) Option {
	return func(c *Client) { c.metrics = o }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		log:     logger.Component(nil, "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnAuthExpired installs the single auth-failure callback.
func (c *Client) OnAuthExpired(fn AuthExpiredFunc) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

type response struct {
	status int
	body   []byte
}

// Do sends one request. A 401 triggers at most one refresh and one retry.
// Any other non-2xx is returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
	}

	// token endpoints authenticate by body; a stale bearer would be rejected
	tokenEndpoint := strings.HasPrefix(path, tokenPrefix)

	var access string
	if !tokenEndpoint {
		var err error
		if access, err = c.accessToken(ctx); err != nil {
			return fmt.Errorf("%s %s: read access token: %w", method, path, err)
		}
	}

	resp, err := c.send(ctx, method, path, query, payload, access)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && !tokenEndpoint {
		access, err = c.refresh(ctx)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		resp, err = c.send(ctx, method, path, query, payload, access)
		if err != nil {
			return err
		}
	}

	if resp.status < 200 || resp.status > 299 {
		return newAPIError(resp.status, resp.body)
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, access string) (response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: new request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	start := time.Now()
	res, err := c.hc.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: %w: %w", method, path, ErrNetwork, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return response{}, fmt.Errorf("%s %s: read body: %w: %w", method, path, ErrNetwork, err)
	}

	if c.metrics != nil {
		c.metrics.ObserveRequest(method, res.StatusCode, time.Since(start))
	}
	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": res.StatusCode,
	}).Debug("request")

	return response{status: res.StatusCode, body: raw}, nil
}

// refresh shares one in-flight exchange between concurrent 401s. The
// exchange is observed and, on failure, expired once however many requests
// wait on it.
func (c *Client) refresh(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		access, err := c.exchangeRefresh(ctx)
		if c.metrics != nil {
			c.metrics.ObserveRefresh(err == nil)
		}
		if err != nil {
			c.log.WithError(err).Warn("refresh failed, session expired")
			c.expire(ctx, err)
		}
		return access, err
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) exchangeRefresh(ctx context.Context) (string, error) {
	if c.creds == nil {
		return "", fmt.Errorf("%w: no credentials", ErrAuthExpired)
	}

	rt, err := c.creds.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: read refresh token: %w", ErrAuthExpired, err)
	}
	if rt == "" {
		return "", fmt.Errorf("%w: no refresh token", ErrAuthExpired)
	}

	payload, _ := json.Marshal(map[string]string{"refresh": rt})
	resp, err := c.send(ctx, http.MethodPost, refreshPath, nil, payload, "")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthExpired, err)
	}
	if resp.status < 200 || resp.status > 299 {
		return "", fmt.Errorf("%w: refresh: %w", ErrAuthExpired, newAPIError(resp.status, resp.body))
	}

	var reply struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(resp.body, &reply); err != nil || reply.Access == "" {
		return "", fmt.Errorf("%w: refresh: malformed reply", ErrAuthExpired)
	}

	if err := c.creds.UpdateAccessToken(ctx, reply.Access, reply.Refresh); err != nil {
		return "", fmt.Errorf("%w: store access token: %w", ErrAuthExpired, err)
	}

	c.log.Info("access token refreshed")
	return reply.Access, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.creds == nil {
		return "", nil
	}
	return c.creds.AccessToken(ctx)
}

func (c *Client) expire(ctx context.Context, err error) {
	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx, err)
	}
}
