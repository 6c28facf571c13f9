package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"evex/pkg/apiclient"
	"evex/pkg/logger"
	"evex/pkg/models"
	"evex/pkg/tokenstore"

	"github.com/sirupsen/logrus"
)

const ReasonExpired = "session.expired"

var errNoProfile = errors.New("session: no profile")

type AuthAPI interface {
	Login(ctx context.Context, username, password string) (models.TokenPair, error)
	Me(ctx context.Context) (models.Me, error)
	Profiles(ctx context.Context) ([]models.Profile, error)
}

// NotifyFunc receives the storage-change event emitted on forced logout.
type NotifyFunc func(ctx context.Context, sid, reason string)

// Holder is the single source of truth for who is logged in on one session.
// Concurrent logins are not de-duplicated; the last store write wins.
type Holder struct {
	id     string
	store  tokenstore.Store
	auth   AuthAPI
	notify NotifyFunc
	log    *logrus.Entry

	mu    sync.RWMutex
	state State
}

type Option func(*Holder)

func WithNotifier(fn NotifyFunc) Option {
	return func(h *Holder) { h.notify = fn }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Holder) { h.log = logger.Component(l, "session") }
}

func NewHolder(id string, store tokenstore.Store, auth AuthAPI, opts ...Option) *Holder {
	h := &Holder{
		id:    id,
		store: store,
		auth:  auth,
		log:   logger.Component(nil, "session"),
		state: Unknown{},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithField("sid", id)
	return h
}

func (h *Holder) ID() string {
	return h.id
}

func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// User returns the cached user when authenticated.
func (h *Holder) User() (models.User, bool) {
	a, ok := h.State().(Authenticated)
	return a.User, ok
}

func (h *Holder) Role() models.Role {
	return RoleOf(h.State())
}

func (h *Holder) set(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// Load resolves Unknown from storage plus one who-am-i round trip.
// A network failure leaves the state Unknown and the tokens in place.
func (h *Holder) Load(ctx context.Context) (State, error) {
	t, err := h.store.Load(ctx)
	if err != nil {
		return h.State(), fmt.Errorf("session: load tokens: %w", err)
	}
	if t.Access == "" {
		h.set(Anonymous{})
		return Anonymous{}, nil
	}

	user, err := h.whoAmI(ctx, "")
	switch {
	case err == nil:
		s := Authenticated{User: user}
		h.set(s)
		return s, nil
	case errors.Is(err, apiclient.ErrNetwork) && !errors.Is(err, apiclient.ErrAuthExpired):
		return h.State(), err
	case errors.Is(err, errNoProfile):
		h.set(Anonymous{})
		return Anonymous{}, nil
	}

	h.log.WithError(err).Info("who-am-i failed, dropping stored tokens")
	if cerr := h.store.Clear(ctx); cerr != nil {
		h.log.WithError(cerr).Warn("clear tokens")
	}
	h.set(Anonymous{})
	return Anonymous{}, nil
}

// Ensure runs Load only while the state is Unknown.
func (h *Holder) Ensure(ctx context.Context) (State, error) {
	if s := h.State(); !isUnknown(s) {
		return s, nil
	}
	return h.Load(ctx)
}

// Login stores both tokens, hydrates the user and returns its role.
// A failed login leaves the state untouched.
func (h *Holder) Login(ctx context.Context, identifier, password string) (models.Role, error) {
	pair, err := h.auth.Login(ctx, identifier, password)
	if err != nil {
		return models.RoleAnonymous, err
	}

	if err := h.store.Save(ctx, tokenstore.Tokens{Access: pair.Access, Refresh: pair.Refresh}); err != nil {
		return models.RoleAnonymous, fmt.Errorf("session: save tokens: %w", err)
	}

	user, err := h.whoAmI(ctx, identifier)
	if errors.Is(err, errNoProfile) {
		user, err = models.User{Username: identifier}, nil
	}
	if err != nil {
		if cerr := h.store.Clear(ctx); cerr != nil {
			h.log.WithError(cerr).Warn("clear tokens")
		}
		return models.RoleAnonymous, err
	}

	h.set(Authenticated{User: user})
	h.log.WithField("role", user.Role()).Info("logged in")
	return user.Role(), nil
}

// Logout clears both tokens and the cached user. Safe to call when anonymous.
func (h *Holder) Logout(ctx context.Context) error {
	err := h.store.Clear(ctx)
	h.set(Anonymous{})
	if err != nil {
		return fmt.Errorf("session: logout: %w", err)
	}
	return nil
}

// Expire is the API client's auth-failure callback.
func (h *Holder) Expire(ctx context.Context, cause error) {
	h.log.WithError(cause).Warn("forced logout")
	if err := h.store.Clear(ctx); err != nil {
		h.log.WithError(err).Warn("clear tokens")
	}
	h.set(Anonymous{})
	if h.notify != nil {
		h.notify(ctx, h.id, ReasonExpired)
	}
}

// Refresh re-fetches the user, used after a profile update.
func (h *Holder) Refresh(ctx context.Context) (State, error) {
	h.set(Unknown{})
	return h.Load(ctx)
}

func (h *Holder) whoAmI(ctx context.Context, username string) (models.User, error) {
	me, err := h.auth.Me(ctx)
	if err == nil {
		u := me.Merge()
		if u.Username == "" {
			u.Username = username
		}
		return u, nil
	}
	if errors.Is(err, apiclient.ErrAuthExpired) {
		return models.User{}, err
	}

	profiles, perr := h.auth.Profiles(ctx)
	if perr != nil {
		return models.User{}, fmt.Errorf("session: who am i: %w", errors.Join(err, perr))
	}
	if len(profiles) == 0 {
		return models.User{}, errNoProfile
	}

	p := profiles[0]
	if username == "" {
		username = strconv.Itoa(p.User)
	}
	return models.User{ID: p.User, Username: username, Profile: &p}, nil
}

func isUnknown(s State) bool {
	_, ok := s.(Unknown)
	return ok
}
