package session

import (
	"context"
	"sync"
	"time"

	"evex/pkg/apiclient"
	"evex/pkg/logger"
	"evex/pkg/services"
	"evex/pkg/tokenstore"

	"github.com/sirupsen/logrus"
)

// Entry bundles everything one browser session needs.
type Entry struct {
	Holder *Holder
	API    *services.Set
	Client *apiclient.Client

	lastSeen time.Time
}

// NewEntry wires a client, its services and the holder around one store.
// The client's auth-failure callback is the holder's Expire.
func NewEntry(sid, baseURL string, store tokenstore.Store, clientOpts []apiclient.Option, opts ...Option) *Entry {
	clientOpts = append(clientOpts, apiclient.WithCredentials(Credentials(store)))
	client := apiclient.New(baseURL, clientOpts...)
	set := services.NewSet(client)
	h := NewHolder(sid, store, set.Auth, opts...)
	client.OnAuthExpired(h.Expire)
	return &Entry{Holder: h, API: set, Client: client}
}

type EntryFactory func(sid string) *Entry

// Registry keeps one Entry per session id and drops idle ones.
type Registry struct {
	factory EntryFactory
	idle    time.Duration
	log     *logrus.Entry
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

func NewRegistry(factory EntryFactory, idle time.Duration, log logrus.FieldLogger) *Registry {
	return &Registry{
		factory: factory,
		idle:    idle,
		log:     logger.Component(log, "registry"),
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
}

// Get returns the entry for sid, creating it on first use.
func (r *Registry) Get(sid string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sid]
	if !ok {
		e = r.factory(sid)
		r.entries[sid] = e
		r.log.WithField("sid", sid).Debug("session created")
	}
	e.lastSeen = r.now()
	return e
}

// Lookup returns the entry for sid without creating one.
func (r *Registry) Lookup(sid string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	return e, ok
}

func (r *Registry) Forget(sid string) {
	r.mu.Lock()
	delete(r.entries, sid)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops entries unused for longer than the idle window and
// returns how many went.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for sid, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, sid)
			n++
		}
	}
	if n > 0 {
		r.log.WithField("evicted", n).Info("idle sessions dropped")
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
