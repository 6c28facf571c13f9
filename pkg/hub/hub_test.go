package hub

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"evex/pkg/envelope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	in chan []byte

	mu     sync.Mutex
	out    []envelope.Envelope
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 8)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-f.in
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, msg, nil
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	env, err := envelope.Unmarshal(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.out = append(f.out, env)
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) sent() []envelope.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]envelope.Envelope(nil), f.out...)
}

func serve(t *testing.T, h *Hub, sid string) (*fakeConn, chan struct{}) {
	t.Helper()
	c := newFakeConn()
	done := make(chan struct{})
	go func() {
		h.Serve(context.Background(), c, sid)
		close(done)
	}()
	return c, done
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func TestDeliver_OnlyToSession(t *testing.T) {
	h := New(nil)
	a1, _ := serve(t, h, "a")
	a2, _ := serve(t, h, "a")
	b, _ := serve(t, h, "b")
	waitClients(t, h, 3)
	assert.Equal(t, 2, h.SessionCount())

	n := h.Deliver(envelope.NewStorage("a", "session.expired"))

	assert.Equal(t, 2, n)
	assert.Len(t, a1.sent(), 1)
	assert.Len(t, a2.sent(), 1)
	assert.Empty(t, b.sent())
}

func TestDeliver_EmptySIDBroadcasts(t *testing.T) {
	h := New(nil)
	a, _ := serve(t, h, "a")
	b, _ := serve(t, h, "b")
	waitClients(t, h, 2)

	env := envelope.New("maintenance", "portal")
	assert.Equal(t, 2, h.Deliver(env))
	assert.Len(t, a.sent(), 1)
	assert.Len(t, b.sent(), 1)
}

func TestServe_PingAndHandlers(t *testing.T) {
	h := New(nil)
	h.On("session.get", func(_ context.Context, env envelope.Envelope) (any, error) {
		return map[string]string{"sid": env.SID}, nil
	})
	h.On("boom", func(context.Context, envelope.Envelope) (any, error) {
		return nil, errors.New("nope")
	})

	c, done := serve(t, h, "s1")

	ping, _ := envelope.New(envelope.ActionPing, "").Marshal()
	get, _ := envelope.Envelope{ID: "r1", Action: "session.get", SID: "spoofed"}.Marshal()
	boom, _ := envelope.Envelope{ID: "r2", Action: "boom"}.Marshal()
	unknown, _ := envelope.Envelope{ID: "r3", Action: "nope"}.Marshal()
	c.in <- ping
	c.in <- get
	c.in <- boom
	c.in <- unknown
	c.in <- []byte("not json")
	close(c.in)
	<-done

	out := c.sent()
	require.Len(t, out, 5)
	assert.Equal(t, envelope.ActionPong, out[0].Action)

	assert.Equal(t, "session.get.result", out[1].Action)
	assert.Equal(t, "r1", out[1].ReplyTo)
	data, err := envelope.ParseData[map[string]string](out[1])
	require.NoError(t, err)
	assert.Equal(t, "s1", data["sid"])

	assert.Equal(t, "boom.error", out[2].Action)
	assert.Equal(t, 500, out[2].Error.Code)
	assert.Equal(t, 404, out[3].Error.Code)
	assert.Equal(t, envelope.ActionError, out[4].Action)

	assert.Zero(t, h.ClientCount())
	assert.True(t, c.closed)
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, envelope.Envelope) error {
	p.calls++
	return errors.New("redis down")
}

func TestStorageNotifier_FallsBackToLocal(t *testing.T) {
	h := New(nil)
	c, _ := serve(t, h, "s1")
	waitClients(t, h, 1)

	pub := &failingPublisher{}
	h.StorageNotifier(pub)(context.Background(), "s1", "session.expired")

	assert.Equal(t, 1, pub.calls)
	out := c.sent()
	require.Len(t, out, 1)
	assert.Equal(t, envelope.ActionStorage, out[0].Action)
}

func TestStorageNotifier_Local(t *testing.T) {
	h := New(nil)
	c, _ := serve(t, h, "s1")
	waitClients(t, h, 1)

	h.StorageNotifier(nil)(context.Background(), "s1", "logout")
	assert.Len(t, c.sent(), 1)
}
