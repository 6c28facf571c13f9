package hub

import (
	"context"
	"net/http"
	"sync"

	"evex/pkg/envelope"
	"evex/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

// Conn is the part of a websocket connection the hub uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// ActionHandler answers one inbound envelope. The returned value becomes
// the reply's data.
type ActionHandler func(ctx context.Context, env envelope.Envelope) (any, error)

type clientConn struct {
	conn Conn
	sid  string
	mu   sync.Mutex
	log  *logrus.Entry
}

func (cc *clientConn) send(data []byte) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err := cc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		cc.log.WithError(err).Debug("send failed")
	}
}

func (cc *clientConn) sendEnvelope(env envelope.Envelope) {
	data, err := env.Marshal()
	if err != nil {
		return
	}
	cc.send(data)
}

// Hub tracks every socket by browser session so a storage change reaches
// all tabs of that session.
type Hub struct {
	log *logrus.Entry

	mu       sync.RWMutex
	clients  map[*clientConn]struct{}
	bySID    map[string][]*clientConn
	handlers map[string]ActionHandler
}

func New(log logrus.FieldLogger) *Hub {
	return &Hub{
		log:      logger.Component(log, "hub"),
		clients:  make(map[*clientConn]struct{}),
		bySID:    make(map[string][]*clientConn),
		handlers: make(map[string]ActionHandler),
	}
}

func (h *Hub) On(action string, fn ActionHandler) {
	h.mu.Lock()
	h.handlers[action] = fn
	h.mu.Unlock()
}

// Serve runs the read loop for c until it closes.
func (h *Hub) Serve(ctx context.Context, c Conn, sid string) {
	cc := &clientConn{conn: c, sid: sid, log: h.log.WithField("sid", sid)}
	h.add(cc)
	cc.log.WithField("total", h.ClientCount()).Debug("client connected")

	defer func() {
		h.remove(cc)
		c.Close()
		cc.log.WithField("total", h.ClientCount()).Debug("client disconnected")
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}

		env, err := envelope.Unmarshal(raw)
		if err != nil {
			cc.sendEnvelope(envelope.Envelope{
				Action: envelope.ActionError,
				Error:  &envelope.ErrorPayload{Code: http.StatusBadRequest, Message: "invalid JSON"},
			})
			continue
		}

		if env.Action == envelope.ActionPing {
			cc.sendEnvelope(envelope.New(envelope.ActionPong, "hub"))
			continue
		}

		// the socket's session wins over whatever the browser claims
		env.SID = sid

		h.mu.RLock()
		handler, ok := h.handlers[env.Action]
		h.mu.RUnlock()
		if !ok {
			cc.sendEnvelope(envelope.NewError(env, http.StatusNotFound, "unknown action: "+env.Action))
			continue
		}

		data, err := handler(ctx, env)
		if err != nil {
			cc.sendEnvelope(envelope.NewError(env, http.StatusInternalServerError, err.Error()))
			continue
		}
		reply, err := envelope.NewReply(env, data)
		if err != nil {
			continue
		}
		cc.sendEnvelope(reply)
	}
}

func (h *Hub) add(cc *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cc] = struct{}{}
	h.bySID[cc.sid] = append(h.bySID[cc.sid], cc)
}

func (h *Hub) remove(cc *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, cc)
	conns := h.bySID[cc.sid]
	for i, c := range conns {
		if c == cc {
			h.bySID[cc.sid] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.bySID[cc.sid]) == 0 {
		delete(h.bySID, cc.sid)
	}
}

// Deliver writes env to the sockets of env.SID, or to everyone when SID is
// empty. It returns how many sockets were written.
func (h *Hub) Deliver(env envelope.Envelope) int {
	data, err := env.Marshal()
	if err != nil {
		return 0
	}

	h.mu.RLock()
	var targets []*clientConn
	if env.SID != "" {
		targets = append(targets, h.bySID[env.SID]...)
	} else {
		for cc := range h.clients {
			targets = append(targets, cc)
		}
	}
	h.mu.RUnlock()

	for _, cc := range targets {
		cc.send(data)
	}
	return len(targets)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bySID)
}
