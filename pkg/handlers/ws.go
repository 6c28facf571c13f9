package handlers

import (
	"context"

	"evex/pkg/envelope"
	"evex/pkg/hub"
	"evex/pkg/middleware"
	"evex/pkg/session"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const ActionSessionGet = "session.get"

// SocketHandler pushes storage changes to every tab of a browser session.
type SocketHandler struct {
	hub      *hub.Hub
	registry *session.Registry
}

func NewSocket(h *hub.Hub, reg *session.Registry) *SocketHandler {
	return &SocketHandler{hub: h, registry: reg}
}

func (s *SocketHandler) RegisterActions() {
	s.hub.On(ActionSessionGet, s.session)
}

type sessionQuery struct {
	Path string `json:"path"`
}

// session answers a tab that missed a storage event and wants the current
// state. A tab that sends its path learns whether it must go to the login page.
func (s *SocketHandler) session(ctx context.Context, env envelope.Envelope) (any, error) {
	var q sessionQuery
	if len(env.Data) > 0 {
		q, _ = envelope.ParseData[sessionQuery](env)
	}

	e, ok := s.registry.Lookup(env.SID)
	if !ok {
		return viewAt(session.Anonymous{}, q.Path), nil
	}
	st, err := e.Holder.Ensure(ctx)
	if _, unknown := st.(session.Unknown); unknown && err != nil {
		return nil, err
	}
	return viewAt(st, q.Path), nil
}

func (s *SocketHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func (s *SocketHandler) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		sid, _ := c.Locals(middleware.LocalSID).(string)
		s.hub.Serve(context.Background(), c, sid)
	})
}
