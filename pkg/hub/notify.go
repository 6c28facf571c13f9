package hub

import (
	"context"

	"evex/pkg/envelope"
)

// Publisher fans an envelope out to every portal instance.
type Publisher interface {
	Publish(ctx context.Context, env envelope.Envelope) error
}

// StorageNotifier builds the session holder's notify callback. With a
// publisher the event goes through it and comes back via the broker;
// without one, or if publishing fails, it is delivered locally.
func (h *Hub) StorageNotifier(pub Publisher) func(ctx context.Context, sid, reason string) {
	return func(ctx context.Context, sid, reason string) {
		env := envelope.NewStorage(sid, reason)
		if pub != nil {
			err := pub.Publish(ctx, env)
			if err == nil {
				return
			}
			h.log.WithError(err).WithField("sid", sid).Warn("publish storage event, delivering locally")
		}
		h.Deliver(env)
	}
}
