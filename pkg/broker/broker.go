package broker

import (
	"context"
	"sync"

	"evex/pkg/envelope"
	"evex/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Channel carries storage events between portal instances.
const Channel = "evex:events"

type HandlerFunc func(envelope.Envelope)

// Broker fans envelopes out over redis pub/sub so a forced logout seen by
// one portal instance reaches sockets held by another.
type Broker struct {
	rdb     redis.UniversalClient
	channel string
	log     *logrus.Entry

	handlers sync.Map
}

func New(rdb redis.UniversalClient, log logrus.FieldLogger) *Broker {
	return &Broker{
		rdb:     rdb,
		channel: Channel,
		log:     logger.Component(log, "broker"),
	}
}

func (b *Broker) Publish(ctx context.Context, env envelope.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, data).Err()
}

func (b *Broker) On(action string, fn HandlerFunc) {
	b.handlers.Store(action, fn)
}

// Run consumes the channel until ctx is done.
func (b *Broker) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.log.WithField("channel", b.channel).Info("subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch([]byte(msg.Payload))
		}
	}
}

func (b *Broker) dispatch(payload []byte) {
	env, err := envelope.Unmarshal(payload)
	if err != nil {
		b.log.WithError(err).Debug("dropping malformed message")
		return
	}
	if fn, ok := b.handlers.Load(env.Action); ok {
		fn.(HandlerFunc)(env)
	}
}
