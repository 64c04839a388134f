package realtime

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

// DefaultChannel is the Redis pub/sub channel shared by all instances.
const DefaultChannel = "iawashing:dashboard"

// RedisBridge shares dashboard events between server instances. Events are
// published to Redis only; every instance, including the sender, relays what
// it receives into its local Hub.
type RedisBridge struct {
	client  redis.UniversalClient
	hub     *Hub
	channel string
	pubsub  *redis.PubSub
	doneCh  chan struct{}
}

var _ interfaces.EventPublisher = &RedisBridge{}

type RedisOption func(*RedisBridge)

func WithChannel(channel string) RedisOption {
	return func(b *RedisBridge) {
		b.channel = channel
	}
}

func NewRedisBridge(client redis.UniversalClient, hub *Hub, opts ...RedisOption) *RedisBridge {
	b := &RedisBridge{
		client:  client,
		hub:     hub,
		channel: DefaultChannel,
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBridge) Publish(ctx context.Context, event *model.DashboardEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "failed to encode dashboard event")
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return goerr.Wrap(err, "failed to publish dashboard event",
			goerr.V("channel", b.channel),
			goerr.V("session_id", event.SessionID))
	}
	return nil
}

// Start subscribes to the channel and returns once the subscription is
// confirmed. Received events are relayed until Stop is called or ctx ends.
func (b *RedisBridge) Start(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return goerr.Wrap(err, "failed to subscribe dashboard channel", goerr.V("channel", b.channel))
	}
	b.pubsub = pubsub

	logging.Default().Info("Redis dashboard bridge started", "channel", b.channel)
	go b.run(ctx, pubsub.Channel())
	return nil
}

// Stop closes the subscription and waits for the relay loop to exit.
func (b *RedisBridge) Stop() {
	if b.pubsub == nil {
		return
	}
	if err := b.pubsub.Close(); err != nil {
		logging.Default().Warn("failed to close redis subscription", "error", err.Error())
	}
	<-b.doneCh
	logging.Default().Info("Redis dashboard bridge stopped")
}

func (b *RedisBridge) run(ctx context.Context, ch <-chan *redis.Message) {
	defer close(b.doneCh)

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event model.DashboardEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logging.Default().Warn("invalid dashboard event on redis channel",
					"channel", msg.Channel,
					"error", err.Error())
				continue
			}
			if err := b.hub.Publish(ctx, &event); err != nil {
				logging.Default().Warn("failed to relay dashboard event", "error", err.Error())
			}

		case <-ctx.Done():
			return
		}
	}
}
