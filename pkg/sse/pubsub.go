package sse

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel shared by every instance.
const DefaultChannel = "groupnet:notifications:sse"

type redisEnvelope struct {
	UserID uint            `json:"user_id"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data,omitempty"`
	SentAt time.Time       `json:"sent_at"`
}

// RedisBridge fans events out through Redis Pub/Sub so that a stream open on any
// instance receives events published on any other. While Run is not relaying,
// events are also delivered to the local hub directly.
type RedisBridge struct {
	client   *redis.Client
	channel  string
	hub      *Hub
	relaying atomic.Bool
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{client: client, channel: channel, hub: hub}
}

// Relaying reports whether Run is subscribed and feeding the local hub.
func (b *RedisBridge) Relaying() bool {
	return b.relaying.Load()
}

// Publish sends ev to the shared channel. Local streams get it straight from the
// hub when Redis refuses it or Run is not relaying.
func (b *RedisBridge) Publish(userID uint, ev Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		slog.Error("sse: encode event data failed", "type", ev.Type, "error", err)
		return
	}
	body, err := json.Marshal(redisEnvelope{UserID: userID, Type: ev.Type, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		slog.Error("sse: encode redis envelope failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.client.Publish(ctx, b.channel, body).Err(); err != nil {
		slog.Warn("sse: redis publish failed, delivering locally", "channel", b.channel, "error", err)
		b.hub.Publish(userID, ev)
		return
	}
	if !b.relaying.Load() {
		b.hub.Publish(userID, ev)
	}
}

// Run relays messages from the shared channel into the local hub until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	slog.Info("sse: redis bridge subscribed", "channel", b.channel)
	b.relaying.Store(true)
	defer b.relaying.Store(false)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env redisEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Warn("sse: bad redis message", "channel", b.channel, "error", err)
				continue
			}
			if env.UserID == 0 || env.Type == "" {
				continue
			}
			b.hub.Publish(env.UserID, Event{Type: env.Type, Data: env.Data})
		}
	}
}
