package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"forms-service/internal/services"
)

// Broadcaster delivers an event to every member of a room, the sender included.
type Broadcaster interface {
	Broadcast(ctx context.Context, room string, event MessageType, data any) error
}

// LocalBroadcaster fans out to the rooms of this process only.
type LocalBroadcaster struct {
	hub *Hub
}

func NewLocalBroadcaster(hub *Hub) *LocalBroadcaster {
	return &LocalBroadcaster{hub: hub}
}

func (b *LocalBroadcaster) Broadcast(_ context.Context, room string, event MessageType, data any) error {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: %w", event, err)
	}
	n := b.hub.BroadcastToRoom(room, frame)
	slog.Debug("Broadcast to room", "room", room, "event", event, "delivered", n)
	return nil
}

// RedisBroadcaster publishes frames on the template:<id> channel. Every process running
// Listen delivers them to its local room members, this one included.
type RedisBroadcaster struct {
	redis *services.RedisService
	hub   *Hub
}

func NewRedisBroadcaster(redis *services.RedisService, hub *Hub) *RedisBroadcaster {
	return &RedisBroadcaster{redis: redis, hub: hub}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, room string, event MessageType, data any) error {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: %w", event, err)
	}
	return b.redis.PublishTemplateEvent(ctx, room, frame)
}

// Listen relays bus messages into local rooms until ctx is cancelled. ready is closed once
// the subscription is confirmed.
func (b *RedisBroadcaster) Listen(ctx context.Context, ready chan<- struct{}) error {
	pubsub := b.redis.PSubscribe(ctx, services.TemplateChannelAll)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to template events: %w", err)
	}
	if ready != nil {
		close(ready)
	}
	slog.Info("Listening for template events", "pattern", services.TemplateChannelAll)

	prefix := strings.TrimSuffix(services.TemplateChannelAll, "*")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			room := strings.TrimPrefix(msg.Channel, prefix)
			n := b.hub.BroadcastToRoom(room, []byte(msg.Payload))
			slog.Debug("Relayed template event", "room", room, "delivered", n)
		}
	}
}
