package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Relay mirrors hub events over a Redis pub/sub channel so every gateway
// instance refreshes its screens. Events carry the publishing instance's
// origin and are ignored when they come back to it.
type Relay struct {
	client  *redis.Client
	channel string
	origin  string
	hub     *Hub
}

func NewRelay(client *redis.Client, channel string, h *Hub) *Relay {
	if channel == "" {
		channel = Channel
	}
	return &Relay{client: client, channel: channel, origin: uuid.NewString(), hub: h}
}

// Publish is fire-and-forget; failures are logged only.
func (r *Relay) Publish(ctx context.Context, event Event) {
	event.Origin = r.origin
	if event.Type == "" {
		event.Type = EventTurnsUpdated
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("encode relay event failed err=%v", err)
		return
	}
	if err := r.client.Publish(ctx, r.channel, string(payload)).Err(); err != nil {
		log.Printf("redis publish failed channel=%s err=%v", r.channel, err)
	}
}

// Run forwards events published by other instances into the local hub until
// ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	log.Printf("redis relay subscribed channel=%s origin=%s", r.channel, r.origin)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *Relay) handle(payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Printf("invalid relay payload err=%v", err)
		return
	}
	if event.Origin == r.origin {
		return
	}
	r.hub.Broadcast(event)
}
