package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/domain"
)

// Relay forwards reload events published by other trigger processes to a
// local notifier, usually the live-reload hub. Events stamped with its own
// origin were already delivered locally and are skipped.
type Relay struct {
	client  *redis.Client
	channel string
	origin  string
	target  domain.Notifier
}

func NewRelay(client *redis.Client, channel, origin string, target domain.Notifier) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Relay{client: client, channel: channel, origin: origin, target: target}
}

// Run subscribes and forwards until ctx is done. ready, when non-nil, is
// closed once the subscription is active; it stays open if subscribing
// fails.
func (r *Relay) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no event is missed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	log.Printf("[Relay] subscribed to %s", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			event, err := domain.ParseEvent([]byte(msg.Payload))
			if err != nil {
				log.Printf("[Relay] dropping message on %s: %v", r.channel, err)
				continue
			}
			if r.origin != "" && event.Origin == r.origin {
				continue
			}
			if err := r.target.Notify(ctx, event); err != nil {
				log.Printf("[Relay] %s failed for %s: %v", r.target.Name(), event.ID, err)
			}
		}
	}
}
