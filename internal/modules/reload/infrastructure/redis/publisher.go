package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/domain"
)

// DefaultChannel is the pub/sub channel reload events travel on.
const DefaultChannel = "imagetrigger:reload"

// Publisher sends reload events to other trigger processes via redis pub/sub.
// Events are stamped with origin so the publishing process's own relay can
// skip them.
type Publisher struct {
	client  *redis.Client
	channel string
	origin  string
}

func NewPublisher(client *redis.Client, channel, origin string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel, origin: origin}
}

func (p *Publisher) Name() string {
	return "redis"
}

func (p *Publisher) Notify(ctx context.Context, event domain.Event) error {
	event.Origin = p.origin
	payload, err := event.Marshal()
	if err != nil {
		return err
	}
	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.channel, err)
	}
	log.Printf("[Redis] reload %s published to %d subscribers", event.ID, receivers)
	return nil
}
