package reload

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/application"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/domain"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/infrastructure/amqp"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/infrastructure/httpreload"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/infrastructure/redis"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/infrastructure/websocket"
	reload_http "github.com/stegoweb/imagetrigger/internal/modules/reload/interfaces/http"
	"github.com/stegoweb/imagetrigger/internal/shared/infrastructure/config"
	"github.com/stegoweb/imagetrigger/internal/shared/infrastructure/database"
)

const (
	NotifierWebsocket = "websocket"
	NotifierHTTP      = "http"
	NotifierRedis     = "redis"
	NotifierAMQP      = "amqp"
)

// Module represents the reload module
type Module struct {
	service *application.ReloadService
	handler *reload_http.ReloadHandler
	hub     *websocket.Hub

	redisClient *goredis.Client
	relay       *redis.Relay
	amqp        *amqp.Publisher
}

// NewModule builds the notifiers named in cfg.Reload.Notifiers. With redis
// enabled, events from other processes reach the local hub through the
// relay; this process's own events go to the hub directly.
func NewModule(ctx context.Context, cfg config.Config, client *http.Client) (*Module, error) {
	hub := websocket.NewHub()
	go hub.Run()

	m := &Module{
		handler: reload_http.NewReloadHandler(hub, cfg.Server.AllowedOrigins),
		hub:     hub,
	}
	origin := uuid.NewString()

	var notifiers []domain.Notifier
	for _, name := range cfg.Reload.Notifiers {
		switch name {
		case NotifierWebsocket:
			notifiers = append(notifiers, hub)
		case NotifierHTTP:
			notifiers = append(notifiers, httpreload.NewReloader(cfg.Reload.PageURL, cfg.Reload.Timeout, client))
		case NotifierRedis:
			rdb, err := database.NewRedis(ctx, cfg.Redis)
			if err != nil {
				m.Close()
				return nil, err
			}
			m.redisClient = rdb
			notifiers = append(notifiers, redis.NewPublisher(rdb, cfg.Reload.RedisChannel, origin))
			if cfg.Reload.HasNotifier(NotifierWebsocket) {
				m.relay = redis.NewRelay(rdb, cfg.Reload.RedisChannel, origin, hub)
			}
		case NotifierAMQP:
			pub, err := amqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
			if err != nil {
				m.Close()
				return nil, err
			}
			m.amqp = pub
			notifiers = append(notifiers, pub)
		default:
			m.Close()
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNotifier, name)
		}
	}

	m.service = application.NewReloadService(cfg.Reload.Page, notifiers...)
	log.Printf("[Reload] notifiers: %v", m.service.Notifiers())

	return m, nil
}

// Run starts the redis relay, if any, and returns once it is subscribed so
// no event published afterwards is missed. The relay stops with ctx.
func (m *Module) Run(ctx context.Context) error {
	if m.relay == nil {
		return nil
	}

	ready := make(chan struct{})
	errs := make(chan error, 1)
	go func() { errs <- m.relay.Run(ctx, ready) }()

	select {
	case <-ready:
	case err := <-errs:
		return err
	}

	go func() {
		if err := <-errs; err != nil {
			log.Printf("[Reload] relay stopped: %v", err)
		}
	}()
	return nil
}

func (m *Module) Service() *application.ReloadService {
	return m.service
}

func (m *Module) HTTPHandler() *reload_http.ReloadHandler {
	return m.handler
}

func (m *Module) Hub() *websocket.Hub {
	return m.hub
}

// Close stops the hub and releases broker connections.
func (m *Module) Close() {
	m.hub.Stop()
	if m.redisClient != nil {
		m.redisClient.Close()
	}
	if m.amqp != nil {
		m.amqp.Close()
	}
}
