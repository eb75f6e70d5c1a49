package websocket

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/stegoweb/imagetrigger/internal/modules/reload/domain"
)

var ErrHubStopped = errors.New("live-reload hub stopped")

type PageMessage struct {
	Page    string
	Message []byte
}

// Hub maintains the set of connected pages and pushes reload events to
// them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for every client.
	broadcast chan []byte

	// Messages for clients showing one page.
	page chan PageMessage

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Channel to signal termination
	stop     chan struct{}
	stopOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		page:       make(chan PageMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		clients: make(map[*Client]bool),
		stop:    make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("[WebSocket Hub] Client registered: %v (Page: %s)", client.addr(), client.page)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("[WebSocket Hub] Client unregistered: %v (Page: %s)", client.addr(), client.page)
			}
		case message := <-h.broadcast:
			log.Printf("[WebSocket Hub] Broadcasting reload to %d clients", len(h.clients))
			for client := range h.clients {
				h.deliver(client, message)
			}
		case msg := <-h.page:
			log.Printf("[WebSocket Hub] Sending reload to page: %s", msg.Page)
			for client := range h.clients {
				if client.page == msg.Page {
					h.deliver(client, msg.Message)
				}
			}
		case <-h.stop:
			log.Println("[WebSocket Hub] Stopping hub")
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

// deliver drops clients that are too slow to keep up.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

// BroadcastMessage queues message for every client.
func (h *Hub) BroadcastMessage(ctx context.Context, message []byte) error {
	select {
	case h.broadcast <- message:
		return nil
	case <-h.stop:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendToPage queues message for the clients showing page.
func (h *Hub) SendToPage(ctx context.Context, page string, message []byte) error {
	select {
	case h.page <- PageMessage{Page: page, Message: message}:
		return nil
	case <-h.stop:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

func (h *Hub) Name() string {
	return "websocket"
}

// Notify pushes the event to the connected pages. Events without a page go
// to everyone.
func (h *Hub) Notify(ctx context.Context, event domain.Event) error {
	message, err := event.Marshal()
	if err != nil {
		return err
	}
	if event.Page == "" {
		return h.BroadcastMessage(ctx, message)
	}
	return h.SendToPage(ctx, event.Page, message)
}
