package events

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Client is one connected event-feed subscriber.
type Client struct {
	ID   string
	Send chan []byte
}

// Hub fans event payloads out to connected admin consoles. Slow clients are
// dropped rather than allowed to stall the loop.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	register chan *Client
	unreg    chan *Client
	sendAll  chan []byte

	log     *slog.Logger
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

// NewHub creates a hub; call Run in a goroutine to start it.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		sendAll:  make(chan []byte, 256),
		log:      log.With(slog.String("component", "events.hub")),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	return fmt.Sprintf("c%d", h.nextID.Add(1))
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			if c.ID == "" {
				c.ID = h.newID()
			}
			h.mu.Lock()
			h.clients[c.ID] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client registered", slog.String("id", c.ID), slog.Int("total", total))

		case c := <-h.unreg:
			h.mu.Lock()
			if c != nil && c.ID != "" {
				if _, ok := h.clients[c.ID]; ok {
					delete(h.clients, c.ID)
					close(c.Send)
				}
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client unregistered", slog.Int("total", total))

		case msg := <-h.sendAll:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					// slow client, drop it so the hub never blocks
					delete(h.clients, id)
					close(c.Send)
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

// Register adds a subscriber.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes a subscriber.
func (h *Hub) Unregister(c *Client) { h.unreg <- c }

// Broadcast queues a payload for every connected client.
func (h *Hub) Broadcast(b []byte) { h.sendAll <- b }

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
