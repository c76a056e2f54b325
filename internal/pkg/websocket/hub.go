// Package websocket pushes per-user events to connected clients.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Envelope is the frame written to clients
type Envelope struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
	SentAt time.Time   `json:"sentAt"`
}

// ErrHubClosed is returned when a connection arrives after shutdown
var ErrHubClosed = errors.New("websocket hub closed")

type delivery struct {
	userID int64
	data   []byte
}

// Hub keeps the open connections of each user and fans events out to them.
// All map mutations happen on the Run goroutine.
type Hub struct {
	clients map[int64]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}

	now    func() time.Time
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		now:        time.Now,
		logger:     logger,
	}
}

// Run serves registrations and deliveries until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case d := <-h.deliver:
			h.fanOut(d)
		}
	}
}

// Publish queues an event for every connection of userID. It never blocks:
// when the delivery buffer is full the event is dropped and an error returned.
func (h *Hub) Publish(userID int64, eventType string, data interface{}) error {
	raw, err := json.Marshal(Envelope{Type: eventType, Data: data, SentAt: h.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	select {
	case h.deliver <- delivery{userID: userID, data: raw}:
		return nil
	default:
		return fmt.Errorf("delivery buffer full, %s event for user %d dropped", eventType, userID)
	}
}

func (h *Hub) attach(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of open connections of userID
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}

	h.logger.Debug().Int64("userID", client.userID).Int("connections", len(h.clients[client.userID])).Msg("Client registered")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

func (h *Hub) dropLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}

	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug().Int64("userID", client.userID).Msg("Client unregistered")
}

func (h *Hub) fanOut(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[d.userID] {
		select {
		case client.send <- d.data:
		default:
			// A client that cannot keep up is disconnected.
			h.logger.Warn().Int64("userID", d.userID).Msg("Dropping slow websocket client")
			h.dropLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conns := range h.clients {
		for client := range conns {
			h.dropLocked(client)
		}
	}
}
