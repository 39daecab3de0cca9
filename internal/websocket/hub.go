package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Presence records which users hold at least one open connection.
type Presence interface {
	SetUserOnline(ctx context.Context, userID string) error
	SetUserOffline(ctx context.Context, userID string) error
}

type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Open connections per user ID, for presence
	userClients map[string]map[*Client]bool

	// Room (template ID) memberships
	rooms map[string]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	presence Presence

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Client read and write pumps still running
	pumps    sync.WaitGroup
	stopping bool

	mu sync.RWMutex
}

// NewHub creates a hub. presence may be nil.
func NewHub(presence Presence) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string]map[*Client]bool),
		rooms:       make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		presence:    presence,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.ctx.Done():
			slog.Info("WebSocket hub shutting down")
			h.closeAll()
			return
		}
	}
}

// Stop closes every connection and returns once Run and all client pumps have exited.
// Run must have been started.
func (h *Hub) Stop() {
	h.mu.Lock()
	h.stopping = true
	h.mu.Unlock()

	h.cancel()
	<-h.done
	h.pumps.Wait()
}

// trackPumps reserves the two pumps of a new connection. It fails once Stop has begun.
func (h *Hub) trackPumps() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopping {
		return false
	}
	h.pumps.Add(2)
	return true
}

// Register hands a client to the hub loop.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-time.After(5 * time.Second):
		slog.Error("Timeout sending registration request", "clientID", client.id, "userID", client.session.ID)
		return false
	case <-h.ctx.Done():
		return false
	}
}

// Unregister removes a client from the hub and from every room it joined.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-time.After(5 * time.Second):
		slog.Warn("Timeout sending unregister request", "clientID", client.id, "userID", client.session.ID)
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	if h.userClients[client.session.ID] == nil {
		h.userClients[client.session.ID] = make(map[*Client]bool)
	}
	h.userClients[client.session.ID][client] = true
	first := len(h.userClients[client.session.ID]) == 1
	h.mu.Unlock()

	slog.Info("Client registered", "clientID", client.id, "userID", client.session.ID)

	if first && h.presence != nil {
		if err := h.presence.SetUserOnline(h.ctx, client.session.ID); err != nil {
			slog.Error("Failed to set user online", "userID", client.session.ID, "error", err)
		}
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if !h.clients[client] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)

	for room := range client.rooms {
		h.removeFromRoom(client, room)
	}

	userID := client.session.ID
	last := false
	if conns, ok := h.userClients[userID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.userClients, userID)
			last = true
		}
	}
	h.mu.Unlock()

	client.closeSend()
	slog.Info("Client unregistered", "clientID", client.id, "userID", userID)

	if last && h.presence != nil {
		// The hub context may already be cancelled during shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.presence.SetUserOffline(ctx, userID); err != nil {
			slog.Error("Failed to set user offline", "userID", userID, "error", err)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregisterClient(c)
	}
}

// Join adds client to room. Joining twice is a no-op.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true

	slog.Debug("Client joined room", "clientID", client.id, "userID", client.session.ID, "room", room)
}

// Leave removes client from room. Leaving a room the client is not in is a no-op.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoom(client, room)
	slog.Debug("Client left room", "clientID", client.id, "userID", client.session.ID, "room", room)
}

// removeFromRoom requires h.mu held for writing.
func (h *Hub) removeFromRoom(client *Client, room string) {
	delete(client.rooms, room)
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// BroadcastToRoom queues frame for every member of room and returns how many accepted it.
// Members whose send buffer is full are dropped.
func (h *Hub) BroadcastToRoom(room string, frame []byte) int {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	delivered := 0
	var dropped []*Client
	for _, c := range members {
		if c.Send(frame) {
			delivered++
		} else {
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		slog.Warn("Dropping slow client", "clientID", c.id, "userID", c.session.ID, "room", room)
		go h.Unregister(c)
	}
	return delivered
}

// RoomMembers reports how many clients are in room.
func (h *Hub) RoomMembers(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// IsMember reports whether client is in room.
func (h *Hub) IsMember(client *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[room][client]
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
