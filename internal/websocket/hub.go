package websocket

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// ErrUnknownClient is returned when a room operation names a connection
// that is not registered.
var ErrUnknownClient = errors.New("unknown client")

// Hub tracks live connections and their room memberships. Membership lives
// only as long as the connection and is never persisted.
type Hub struct {
	mu          sync.RWMutex
	clients     map[string]*Client
	rooms       map[string]map[string]*Client // room id -> client id -> client
	memberships map[string]map[string]struct{} // client id -> room ids
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		rooms:       make(map[string]map[string]*Client),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Register adds a connection with no room memberships.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID()] = c
	h.memberships[c.ID()] = make(map[string]struct{})
	slog.Debug("Client registered", "client_id", c.ID(), "total_clients", len(h.clients))
}

// Unregister removes the connection from every room, closes its send
// channel and returns the rooms it had joined.
func (h *Hub) Unregister(c *Client) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := c.ID()
	if registered, ok := h.clients[id]; !ok || registered != c {
		return nil
	}

	left := make([]string, 0, len(h.memberships[id]))
	for room := range h.memberships[id] {
		h.removeLocked(id, room)
		left = append(left, room)
	}
	delete(h.memberships, id)
	delete(h.clients, id)
	c.Close()

	sort.Strings(left)
	slog.Debug("Client unregistered", "client_id", id, "rooms_left", len(left), "total_clients", len(h.clients))
	return left
}

// Join adds a connection to a room. Joining twice is a no-op.
func (h *Hub) Join(clientID, room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[clientID]
	if !ok {
		return ErrUnknownClient
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[clientID] = c
	h.memberships[clientID][room] = struct{}{}
	return nil
}

// Leave removes a connection from a room and reports whether it was a member.
func (h *Hub) Leave(clientID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.memberships[clientID][room]; !ok {
		return false
	}
	h.removeLocked(clientID, room)
	delete(h.memberships[clientID], room)
	return true
}

func (h *Hub) removeLocked(clientID, room string) {
	members := h.rooms[room]
	delete(members, clientID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// BroadcastToRoom queues payload for every member of room and returns the
// number of connections it was queued for.
func (h *Hub) BroadcastToRoom(room string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.rooms[room] {
		if c.SendMessage(payload) {
			delivered++
		}
	}
	return delivered
}

// SendTo queues payload for a single connection.
func (h *Hub) SendTo(clientID string, payload []byte) bool {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.SendMessage(payload)
}

// IsMember reports whether clientID has joined room.
func (h *Hub) IsMember(clientID, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.memberships[clientID][room]
	return ok
}

// RoomsOf returns the rooms a connection belongs to, sorted.
func (h *Hub) RoomsOf(clientID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.memberships[clientID]))
	for room := range h.memberships[clientID] {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}

// Members returns the connection ids in room, sorted.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
