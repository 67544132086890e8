package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is the minimal connection surface the hub needs. *websocket.Conn
// satisfies it; tests substitute an in-memory fake.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Client is one WebSocket connection with a serialized writer. gorilla
// connections do not allow concurrent writes, so every frame goes through
// the client's mutex.
type Client struct {
	ID     string
	UserID int64
	conn   Conn
	mu     sync.Mutex
}

func NewClient(userID int64, conn Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
	}
}

// Send writes one JSON frame to the client.
func (c *Client) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Hub is an explicit room registry keyed by conversation id. A client may sit
// in several rooms at once; the reverse index makes disconnect cleanup cheap.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int64]map[*Client]struct{}
	joined map[*Client]map[int64]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[int64]map[*Client]struct{}),
		joined: make(map[*Client]map[int64]struct{}),
	}
}

// Join places the client into a conversation's room.
func (h *Hub) Join(conversationID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[*Client]struct{})
	}
	h.rooms[conversationID][c] = struct{}{}

	if h.joined[c] == nil {
		h.joined[c] = make(map[int64]struct{})
	}
	h.joined[c][conversationID] = struct{}{}
}

// Leave removes the client from one room.
func (h *Hub) Leave(conversationID int64, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoom(conversationID, c)
	if rooms, ok := h.joined[c]; ok {
		delete(rooms, conversationID)
		if len(rooms) == 0 {
			delete(h.joined, c)
		}
	}
}

// Remove drops the client from every room it joined. Called on disconnect.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conversationID := range h.joined[c] {
		h.removeFromRoom(conversationID, c)
	}
	delete(h.joined, c)
}

func (h *Hub) removeFromRoom(conversationID int64, c *Client) {
	if room, ok := h.rooms[conversationID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// Broadcast sends a frame to every client in the room, the sender included.
func (h *Hub) Broadcast(conversationID int64, payload any) {
	h.sendToRoom(conversationID, payload, nil)
}

// BroadcastExcept sends a frame to every client in the room except one.
func (h *Hub) BroadcastExcept(conversationID int64, except *Client, payload any) {
	h.sendToRoom(conversationID, payload, except)
}

func (h *Hub) sendToRoom(conversationID int64, payload any, except *Client) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[conversationID]))
	for c := range h.rooms[conversationID] {
		if c != except {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.Send(payload); err != nil {
			c.Close()
			// stale entries are swept when the read loop exits
		}
	}
}

// RoomSize reports how many clients currently sit in a room.
func (h *Hub) RoomSize(conversationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}
