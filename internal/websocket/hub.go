package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Message is a change notification sent to the clients of one household.
type Message struct {
	Type    string         `json:"type"`
	Entity  string         `json:"entity"`
	Action  string         `json:"action"`
	ID      string         `json:"id,omitempty"`
	ActorID string         `json:"actor_id,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id uuid.UUID, extra map[string]any) Message {
	msg := Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		Extra:  extra,
	}
	if id != uuid.Nil {
		msg.ID = id.String()
	}
	return msg
}

// By records who made the change so their own client can ignore the echo.
func (m Message) By(actor uuid.UUID) Message {
	m.ActorID = actor.String()
	return m
}

// Hub tracks connected clients grouped by household.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	logger *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[*Client]struct{}),
		logger: logger,
	}
}

// Register adds a client to its household's room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.householdID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.householdID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if room, ok := h.rooms[c.householdID]; ok {
		if _, ok := room[c]; ok {
			delete(room, c)
			close(c.send)
		}
		if len(room) == 0 {
			delete(h.rooms, c.householdID)
		}
	}
	h.mu.Unlock()
}

// DisconnectUser closes every connection userID holds in householdID's room.
// Their clients then shut down with a normal closure.
func (h *Hub) DisconnectUser(householdID, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[householdID]
	if !ok {
		return
	}
	for c := range room {
		if c.userID == userID {
			delete(room, c)
			close(c.send)
		}
	}
	if len(room) == 0 {
		delete(h.rooms, householdID)
	}
}

// Broadcast sends msg to every client connected to householdID.
func (h *Hub) Broadcast(householdID uuid.UUID, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[householdID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket: client buffer full, dropping message", "household_id", householdID, "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, room := range h.rooms {
		n += len(room)
	}
	return n
}

// HouseholdClientCount returns the number of clients connected to one household.
func (h *Hub) HouseholdClientCount(householdID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[householdID])
}
