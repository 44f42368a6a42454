package socket

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one registered websocket connection. Writes are serialized
// through the client's own mutex; gorilla connections do not tolerate
// concurrent writers.
type Client struct {
	userID string
	conn   *websocket.Conn
	mu     sync.Mutex
	rooms  map[string]bool
}

func (c *Client) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// Hub is the connection registry: every live connection keyed by user
// id, plus per-job rooms for id-scoped broadcasts. It is created once in
// main and passed by reference to the dispatcher and the websocket
// handler.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool
	rooms   map[string]map[*Client]bool
	log     *zap.SugaredLogger
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		log:     zap.S().Named("socket"),
	}
}

// Register adds a connection for the user. A user may hold several
// connections at once (multiple tabs, phone plus laptop).
func (h *Hub) Register(userID string, conn *websocket.Conn) *Client {
	client := &Client{userID: userID, conn: conn, rooms: make(map[string]bool)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]bool)
	}
	h.clients[userID][client] = true
	h.log.Infow("websocket client registered", "userId", userID)
	return client
}

// Unregister removes the connection from the user set and every room it
// joined.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[client.userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.userID)
		}
	}
	for jobID := range client.rooms {
		h.dropFromRoom(client, jobID)
	}
	h.log.Infow("websocket client unregistered", "userId", client.userID)
}

// JoinJob subscribes the connection to a job's room.
func (h *Hub) JoinJob(client *Client, jobID string) {
	if jobID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[jobID] == nil {
		h.rooms[jobID] = make(map[*Client]bool)
	}
	h.rooms[jobID][client] = true
	client.rooms[jobID] = true
	h.log.Debugw("client joined job room", "userId", client.userID, "jobId", jobID)
}

// LeaveJob unsubscribes the connection from a job's room.
func (h *Hub) LeaveJob(client *Client, jobID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropFromRoom(client, jobID)
	delete(client.rooms, jobID)
}

func (h *Hub) dropFromRoom(client *Client, jobID string) {
	if room, ok := h.rooms[jobID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, jobID)
		}
	}
}

// Send delivers a message to every connection of one user. An offline
// user is not an error; delivery here is best-effort by contract.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for client := range h.clients[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		h.log.Debugw("no live connection for user, message dropped", "userId", userID)
		return nil
	}
	var lastErr error
	for _, client := range targets {
		if err := client.write(message); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// BroadcastToJob delivers a message to every subscriber of a job room.
// Fire-and-forget: write failures are logged, not returned.
func (h *Hub) BroadcastToJob(jobID string, message []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[jobID]))
	for client := range h.rooms[jobID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.write(message); err != nil {
			h.log.Warnw("job room write failed", "jobId", jobID, "userId", client.userID, "error", err)
		}
	}
}

// BroadcastAll delivers a message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	var targets []*Client
	for _, set := range h.clients {
		for client := range set {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.write(message); err != nil {
			h.log.Warnw("broadcast write failed", "userId", client.userID, "error", err)
		}
	}
}
