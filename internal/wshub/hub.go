package wshub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"targetshot/internal/analytics"
	"targetshot/internal/leaderboard"

	"github.com/coder/websocket"
)

// Client message types.
const (
	MsgStart = "start"
	MsgShot  = "shot"
)

// Server message types.
const (
	MsgHello  = "hello"
	MsgSpawn  = "spawn"
	MsgHit    = "hit"
	MsgRemove = "remove"
	MsgMarker = "marker"
	MsgUnmark = "unmark"
	MsgState  = "state"
	MsgOver   = "over"
	MsgBoard  = "board"
)

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type string `json:"t"`
	X    int    `json:"x,omitempty"`
	Y    int    `json:"y,omitempty"`
}

// ServerMessage is the JSON structure sent to clients. Zero fields are left
// out; clients read a missing number as 0.
type ServerMessage struct {
	Type     string            `json:"t"`
	ID       string            `json:"id,omitempty"`
	Kind     string            `json:"k,omitempty"`
	Text     string            `json:"text,omitempty"`
	X        int               `json:"x,omitempty"`
	Y        int               `json:"y,omitempty"`
	W        int               `json:"w,omitempty"`
	H        int               `json:"h,omitempty"`
	Phase    string            `json:"phase,omitempty"`
	Score    int               `json:"score,omitempty"`
	TimeLeft int               `json:"time,omitempty"`
	LowTime  bool              `json:"low,omitempty"`
	Board    *leaderboard.View `json:"board,omitempty"`
	Stats    *analytics.Stats  `json:"stats,omitempty"`
	Badges   []analytics.Badge `json:"badges,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Push queues msg for this client. Non-blocking: drops if channel full.
func (c *Client) Push(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("[WSHub] Dropping %q for session %s: send buffer full\n", msg.Type, c.SessionID)
	}
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub tracks the connected sessions.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.SessionID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[sessionID]; ok {
		close(c.Send)
		delete(h.clients, sessionID)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every client. Non-blocking: drops if channel full.
func (h *Hub) Broadcast(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}
