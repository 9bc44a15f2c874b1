package ws

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Event is the wire envelope for every websocket message in both directions.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// UserRoom names the id-keyed room a principal's connections join.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// EmailRoom names the email-keyed room. Some send paths only know the
// recipient's email, so every authenticated connection joins both rooms.
func EmailRoom(email string) string {
	return "email:" + strings.ToLower(email)
}

// Client is one live connection. UserID is zero for connections that arrived
// without a valid token; those join no rooms and may not send.
type Client struct {
	UserID uint
	Email  string
	Role   string
	Conn   *websocket.Conn
	Send   chan Event

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	rooms []string
}

// Hub maps room names to the clients joined to them. There is no cross-node
// fan-out; persistence, not broadcast, is the delivery guarantee.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: map[string]map[*Client]struct{}{},
	}
}

// Main is the hub shared by the websocket handler and the REST fallback,
// which broadcasts to it after persisted sends.
var Main = NewHub()

// AddClient registers the connection and starts its write and keepalive
// loops. The caller joins rooms separately once the principal is known.
func (h *Hub) AddClient(conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		Conn:   conn,
		Send:   make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
	}

	go c.writeLoop()
	go c.keepAliveLoop()

	return c
}

// Join subscribes the client to a room.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = map[*Client]struct{}{}
	}
	h.rooms[room][c] = struct{}{}
	h.mu.Unlock()

	c.mu.Lock()
	c.rooms = append(c.rooms, room)
	c.mu.Unlock()
}

// RemoveClient leaves every room the client joined and tears the connection
// down. A dropped connection is an implicit unsubscribe; nothing is queued
// for it.
func (h *Hub) RemoveClient(c *Client) {
	c.cancel()

	c.mu.Lock()
	rooms := c.rooms
	c.rooms = nil
	c.mu.Unlock()

	h.mu.Lock()
	for _, room := range rooms {
		if set, ok := h.rooms[room]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()

	if c.Conn != nil {
		_ = c.Conn.Close(websocket.StatusNormalClosure, "bye")
	}
}

// Broadcast fans an event out to every client in the room. Clients with a full
// send buffer are skipped; a missed broadcast is recovered by the next REST
// fetch, never retried here.
func (h *Hub) Broadcast(room string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.Send <- ev:
		default:
		}
	}
}

// Online reports whether any client currently holds the room.
func (h *Hub) Online(room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room]) > 0
}

// Push queues an event for a single client, dropping it if the buffer is full.
func (h *Hub) Push(c *Client, ev Event) {
	select {
	case c.Send <- ev:
	default:
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.Send:
			writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = wsjson.Write(writeCtx, c.Conn, ev)
			cancel()
		}
	}
}

func (c *Client) keepAliveLoop() {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = c.Conn.Ping(pingCtx)
			cancel()
		}
	}
}
