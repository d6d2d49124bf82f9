package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Client is one websocket viewer following a tournament room.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	room     uuid.UUID
	isClosed bool
	mu       sync.Mutex
}

// Hub fans committed events out to the websocket viewers of each tournament
// and to in-process subscribers.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu          sync.RWMutex
	rooms       map[uuid.UUID]map[*Client]bool
	subscribers map[uuid.UUID]map[uint64]func(Event)
	nextSubID   uint64

	upgrader websocket.Upgrader
}

// NewHub creates a hub. checkOrigin may be nil to accept any origin.
func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		rooms:       make(map[uuid.UUID]map[*Client]bool),
		subscribers: make(map[uuid.UUID]map[uint64]func(Event)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Run processes registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			slog.Debug("viewer joined", "tournament_id", client.room, "viewers", len(h.rooms[client.room]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok || !clients[client] {
		return
	}
	client.mu.Lock()
	if !client.isClosed {
		close(client.send)
		client.isClosed = true
	}
	client.mu.Unlock()
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}
	slog.Debug("viewer left", "tournament_id", client.room, "viewers", len(clients))
}

// Subscribe registers fn for every event of the tournament and returns a
// function that removes it. fn runs on the publisher's goroutine.
func (h *Hub) Subscribe(tournamentID uuid.UUID, fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSubID++
	id := h.nextSubID
	if h.subscribers[tournamentID] == nil {
		h.subscribers[tournamentID] = make(map[uint64]func(Event))
	}
	h.subscribers[tournamentID][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[tournamentID], id)
		if len(h.subscribers[tournamentID]) == 0 {
			delete(h.subscribers, tournamentID)
		}
	}
}

// Publish delivers e to the tournament's subscribers and websocket room.
// Slow viewers whose buffer is full miss the message rather than block.
func (h *Hub) Publish(e Event) {
	message, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to marshal event", "error", err, "tournament_id", e.TournamentID)
		return
	}

	h.mu.RLock()
	subs := make([]func(Event), 0, len(h.subscribers[e.TournamentID]))
	for _, fn := range h.subscribers[e.TournamentID] {
		subs = append(subs, fn)
	}
	for client := range h.rooms[e.TournamentID] {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- message:
		default:
			slog.Warn("viewer send buffer full, dropping event", "tournament_id", e.TournamentID)
		}
		client.mu.Unlock()
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Viewers returns how many websocket clients follow the tournament.
func (h *Hub) Viewers(tournamentID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tournamentID])
}

// ServeRoom upgrades the request and joins the connection to the
// tournament's room. Messages from the viewer are read and ignored.
func (h *Hub) ServeRoom(w http.ResponseWriter, r *http.Request, tournamentID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("websocket upgrade failed", "error", err, "tournament_id", tournamentID)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		room: tournamentID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("viewer connection closed", "error", err, "tournament_id", c.room)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One event per frame so viewers can decode each message on its own.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Warn("failed to write to viewer", "error", err, "tournament_id", c.room)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
