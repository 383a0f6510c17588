// Package spectate streams a game's action log and snapshots to
// read-only websocket clients.
package spectate

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBuffer     = 256
	broadcastQueue = 1024
)

// Message types sent to spectators.
const (
	TypeSnapshot = "snapshot"
	TypeLog      = "log"
)

// Message is the envelope for every frame sent to a spectator.
type Message struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans game output out to websocket clients. It implements
// game.Observer; observer calls never block the game.
type Hub struct {
	logger   *zap.Logger
	gameID   string
	upgrader websocket.Upgrader

	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}

	mu     sync.Mutex
	latest []byte
}

// NewHub creates a hub for one game. Call Run before serving clients.
func NewHub(gameID string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger.With(zap.String("game_id", gameID)),
		gameID: gameID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Spectators only receive, so any origin may watch.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		close(h.done)
	}()
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = true
			h.mu.Lock()
			latest := h.latest
			h.mu.Unlock()
			if latest != nil {
				c.send <- latest
			}
			h.logger.Debug("spectator joined", zap.Int("spectators", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("spectator left", zap.Int("spectators", len(h.clients)))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
					h.logger.Warn("dropping slow spectator")
				}
			}
		}
	}
}

// OnLogEntry forwards an action-log entry.
func (h *Hub) OnLogEntry(entry game.LogEntry) {
	h.publish(Message{Type: TypeLog, GameID: h.gameID, Data: entry}, false)
}

// OnSnapshot forwards a spectator view. The latest one is replayed to
// clients that join later.
func (h *Hub) OnSnapshot(view game.View) {
	h.publish(Message{Type: TypeSnapshot, GameID: h.gameID, Data: view}, true)
}

func (h *Hub) publish(msg Message, keep bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode spectator message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if keep {
		h.mu.Lock()
		h.latest = data
		h.mu.Unlock()
	}
	select {
	case <-h.done:
	case h.broadcast <- data:
	default:
		h.logger.Warn("spectator queue full, dropping message", zap.String("type", msg.Type))
	}
}

// ServeHTTP upgrades the request to a websocket spectator connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards client frames and notices disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
