package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The API is same-origin in production; the demo client connects
		// from a file:// page, so origins are not enforced here.
		return true
	},
}

// WSMessage is the envelope for every frame pushed to clients.
type WSMessage struct {
	Type      string    `json:"type"`
	GameID    string    `json:"game_id,omitempty"`
	PlayerID  string    `json:"player_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Client is one websocket subscriber, bound to a single game and seat.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	gameID   string
}

// Hub fans engine notifications out to websocket clients. Each client
// receives the game state redacted for its own seat; spectators (an
// unknown player id) get the redaction of neither seat's owner.
type Hub struct {
	logger *zap.Logger
	engine *game.Engine

	clients       map[*Client]bool
	register      chan *Client
	unregister    chan *Client
	notifications chan game.Notification
}

func NewHub(engine *game.Engine, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:        logger,
		engine:        engine,
		clients:       make(map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		notifications: make(chan game.Notification, 64),
	}
}

// HandleNotification is registered with the engine. It must not block
// the engine; a full queue drops the notification and the next state
// change resynchronizes clients.
func (h *Hub) HandleNotification(n game.Notification) {
	select {
	case h.notifications <- n:
	default:
		h.logger.Warn("notification queue full, dropping",
			zap.String("game_id", n.GameID),
			zap.String("type", n.Type),
		)
	}
}

// Run owns the client set. It exits when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Info("websocket client registered",
				zap.String("game_id", c.gameID),
				zap.String("player_id", c.playerID),
			)
			h.sendState(c)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.logger.Info("websocket client unregistered",
					zap.String("game_id", c.gameID),
					zap.String("player_id", c.playerID),
				)
			}

		case n := <-h.notifications:
			for c := range h.clients {
				if c.gameID != n.GameID {
					continue
				}
				if n.PlayerID != "" && n.PlayerID != c.playerID {
					continue
				}
				h.sendState(c)
			}
		}
	}
}

// sendState pushes the current redacted view for the client's seat. A
// client that cannot keep up is dropped.
func (h *Hub) sendState(c *Client) {
	view, err := h.engine.GameView(c.gameID, c.playerID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(WSMessage{
		Type:      "game_state",
		GameID:    c.gameID,
		PlayerID:  c.playerID,
		Timestamp: time.Now(),
		Data:      view,
	})
	if err != nil {
		h.logger.Error("marshal game state", zap.Error(err))
		return
	}
	select {
	case c.send <- payload:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeWS upgrades the request and attaches the client to its game.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID, playerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &Client{
		conn:     conn,
		send:     make(chan []byte, 16),
		playerID: playerID,
		gameID:   gameID,
	}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

// readPump discards inbound frames; actions arrive over HTTP. Its job
// is noticing the peer going away.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	// send channel closed by the hub
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}
