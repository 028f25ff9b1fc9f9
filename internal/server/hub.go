package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duelforge/arena-server/internal/config"
	"github.com/duelforge/arena-server/internal/engine"
)

// MatchEngine is what the hub needs from the game engine.
type MatchEngine interface {
	Join(ctx context.Context, matchID string, side engine.Side) (*engine.IntentResult, error)
	HandleIntent(ctx context.Context, matchID string, side engine.Side, intent engine.Intent) (*engine.IntentResult, error)
	Resync(matchID string, side engine.Side) (*engine.MatchView, error)
}

type seat struct {
	matchID string
	side    engine.Side
}

// Hub tracks live connections and routes engine output to the right seats.
// At most one connection holds a seat at a time; a new join for an occupied
// seat replaces the old connection.
type Hub struct {
	engine   MatchEngine
	cfg      config.ServerConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader

	register   chan *Client
	unregister chan *Client
	claim      chan *Client
	deliver    chan delivery

	clients map[*Client]bool
	seats   map[seat]*Client
}

// delivery is one intent result fanned out to both seats of a match.
type delivery struct {
	matchID string
	result  *engine.IntentResult
}

// NewHub creates a hub for the given engine.
func NewHub(eng MatchEngine, cfg config.ServerConfig, logger *zap.Logger) *Hub {
	h := &Hub{
		engine:     eng,
		cfg:        cfg,
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		claim:      make(chan *Client),
		deliver:    make(chan delivery, 16),
		clients:    make(map[*Client]bool),
		seats:      make(map[seat]*Client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.AllowAllOrigins || r.Header.Get("Origin") == ""
		},
	}
	return h
}

// Run is the hub's main loop; all seat bookkeeping happens here, so no
// locking is needed. Returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub stopping", zap.Int("clients", len(h.clients)))
			for c := range h.clients {
				close(c.send)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Debug("client connected", zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			close(c.send)
			s := seat{matchID: c.matchID, side: c.side}
			if c.matchID != "" && h.seats[s] == c {
				delete(h.seats, s)
			}
			h.logger.Debug("client disconnected", zap.Int("clients", len(h.clients)))

		case c := <-h.claim:
			s := seat{matchID: c.matchID, side: c.side}
			if prev, ok := h.seats[s]; ok && prev != c {
				// Reconnect: the newest connection wins the seat.
				prev.enqueue(mustJSON(ErrorMsg{Type: "error", Message: "seat taken over by a new connection"}))
				prev.conn.Close()
			}
			h.seats[s] = c

		case d := <-h.deliver:
			h.fanOut(d)
		}
	}
}

// Deliver queues an intent result for fan-out to both seats of a match.
func (h *Hub) Deliver(matchID string, result *engine.IntentResult) {
	h.deliver <- delivery{matchID: matchID, result: result}
}

// fanOut sends each side its own redacted event stream and snapshot.
func (h *Hub) fanOut(d delivery) {
	for _, side := range []engine.Side{engine.SideA, engine.SideB} {
		c, ok := h.seats[seat{matchID: d.matchID, side: side}]
		if !ok {
			continue
		}
		view := d.result.Views[side]
		msg := UpdateMsg{
			Type:   "update",
			Seq:    view.Seq,
			Events: redactEvents(d.result.Events, side),
			State:  view,
		}
		c.enqueue(mustJSON(msg))
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 64),
		logger: h.logger,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Outbound messages are plain structs; a marshal failure is a bug.
		panic(err)
	}
	return data
}
