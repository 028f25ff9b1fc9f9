package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duelforge/arena-server/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is the middleman between one websocket connection and the hub.
// A client is anonymous until its join message succeeds.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	matchID string
	side    engine.Side
}

// readPump pumps messages from the connection into the hub. One goroutine
// per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	limit := c.hub.cfg.ReadLimit
	if limit <= 0 {
		limit = maxMessageSize
	}
	wait := c.hub.cfg.PongTimeout
	if wait <= 0 {
		wait = pongWait
	}
	c.conn.SetReadLimit(limit)
	c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the connection. One
// goroutine per connection.
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
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendProtocolError("invalid message format")
		return
	}

	switch envelope.Type {
	case "join":
		c.handleJoin(envelope.Raw)
	case "intent":
		c.handleIntent(envelope.Raw)
	case "resync":
		c.handleResync()
	default:
		c.sendProtocolError("unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleJoin(raw json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendProtocolError("invalid join message")
		return
	}
	if c.matchID != "" {
		c.sendProtocolError("already joined")
		return
	}

	result, err := c.hub.engine.Join(context.Background(), msg.MatchID, msg.Side)
	if err != nil {
		c.sendRejection(err)
		return
	}

	c.matchID = msg.MatchID
	c.side = msg.Side
	c.hub.claim <- c

	c.enqueue(mustJSON(JoinedMsg{Type: "joined", Side: msg.Side, State: result.Views[msg.Side]}))
	if len(result.Events) > 0 {
		// The second join starts the match; both seats get the opening
		// update.
		c.hub.Deliver(msg.MatchID, result)
	}
}

func (c *Client) handleIntent(raw json.RawMessage) {
	if c.matchID == "" {
		c.sendProtocolError("join a match first")
		return
	}

	var msg IntentMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendProtocolError("invalid intent message")
		return
	}

	result, err := c.hub.engine.HandleIntent(context.Background(), c.matchID, c.side, msg.Intent)
	if err != nil {
		// Rejections go to the issuer only; the opponent never sees them.
		c.sendRejection(err)
		return
	}
	c.hub.Deliver(c.matchID, result)
}

func (c *Client) handleResync() {
	if c.matchID == "" {
		c.sendProtocolError("join a match first")
		return
	}
	view, err := c.hub.engine.Resync(c.matchID, c.side)
	if err != nil {
		c.sendRejection(err)
		return
	}
	c.enqueue(mustJSON(StateMsg{Type: "state", State: view}))
}

// sendRejection maps an engine error to the issuer-only rejection message.
func (c *Client) sendRejection(err error) {
	if rej, ok := engine.AsRejection(err); ok {
		c.enqueue(mustJSON(RejectedMsg{Type: "rejected", Reason: rej.Reason, Detail: rej.Detail}))
		return
	}
	c.logger.Error("engine error", zap.Error(err))
	c.sendProtocolError("internal error")
}

func (c *Client) sendProtocolError(message string) {
	c.enqueue(mustJSON(ErrorMsg{Type: "error", Message: message}))
}

// enqueue drops the message when the client's send buffer is full; a
// stalled reader catches up through resync. The hub closes send on
// shutdown while read pumps may still be handling a message, so a send
// on the closed channel is recovered rather than allowed to take the
// process down.
func (c *Client) enqueue(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("dropped message for closed connection", zap.Any("recovered", r))
		}
	}()
	select {
	case c.send <- data:
	default:
	}
}
