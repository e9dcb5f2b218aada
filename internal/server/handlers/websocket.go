// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"regiodash/internal/adapter/bus"
	"regiodash/internal/domain/selection"
	selectionService "regiodash/internal/service/selection"
)

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Time allowed to render the views of one state
	RenderTimeout time.Duration
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: maxEventSize,
		RenderTimeout:  30 * time.Second,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024 * 64,
}

// Frames sent to the browser
type (
	viewsFrame struct {
		Type string `json:"type"`
		viewSet
	}
	outcomeFrame struct {
		Type    string              `json:"type"`
		Kind    selection.EventKind `json:"kind"`
		Outcome selection.Outcome   `json:"outcome"`
	}
	errorFrame struct {
		Type  string `json:"type"`
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
)

// WebSocketClient is one browser tab attached to a session
type WebSocketClient struct {
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	session *selectionService.Session
	handler *SessionHandler
	sub     bus.Subscription
	config  WebSocketConfig
}

// WebSocket upgrades the connection and streams the session's views. Events
// sent by the browser are applied like POST /session/events and every
// socket of the session receives the resulting views.
func (h *SessionHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	s, created := h.registry.Resolve(id)

	header := http.Header{}
	if created {
		header.Add("Set-Cookie", sessionCookie(s.ID).String())
	}

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		h.logger.Warn("failed to upgrade to websocket", "error", err)
		return
	}

	client := &WebSocketClient{
		conn:    conn,
		send:    make(chan []byte, 16),
		done:    make(chan struct{}),
		session: s,
		handler: h,
		config:  DefaultWebSocketConfig(),
	}

	sub, err := h.bus.Subscribe(bus.ViewSubject(h.prefix, s.ID), client.onNotice)
	if err != nil {
		h.logger.Error("failed to subscribe to session views", "session", s.ID, "error", err)
		client.closeConnection()
		return
	}
	client.sub = sub

	go client.writePump()
	go client.readPump()

	client.pushViews(s.State())
	h.logger.Debug("websocket connected", "session", s.ID)
}

// readPump applies events read from the connection
func (c *WebSocketClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.handler.logger.Warn("websocket error", "session", c.session.ID, "error", err)
			}
			return
		}

		c.processIncomingMessage(message)
	}
}

// writePump writes queued frames and keeps the connection alive
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) processIncomingMessage(message []byte) {
	ev, err := selection.ParseEvent(message)
	if err != nil {
		c.sendError(err)
		return
	}

	_, out, err := c.handler.apply(c.session, ev)
	if err != nil {
		c.sendError(err)
		return
	}
	if out.Skipped {
		return
	}

	// a changed state reaches this socket through the bus
	c.sendJSON(outcomeFrame{Type: "outcome", Kind: ev.Kind, Outcome: out})
}

// onNotice renders the state carried by a bus notice
func (c *WebSocketClient) onNotice(data []byte) {
	var n stateNotice
	if err := json.Unmarshal(data, &n); err != nil {
		c.handler.logger.Warn("invalid state notice", "session", c.session.ID, "error", err)
		return
	}
	c.pushViews(n.State)
}

func (c *WebSocketClient) pushViews(state selection.State) {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.RenderTimeout)
	defer cancel()

	views, err := c.handler.render(ctx, state)
	if err != nil {
		c.sendError(err)
		return
	}
	c.sendJSON(viewsFrame{Type: "views", viewSet: views})
}

func (c *WebSocketClient) sendError(err error) {
	_, kind := classify(err)
	c.sendJSON(errorFrame{Type: "error", Error: err.Error(), Kind: kind})
}

func (c *WebSocketClient) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.handler.logger.Error("failed to encode frame", "error", err)
		return
	}

	select {
	case c.send <- data:
	case <-c.done:
	}
}

// closeConnection unsubscribes and closes the connection once
func (c *WebSocketClient) closeConnection() {
	c.once.Do(func() {
		close(c.done)
		if c.sub != nil {
			c.sub.Unsubscribe()
		}
		c.conn.Close()
		c.handler.logger.Debug("websocket closed", "session", c.session.ID)
	})
}
