package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"forms-service/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBufferSize = 256

	// Actions one client may have running concurrently
	maxClientActions = 16
)

type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	session models.Session

	// rooms is guarded by hub.mu
	rooms map[string]bool

	sendMu     sync.Mutex
	send       chan []byte
	sendClosed bool

	// actions holds one token per running action
	actions chan struct{}

	// Connection state management
	ctx    context.Context
	cancel context.CancelFunc
	closed int32
}

// NewClient wraps an upgraded connection. The session is fixed for the client's lifetime.
func NewClient(hub *Hub, conn *websocket.Conn, session models.Session) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		id:      uuid.New().String(),
		hub:     hub,
		conn:    conn,
		session: session,
		rooms:   make(map[string]bool),
		send:    make(chan []byte, sendBufferSize),
		actions: make(chan struct{}, maxClientActions),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *Client) Session() models.Session {
	return c.session
}

// Join and Leave are idempotent.
func (c *Client) Join(room string) {
	c.hub.Join(c, room)
}

func (c *Client) Leave(room string) {
	c.hub.Leave(c, room)
}

func (c *Client) acquireAction() bool {
	select {
	case c.actions <- struct{}{}:
		return true
	default:
		return false
	}
}

func (c *Client) releaseAction() {
	<-c.actions
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close marks the client as closed and cancels the context
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
		slog.Debug("Client marked as closed", "clientID", c.id, "userID", c.session.ID)
	}
}

// closeSend closes the send channel once; the write pump then says goodbye to the peer.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// Send queues a frame without blocking. It returns false when the client is gone or its
// buffer is full.
func (c *Client) Send(frame []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Emit encodes and queues one event for this client only.
func (c *Client) Emit(event MessageType, data any) bool {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		slog.Error("Failed to encode frame", "event", event, "clientID", c.id, "error", err)
		return false
	}
	return c.Send(frame)
}

// SendError reports a failed action to this client only.
func (c *Client) SendError(event MessageType, action, message string) {
	if !c.Emit(event, ErrorPayload{Action: action, Error: message}) {
		slog.Debug("Error event not delivered", "clientID", c.id, "event", event, "action", action)
	}
}

func (c *Client) readPump(dispatcher *Dispatcher) {
	defer c.hub.pumps.Done()
	defer func() {
		c.close()
		c.hub.Unregister(c)
		if err := c.conn.Close(); err != nil {
			slog.Debug("Error closing connection", "clientID", c.id, "userID", c.session.ID, "error", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		if c.isClosed() {
			return websocket.ErrCloseSent
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	slog.Debug("ReadPump started", "clientID", c.id, "userID", c.session.ID)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "clientID", c.id, "userID", c.session.ID, "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "clientID", c.id, "userID", c.session.ID, "error", err)
			}
			return
		}
		dispatcher.Handle(c, raw)
	}
}

func (c *Client) writePump() {
	defer c.hub.pumps.Done()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		// Unblocks readPump, which unregisters and closes the connection.
		c.conn.Close()
		slog.Debug("WritePump finished", "clientID", c.id, "userID", c.session.ID)
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Debug("Error writing message", "clientID", c.id, "userID", c.session.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("Error sending ping", "clientID", c.id, "userID", c.session.ID, "error", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// ServeWS upgrades an already authenticated request and starts the client's pumps.
func ServeWS(hub *Hub, dispatcher *Dispatcher, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, session models.Session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "userID", session.ID, "error", err)
		return
	}

	client := NewClient(hub, conn, session)
	slog.Info("New WebSocket connection established", "clientID", client.id, "userID", session.ID)

	if !hub.trackPumps() {
		conn.Close()
		return
	}
	if !hub.Register(client) {
		hub.pumps.Add(-2)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(dispatcher)
}
