package chathub

import (
	"errors"
	"log"
	"sync"
	"time"

	"courtside/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	sendBuffer = 256
)

var errSendBufferFull = errors.New("send buffer full")

// WSConn adapts a gorilla WebSocket connection to the Conn interface. Events
// pass through a buffered channel drained by the write pump; the read pump
// only services control frames and notices disconnects.
type WSConn struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan models.Event

	mu     sync.Mutex
	closed bool
}

func NewWSConn(hub *Hub, userID string, conn *websocket.Conn) *WSConn {
	return &WSConn{
		hub:    hub,
		userID: userID,
		conn:   conn,
		send:   make(chan models.Event, sendBuffer),
	}
}

func (c *WSConn) UserID() string { return c.userID }

// Send queues an event for the write pump. A full buffer means the client
// stopped draining; the connection is reported dead rather than blocking the
// dispatcher.
func (c *WSConn) Send(event models.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- event:
		return nil
	default:
		return errSendBufferFull
	}
}

// Close stops the write pump by closing the send channel. Idempotent, and
// safe against concurrent Send calls.
func (c *WSConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run registers the connection and starts both pumps.
func (c *WSConn) Run() {
	c.hub.Registry.Add(c.userID, c)
	go c.writePump()
	go c.readPump()
}

func (c *WSConn) readPump() {
	defer func() {
		c.hub.Registry.Remove(c.userID, c)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients only listen on this socket; reads exist to keep the
		// connection alive and to detect it going away.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARNING: Unexpected close from user %s: %v", c.userID, err)
			}
			break
		}
	}
}

func (c *WSConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
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
