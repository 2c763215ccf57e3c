// Package ws serves the websocket delivery channel: one connection per
// authenticated user, registered in the connection registry while open.
package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/registry"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// Outbound events buffered per connection.
	sendBufferSize = 256
)

// Client is one websocket connection. It implements registry.Channel.
type Client struct {
	userID string
	conn   *websocket.Conn
	logger logging.Logger

	mu     sync.RWMutex
	send   chan registry.Event
	closed bool
}

func newClient(userID string, conn *websocket.Conn, logger logging.Logger) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		logger: logger,
		send:   make(chan registry.Event, sendBufferSize),
	}
}

// UserID returns the user the connection was opened for.
func (c *Client) UserID() string {
	return c.userID
}

// Push enqueues ev without blocking. A full buffer or a closed client yields
// common.ErrDeliveryPushFailed.
func (c *Client) Push(ev registry.Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return fmt.Errorf("%w: connection closed", common.ErrDeliveryPushFailed)
	}

	select {
	case c.send <- ev:
		return nil
	default:
		return fmt.Errorf("%w: send buffer full", common.ErrDeliveryPushFailed)
	}
}

// Close stops the write pump, which sends a close frame and drops the
// connection. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump drains inbound frames until the peer goes away. Clients send
// nothing meaningful; reading keeps pong and close handling alive.
func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn(ctx, "websocket read error", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

// writePump moves queued events to the connection and pings the peer.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Warn(ctx, "websocket write failed", "user_id", c.userID, "event", ev.Name, "error", err)
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
