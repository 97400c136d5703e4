package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/gomoku-go/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Send pings at this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Largest accepted frame; photos travel base64-encoded
	maxMessageSize = 2 << 20

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client owns one WebSocket connection's outgoing queue
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send encodes msg and queues it; the message is dropped if the queue is full
// or the connection is closing
func (c *Client) Send(msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		c.logger.Error("failed to encode message",
			slog.String("type", string(msg.MessageType())),
			slog.String("error", err.Error()),
		)
		return
	}

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.logger.Warn("message dropped - client buffer full",
			slog.String("type", string(msg.MessageType())))
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump drains the send queue and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write failed", slog.String("error", err.Error()))
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever is already queued, best effort
func (c *Client) flush() {
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
