package live

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TissotPA/Match/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512

	sendBufferSize = 64
)

// Client is one websocket subscriber.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan Message
	hub  *Hub

	// mu guards last and hasLast. Workers broadcast concurrently and may
	// hand over versions out of order.
	mu      sync.Mutex
	last    uint64
	hasLast bool

	sent atomic.Int64
	log  logger.Logger
}

type sendResult int

const (
	sendQueued sendResult = iota
	sendStale
	sendFull
)

func newClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan Message, sendBufferSize),
		hub:  hub,
		log:  hub.log.With(logger.String("client_id", id)),
	}
}

// trySend queues msg without blocking. Messages not newer than the last
// queued version are skipped so a client never moves back to an older
// roster. The caller must hold the hub's read lock.
func (c *Client) trySend(msg Message) sendResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasLast && msg.Version <= c.last {
		return sendStale
	}
	select {
	case c.send <- msg:
		c.last, c.hasLast = msg.Version, true
		return sendQueued
	default:
		return sendFull
	}
}

// readPump discards client frames and keeps the read deadline moving on
// pongs. It returns when the peer goes away.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug(ctx, "unexpected close", logger.Error(err))
			}
			return
		}
	}
}

// writePump forwards queued messages and pings until the hub closes send.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug(ctx, "write failed", logger.Error(err))
				return
			}
			c.sent.Add(1)

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
