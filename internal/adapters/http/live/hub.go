// Package live pushes roster changes to websocket subscribers.
package live

import (
	"context"
	"net/http"
	"sync"

	"github.com/TissotPA/Match/internal/domain/model"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/TissotPA/Match/pkg/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SnapshotFunc returns the current encoded roster and its version. New
// subscribers receive it first.
type SnapshotFunc func(ctx context.Context) ([]byte, uint64, error)

// Hub tracks subscribers and fans changes out to them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	closed   bool
	current  SnapshotFunc
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: logger.Get().Named("live"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle broadcasts c to every subscriber. It lets the hub sit behind the
// worker pool.
func (h *Hub) Handle(_ context.Context, c model.Change) error {
	h.Broadcast(changeMessage(c))
	return nil
}

// Broadcast queues msg for every subscriber. Subscribers whose buffer is
// full are disconnected; they can reconnect and resync from the snapshot.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.clients {
		switch c.trySend(msg) {
		case sendQueued:
			metrics.RecordLiveMessage()
		case sendFull:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		metrics.RecordLiveDrop()
		h.unregister(c)
	}
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and subscribes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Warn(ctx, "websocket upgrade failed", logger.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, h)
	if !h.register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}
	// Registered first so no change falls between the snapshot and the
	// subscription. A change that overtakes the snapshot already carries a
	// newer roster, and the snapshot is then skipped.
	if h.current != nil {
		data, version, err := h.current(ctx)
		if err != nil {
			h.log.Error(ctx, "initial snapshot failed", logger.Error(err))
		} else {
			h.sendTo(c, Message{Type: TypeSnapshot, Version: version, Roster: data})
		}
	}

	// The request context ends when the handler returns, so the pumps get a
	// detached one and stop on disconnect or hub close.
	pumpCtx := context.WithoutCancel(ctx)
	go c.writePump(pumpCtx)
	go c.readPump(pumpCtx)
}

// sendTo queues msg for one subscriber if it is still registered.
func (h *Hub) sendTo(c *Client, msg Message) {
	h.mu.RLock()
	_, ok := h.clients[c]
	res := sendStale
	if ok {
		res = c.trySend(msg)
	}
	h.mu.RUnlock()
	if res == sendFull {
		metrics.RecordLiveDrop()
		h.unregister(c)
	}
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.UpdateLiveSubscribers(len(h.clients))
	h.log.Debug(context.Background(), "client connected",
		logger.String("client_id", c.ID), logger.Int("total", len(h.clients)))
	return true
}

// unregister removes c and closes its send channel once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.UpdateLiveSubscribers(len(h.clients))
	h.log.Debug(context.Background(), "client disconnected",
		logger.String("client_id", c.ID), logger.Int64("sent", c.sent.Load()))
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	metrics.UpdateLiveSubscribers(0)
}
