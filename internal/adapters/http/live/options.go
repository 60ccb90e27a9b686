package live

import (
	"net/http"

	"github.com/TissotPA/Match/pkg/logger"
)

// Option configures a Hub.
type Option func(*Hub)

// WithSnapshot sets the source of the first message sent to a subscriber.
func WithSnapshot(f SnapshotFunc) Option {
	return func(h *Hub) {
		h.current = f
	}
}

// WithLogger sets the hub logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithCheckOrigin restricts which browser origins may subscribe. The
// default only accepts same-origin requests.
func WithCheckOrigin(f func(r *http.Request) bool) Option {
	return func(h *Hub) {
		if f != nil {
			h.upgrader.CheckOrigin = f
		}
	}
}
