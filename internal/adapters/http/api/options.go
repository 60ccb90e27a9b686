package api

import (
	"net/http"
	"time"

	"github.com/TissotPA/Match/pkg/logger"
)

// Option configures a Server.
type Option func(*Server)

// WithLive mounts the live feed handler at /api/v1/live.
func WithLive(h http.Handler) Option {
	return func(s *Server) {
		s.live = h
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithTimeout bounds each API request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxBodyBytes limits import payloads.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
