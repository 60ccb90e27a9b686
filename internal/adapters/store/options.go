package store

import "time"

// Option configures a backend. Options that do not apply to a backend are
// ignored by it.
type Option func(*options)

type options struct {
	ttl       time.Duration
	keyPrefix string
	table     string
}

func defaultOptions() options {
	return options{
		keyPrefix: "courtside:",
		table:     "session_snapshots",
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTTL expires redis keys after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl >= 0 {
			o.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces redis keys.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

// WithTable sets the postgres table name.
func WithTable(table string) Option {
	return func(o *options) {
		if table != "" {
			o.table = table
		}
	}
}
