package template

import "time"

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds one fetch.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.httpClient.Timeout = d
		}
	}
}

// WithMaxBytes caps the template body size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}
