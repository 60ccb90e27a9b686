package live

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// AllowOrigins builds an origin check from the CORS allow list. "*" accepts
// every origin. Requests without an Origin header (non-browser clients) and
// same-host requests are always accepted.
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allowed = append(allowed, strings.ToLower(o))
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, strings.ToLower(strings.TrimRight(origin, "/"))) {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
