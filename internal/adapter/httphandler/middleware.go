package httphandler

import (
	"net/http"
	"strings"
	"time"
)

// AllowJSON rejects request bodies that are not declared as JSON.
func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "application/json") {
			http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

// WithTimeout bounds API request handling. Applied to the JSON API
// subtree only, never to the websocket endpoint.
func WithTimeout(d time.Duration, next http.Handler) http.Handler {
	return http.TimeoutHandler(next, d, "unavailable")
}
