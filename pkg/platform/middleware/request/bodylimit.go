package request

import (
	"net/http"
)

// DefaultMaxBodyBytes is plenty for the small JSON bodies of the session endpoints.
const DefaultMaxBodyBytes int64 = 64 << 10

// BodyLimit caps request bodies with http.MaxBytesReader. Oversized bodies
// fail JSON decoding downstream.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
