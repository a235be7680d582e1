// Package cors applies the fixed-origin CORS policy of the session endpoints.
//
// Unlike a conventional CORS layer, an unrecognised Origin is not rejected by
// omitting headers: the response names the default origin instead, so the
// browser of a legitimate caller always receives the JSON error body while a
// foreign origin is still refused by the browser's origin check.
package cors

import (
	"net/http"
	"slices"
)

// Config holds the origin allow-list.
type Config struct {
	AllowedOrigins []string
	DefaultOrigin  string
}

// DefaultConfig returns the production allow-list of the installer app.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{
			"https://preview.data-jam.com",
			"https://data-jam.com",
			"https://www.data-jam.com",
			"http://localhost:8888",
			"http://localhost:3000",
		},
		DefaultOrigin: "https://preview.data-jam.com",
	}
}

// Middleware sets CORS headers on every response and answers preflight requests.
type Middleware struct {
	config Config
}

func New(cfg Config) *Middleware {
	if cfg.DefaultOrigin == "" && len(cfg.AllowedOrigins) > 0 {
		cfg.DefaultOrigin = cfg.AllowedOrigins[0]
	}
	return &Middleware{config: cfg}
}

// Origin resolves the Access-Control-Allow-Origin value for a request origin.
func (m *Middleware) Origin(requestOrigin string) string {
	if requestOrigin != "" && slices.Contains(m.config.AllowedOrigins, requestOrigin) {
		return requestOrigin
	}
	return m.config.DefaultOrigin
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", m.Origin(r.Header.Get("Origin")))
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
