package httpserver

import (
	"net/http"
	"time"
)

// ShutdownTimeout is how long in-flight requests get to finish on shutdown.
// It covers the slowest outbound call (the 15s portal timeout) only partly;
// a login cut off here fails with a connection error on the client.
const ShutdownTimeout = 10 * time.Second

// New builds an HTTP server with sane defaults for this project. The write
// timeout leaves room for the gate and portal calls made inside a login.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
