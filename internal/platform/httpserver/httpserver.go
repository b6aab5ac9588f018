package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Handlers run under a 30s middleware timeout, so
// the write deadline sits just above it; payloads are small JSON bodies and
// never justify a long read window.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
