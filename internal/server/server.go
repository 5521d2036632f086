package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/screengrab/snapshot-mcp/internal/protocol"
	"github.com/screengrab/snapshot-mcp/internal/snapshot"
)

// Server owns the tool registry and accepts sessions over transports. The
// registry is constructed once here and shared read-only by every session.
type Server struct {
	registry *Registry
	upgrader websocket.Upgrader
}

// New creates a server exposing the snapshot tool set.
func New(svc *snapshot.Service) *Server {
	return &Server{
		registry: NewRegistry(svc),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Registry exposes the tool registry, mainly for tests.
func (s *Server) Registry() *Registry {
	return s.registry
}

// ServeStdio runs a single session over the process's stdin/stdout. It
// returns when the peer closes stdin or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	transport := protocol.Stdio()
	sess := NewSession(s.registry, transport)

	done := make(chan error, 1)
	go func() { done <- sess.Run() }()

	select {
	case <-ctx.Done():
		// A blocked stdin read cannot be interrupted; release the
		// transport and let process exit reap the session goroutine.
		sess.Close()
		return nil
	case err := <-done:
		return err
	}
}

// ListenAndServeWS serves one session per accepted websocket connection on
// the given port until ctx is cancelled. The listen socket failing to open
// is a startup failure and is returned as an error.
func (s *Server) ListenAndServeWS(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleWS)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
}

// handleWS upgrades one connection and serves its session to completion.
// Each connection gets an independent session; the HTTP stack already runs
// every handler in its own goroutine.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sess := NewSession(s.registry, protocol.NewWSTransport(conn))
	log.Printf("Session opened from %s", r.RemoteAddr)
	if err := sess.Run(); err != nil {
		log.Printf("Session from %s ended with error: %v", r.RemoteAddr, err)
		return
	}
	log.Printf("Session from %s closed", r.RemoteAddr)
}
