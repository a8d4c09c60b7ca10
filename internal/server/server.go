package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/roomvoice/roomvoice/internal/platform/timeouts"
	"github.com/roomvoice/roomvoice/internal/session"
	"github.com/roomvoice/roomvoice/internal/sheet"
	"github.com/roomvoice/roomvoice/internal/storage"
)

// Config defines the inputs for the API server.
type Config struct {
	HTTPAddr      string
	Workspace     string
	AdminPassword string
	SessionSecret string
	SessionTTL    time.Duration
}

// Server hosts the roomvoice JSON API.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      storage.Store
}

// NewServer builds a configured API server over the given store and sheet
// sink.
func NewServer(config Config, store storage.Store, sink sheet.Sink) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if strings.TrimSpace(config.AdminPassword) == "" {
		return nil, errors.New("admin password is required")
	}
	workspace := strings.TrimSpace(config.Workspace)
	if workspace == "" {
		workspace = "workspace"
	}

	sessions, err := session.NewManager(config.SessionSecret, config.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("configure sessions: %w", err)
	}

	handler := NewHandler(store, sink, sessions, workspace, config.AdminPassword)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("roomvoice listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the storage resources held by the server.
func (s *Server) Close() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}
