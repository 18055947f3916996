// pattern: Imperative Shell

// Package web serves the latest inferred graph over HTTP and pushes update
// notifications to websocket subscribers.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"tsgraph/internal/events"
	"tsgraph/internal/inference"
	"tsgraph/internal/logging"
)

// GraphSource provides the snapshot the API serves.
type GraphSource interface {
	Root() string
	Last() (inference.Snapshot, bool)
}

// RefreshFunc re-runs inference and publishes the outcome.
type RefreshFunc func(ctx context.Context) error

// Server is the web server that serves the graph API.
type Server struct {
	httpServer *http.Server
	source     GraphSource
	refresh    RefreshFunc
	notifyTUI  func(any)
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	events     *eventBroker

	mu        sync.RWMutex
	lastError string
}

// Config holds web server configuration.
type Config struct {
	Bind string
	Port int
}

// New creates a web server.
// refresh is called by POST /api/refresh; a nil refresh disables the endpoint.
// notifyTUI is called with an events.WebListenURLMsg once the server listens.
// logProvider must implement logging.LoggerProvider (both *logging.Manager and
// *logging.TestLogManager satisfy this interface).
func New(cfg Config, source GraphSource, refresh RefreshFunc, notifyTUI func(any), logProvider logging.LoggerProvider) *Server {
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		source:    source,
		refresh:   refresh,
		notifyTUI: notifyTUI,
		logger:    logProvider.For("web"),
		addr:      addr,
		events:    newEventBroker(),
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/{root...}", s.handleGetProject)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	return s
}

// Publish records the outcome of an inference run and notifies websocket
// subscribers. It accepts events.GraphUpdatedMsg and events.InferenceFailedMsg;
// other messages are ignored.
func (s *Server) Publish(msg any) {
	switch m := msg.(type) {
	case events.GraphUpdatedMsg:
		s.mu.Lock()
		s.lastError = ""
		s.mu.Unlock()
		s.events.Notify(eventMessage{Type: eventGraphUpdated, Projects: len(m.Snapshot.Result.Projects), GeneratedAt: m.Snapshot.GeneratedAt})
	case events.InferenceFailedMsg:
		s.mu.Lock()
		s.lastError = m.Err.Error()
		s.mu.Unlock()
		s.events.Notify(eventMessage{Type: eventInferenceFailed, Error: m.Err.Error()})
	}
}

func (s *Server) currentError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Listen binds the configured address. The bound address is available from
// Addr before Serve blocks, so callers can record an ephemeral port.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	if s.notifyTUI != nil {
		s.notifyTUI(events.WebListenURLMsg{URL: "http://" + ln.Addr().String()})
	}
	return ln, nil
}

// Serve accepts connections on the listener. Blocks until the server stops.
// Must call Listen() first.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Addr returns the address the server is listening on.
// Before Listen it is the configured address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown gracefully stops the server and disconnects event subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	s.events.Close()
	return s.httpServer.Shutdown(ctx)
}
