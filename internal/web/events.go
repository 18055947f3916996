// pattern: Imperative Shell

package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	eventConnected       = "connected"
	eventGraphUpdated    = "graph-updated"
	eventInferenceFailed = "inference-failed"

	writeTimeout = 5 * time.Second
)

// eventMessage is the JSON frame pushed to websocket subscribers.
type eventMessage struct {
	Type        string    `json:"type"`
	Projects    int       `json:"projects,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitzero"`
	Error       string    `json:"error,omitempty"`
}

// eventBroker fans out graph events to websocket subscribers.
type eventBroker struct {
	mu          sync.Mutex
	subscribers map[chan eventMessage]struct{}
	closed      bool
}

func newEventBroker() *eventBroker {
	return &eventBroker{
		subscribers: make(map[chan eventMessage]struct{}),
	}
}

// Subscribe returns a channel holding at most the latest undelivered event.
// The caller must call Unsubscribe when done.
func (b *eventBroker) Subscribe() chan eventMessage {
	ch := make(chan eventMessage, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber channel.
func (b *eventBroker) Unsubscribe(ch chan eventMessage) {
	b.mu.Lock()
	delete(b.subscribers, ch)
	b.mu.Unlock()
}

// Notify delivers msg to all subscribers without blocking. A subscriber that
// has not consumed its previous event gets that event replaced, so a slow
// client always sees the newest state.
func (b *eventBroker) Notify(msg eventMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- msg
	}
}

// Close disconnects every subscriber; later subscriptions start closed.
func (b *eventBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, ch)
	}
}

// handleEvents upgrades to a websocket, sends a "connected" frame, then one
// frame per published inference outcome.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Restrict to localhost origins to prevent cross-origin WebSocket attacks.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	// Subscribers only receive; CloseRead handles control frames and cancels
	// ctx once the client goes away.
	ctx := conn.CloseRead(context.Background())

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	if err := s.writeEvent(ctx, conn, eventMessage{Type: eventConnected}); err != nil {
		return
	}
	s.logger.Debug("event subscriber connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := s.writeEvent(ctx, conn, msg); err != nil {
				s.logger.Debug("event subscriber write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) writeEvent(ctx context.Context, conn *websocket.Conn, msg eventMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
