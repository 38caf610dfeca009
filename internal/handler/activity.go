package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yourorg/toolshare/internal/domain"
)

// ActivityHub fans lending events out to connected websocket clients. It
// implements domain.EventPublisher; the lending core publishes into it after
// every successful list, borrow, return, and delete.
type ActivityHub struct {
	mu             sync.Mutex
	clients        map[*websocket.Conn]bool
	logger         *slog.Logger
	allowedOrigins []string
}

// NewActivityHub creates an empty hub
func NewActivityHub(logger *slog.Logger, allowedOrigins []string) *ActivityHub {
	return &ActivityHub{
		clients:        make(map[*websocket.Conn]bool),
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// upgrader is built per-request to use the hub's allowed origins
func (h *ActivityHub) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no origin
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/activity: it upgrades the connection and holds it
// open until the client disconnects
func (h *ActivityHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	h.clients[ws] = true
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("activity client connected", slog.Int("clients", count))

	defer func() {
		h.mu.Lock()
		delete(h.clients, ws)
		h.mu.Unlock()
		ws.Close()
	}()

	// Drain incoming frames; the feed is one-way
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends an event to every connected client, dropping clients whose
// writes fail. Publishing never blocks the lending core on a slow reader
// beyond the write itself.
func (h *ActivityHub) Publish(event domain.ActivityEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal activity event", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients {
		if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("dropping activity client", slog.String("error", err.Error()))
			delete(h.clients, ws)
			ws.Close()
		}
	}
}
