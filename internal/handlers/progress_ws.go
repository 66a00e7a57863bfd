package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ProgressMessage is one rebuild progress update pushed to subscribers.
type ProgressMessage struct {
	Type  string `json:"type"`
	Stage string `json:"stage"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
	At    string `json:"at"`
}

// ProgressWSHandler pushes rebuild progress to websocket subscribers.
// It implements the notifier interface the relationship service accepts,
// so a rebuild triggered by the job or an operator streams the same way.
type ProgressWSHandler struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
}

// NewProgressWSHandler creates a new progress websocket handler
func NewProgressWSHandler() *ProgressWSHandler {
	return &ProgressWSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens in the JWT middleware before the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// SetupRoutes sets up the websocket route
func (h *ProgressWSHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/progress", h.handleSubscribe)
}

// handleSubscribe upgrades the connection and keeps it registered until
// the peer goes away.
func (h *ProgressWSHandler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ProgressWSHandler: Upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Drain the read side to notice closes; subscribers never send.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *ProgressWSHandler) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Progress broadcasts one rebuild progress update to all subscribers.
func (h *ProgressWSHandler) Progress(stage string, done, total int) {
	if h.ClientCount() == 0 {
		return
	}
	msg := ProgressMessage{
		Type:  "rebuild_progress",
		Stage: stage,
		Done:  done,
		Total: total,
		At:    time.Now().UTC().Format(time.RFC3339),
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			h.drop(conn)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *ProgressWSHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
