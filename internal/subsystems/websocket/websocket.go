// Package websocket supplies the WebSocket subsystem: mounts an
// upgrade endpoint on the shared WebServer router and fans out frames
// to connected clients. Wire-level framing semantics beyond RFC 6455's
// basic text/binary split are out of scope.
package websocket

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/httpserver"
)

// HubKey stashes the *Hub on the AppContext for the Terminal subsystem
// to publish command output lines through.
const HubKey = "websocket.hub"

// Hub tracks connected clients and fans out frames to all of them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends payload as a text frame to every connected client,
// dropping any client whose write fails.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("WebSocket")
	hub := newHub()

	return &orchestrator.Subsystem{
		Name:         "WebSocket",
		Dependencies: []string{"WebServer"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			router, ok := ctx.Get(httpserver.RouterKey)
			if !ok {
				log.Error("web server router not available")
				return false
			}
			router.(*mux.Router).HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					log.WithError(err).Warn("websocket upgrade failed")
					return
				}
				hub.add(conn)
				go readUntilClose(hub, conn)
			})
			ctx.Put(HubKey, hub)
			return true
		},
		Land: func() bool {
			hub.mu.Lock()
			for conn := range hub.clients {
				conn.Close()
			}
			hub.clients = make(map[*websocket.Conn]struct{})
			hub.mu.Unlock()
			return true
		},
	}
}

func readUntilClose(hub *Hub, conn *websocket.Conn) {
	defer hub.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
