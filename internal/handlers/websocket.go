package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"PalMessenger/internal/appMiddleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket registers the connection in the pool so the server can push
// notification events while the client is online. The socket is
// read-drained only; all state changes go through the HTTP surface.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	login, ok := appMiddleware.LoginFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection for %s: %v", login, err)
		return
	}

	client := h.pool.AddClient(login, conn)
	defer func() {
		h.pool.RemoveClient(client)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("Connection closed for %s: %v", login, err)
			return
		}
	}
}
