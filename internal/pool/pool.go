package pool

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// writeWait bounds how long one stalled connection may hold up a push.
const writeWait = 10 * time.Second

// Pool tracks live websocket connections per login. One user may hold
// several connections at once, so each one gets its own id.
type Pool struct {
	mu      sync.Mutex
	clients map[string]map[uuid.UUID]*Client
}

type Client struct {
	ID    uuid.UUID
	Login string
	Conn  *websocket.Conn
}

func New() *Pool {
	return &Pool{
		clients: make(map[string]map[uuid.UUID]*Client),
	}
}

func (p *Pool) AddClient(login string, conn *websocket.Conn) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	client := &Client{
		ID:    uuid.New(),
		Login: login,
		Conn:  conn,
	}
	if p.clients[login] == nil {
		p.clients[login] = make(map[uuid.UUID]*Client)
	}
	p.clients[login][client.ID] = client

	log.Printf("Client %s added to pool for %s", client.ID, login)
	return client
}

func (p *Pool) RemoveClient(client *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns := p.clients[client.Login]
	delete(conns, client.ID)
	if len(conns) == 0 {
		delete(p.clients, client.Login)
	}
	log.Printf("Client %s removed from pool for %s", client.ID, client.Login)
}

// NotifyUsers pushes an event to every live connection of the given
// logins. Dead connections are dropped from the pool on write failure.
func (p *Pool) NotifyUsers(logins []string, eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	payload := map[string]interface{}{
		"event": eventType,
		"data":  data,
	}

	for _, login := range logins {
		for id, client := range p.clients[login] {
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(payload); err != nil {
				log.Printf("Error sending event to %s: %v", login, err)
				client.Conn.Close()
				delete(p.clients[login], id)
			}
		}
		if len(p.clients[login]) == 0 {
			delete(p.clients, login)
		}
	}
}
