package websocket

import (
	"log"
	"sync"
)

// Message is the wire frame pushed to connected clients.
type Message struct {
	UserID  string      `json:"user_id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub tracks the open connections per user and routes outbound
// messages to them. A user may hold several connections at once.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the hub's event loop. It owns the client map mutations.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			// Write lock: slow consumers get evicted in place.
			h.mu.Lock()
			if clients, ok := h.clients[message.UserID]; ok {
				for client := range clients {
					select {
					case client.send <- message:
					default:
						// Slow consumer, drop the connection.
						close(client.send)
						delete(clients, client)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, message.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToUser queues a message for every connection the user has
// open. Messages to offline users are dropped; the stored notification
// is still there on the next fetch.
func (h *Hub) BroadcastToUser(userID string, msg Message) {
	msg.UserID = userID
	select {
	case h.broadcast <- &msg:
	default:
		log.Printf("websocket: broadcast channel full, dropping message for user %s", userID)
	}
}

// ClientCount returns the number of open connections for a user.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
