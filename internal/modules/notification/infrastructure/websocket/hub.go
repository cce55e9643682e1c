package websocket

import (
	"log/slog"
	"sync"
)

type UnicastMessage struct {
	UserID  int64
	Message []byte
}

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for every connected client.
	broadcast chan []byte

	// Messages for the clients of a single user.
	unicast chan UnicastMessage

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	stop     chan struct{}
	stopOnce sync.Once

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		broadcast:  make(chan []byte),
		unicast:    make(chan UnicastMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		clients: make(map[*Client]bool),
		stop:    make(chan struct{}),
		logger:  logger.With("component", "ws_hub"),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client registered", "addr", client.remoteAddr(), "user_id", client.userID)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("client unregistered", "addr", client.remoteAddr(), "user_id", client.userID)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		case msg := <-h.unicast:
			for client := range h.clients {
				if client.userID == msg.UserID {
					h.deliver(client, msg.Message)
				}
			}
		case <-h.stop:
			h.logger.Debug("stopping hub", "clients", len(h.clients))
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// deliver drops clients whose send buffer is full.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	close(client.send)
	delete(h.clients, client)
}

func (h *Hub) BroadcastMessage(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.stop:
	}
}

func (h *Hub) SendToUser(userID int64, message []byte) {
	select {
	case h.unicast <- UnicastMessage{UserID: userID, Message: message}:
	case <-h.stop:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
