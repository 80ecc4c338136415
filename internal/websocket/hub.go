package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gymgate/internal/metrics"
)

// Client subscription messages, sent as JSON text frames after connecting.
type subscribeMessage struct {
	Type string `json:"type"`
	Data struct {
		MemberID string `json:"memberId"`
	} `json:"data"`
}

const (
	msgSubscribeAdmins = "subscribe:members"
	msgSubscribeMember = "subscribe:member-events"
	msgUnsubscribeAll  = "unsubscribe:members"
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// isAdmin comes from the connection token; adminFeed turns on only
	// after the client asks for the admin audience.
	isAdmin   bool
	adminFeed bool

	// memberCode is the private channel this client joined; a client
	// belongs to at most one member channel at a time.
	memberCode string

	mu        sync.Mutex
	isClosing bool
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.WebsocketClients.Inc()
			log.Printf("websocket client connected (admin: %v)", client.isAdmin)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WebsocketClients.Dec()
				log.Printf("websocket client disconnected (admin: %v)", client.isAdmin)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) setAdminFeed(client *Client, on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.adminFeed = on && client.isAdmin
}

func (h *Hub) setMemberChannel(client *Client, memberCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.memberCode = memberCode
}

func (h *Hub) handleSubscribe(client *Client, raw []byte) {
	var msg subscribeMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case msgSubscribeAdmins:
		h.setAdminFeed(client, true)
	case msgSubscribeMember:
		if msg.Data.MemberID != "" {
			h.setMemberChannel(client, msg.Data.MemberID)
		}
	case msgUnsubscribeAll:
		h.setAdminFeed(client, false)
		h.setMemberChannel(client, "")
	}
}

// broadcastToAdmins delivers an event to every subscribed admin session.
// Delivery is at-most-once: a client whose buffer is full is skipped.
func (h *Hub) broadcastToAdmins(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket: marshal event failed: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.adminFeed {
			select {
			case client.send <- data:
			default:
				continue
			}
		}
	}
}

// broadcastToMember delivers an event to every client joined to the given
// member's private channel.
func (h *Hub) broadcastToMember(memberCode string, event Event) {
	if memberCode == "" {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket: marshal event failed: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.memberCode == memberCode {
			select {
			case client.send <- data:
			default:
				continue
			}
		}
	}
}

func (client *Client) HandleClientConnection() {
	client.hub.register <- client

	defer func() {
		client.mu.Lock()
		client.isClosing = true
		client.mu.Unlock()
		client.hub.unregister <- client
		client.conn.Close()
	}()

	go client.writePump()
	client.readPump()
}

func (client *Client) readPump() {
	defer func() {
		client.mu.Lock()
		if !client.isClosing {
			client.hub.unregister <- client
			client.conn.Close()
		}
		client.mu.Unlock()
	}()

	client.conn.SetReadLimit(1024)
	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			break
		}
		client.hub.handleSubscribe(client, raw)
	}
}

func (client *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.mu.Lock()
		if !client.isClosing {
			client.conn.Close()
		}
		client.mu.Unlock()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(client.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
