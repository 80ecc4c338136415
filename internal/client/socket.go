package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is a push notification as received off the wire.
type Event struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

type MemberEventData struct {
	ID       uint   `json:"id"`
	MemberID string `json:"memberId"`
	Status   string `json:"status"`
}

// Subscriber owns one websocket connection to the /ws/members namespace.
// It is an explicit resource: the caller dials it, subscribes, consumes
// Events() and closes it — no shared singleton.
type Subscriber struct {
	conn   *websocket.Conn
	events chan Event

	closeOnce sync.Once
	closed    chan struct{}
}

// DialSubscriber connects to the event endpoint, e.g.
// ws://localhost:8080/ws/members. Token is optional and only needed for
// the admin audience.
func DialSubscriber(ctx context.Context, wsURL, token string) (*Subscriber, error) {
	if token != "" {
		wsURL += "?token=" + token
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	s := &Subscriber{
		conn:   conn,
		events: make(chan Event, 16),
		closed: make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// SubscribeMemberEvents joins one member's private channel.
func (s *Subscriber) SubscribeMemberEvents(memberID string) error {
	return s.conn.WriteJSON(map[string]interface{}{
		"type": "subscribe:member-events",
		"data": map[string]string{"memberId": memberID},
	})
}

// SubscribeAdmin requests the admin audience; the server honors it only if
// the connection token carries the admin claim.
func (s *Subscriber) SubscribeAdmin() error {
	return s.conn.WriteJSON(map[string]string{"type": "subscribe:members"})
}

// Events yields pushed events until the connection closes. Delivery is
// at-most-once: events published while disconnected are gone, which is why
// consumers pair this with polling.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

func (s *Subscriber) readLoop() {
	defer close(s.events)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
			default:
				log.Printf("subscriber read error: %v", err)
			}
			return
		}

		// The server batches queued events into one frame separated by
		// newlines.
		for _, chunk := range bytes.Split(raw, []byte{'\n'}) {
			if len(chunk) == 0 {
				continue
			}
			var event Event
			if err := json.Unmarshal(chunk, &event); err != nil {
				continue
			}
			select {
			case s.events <- event:
			case <-s.closed:
				return
			}
		}
	}
}

func (s *Subscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}
