// Package hub fans the turnos-updates refresh signal out to open screens:
// SockJS clients, in-process listeners and, through Relay, other gateway
// instances.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

const (
	Channel           = "turnos-updates"
	EventTurnsUpdated = "turnos-updated"
)

type Event struct {
	Type   string `json:"type"`
	TurnID int64  `json:"turn_id,omitempty"`
	UserID *int64 `json:"user_id,omitempty"`
	Action string `json:"action,omitempty"`
	Origin string `json:"origin,omitempty"`
}

// Subscription narrows a client to one doctor's turns. The zero value
// receives everything.
type Subscription struct {
	UserID int64
}

type Client struct {
	ID           string
	Send         chan []byte
	Subscription Subscription
}

type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	listeners map[int]chan Event
	nextID    int
}

type SubscribeMessage struct {
	Action string `json:"action"`
	UserID int64  `json:"user_id"`
}

func New() *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		listeners: make(map[int]chan Event),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) UpdateSubscription(client *Client, sub Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.Subscription = sub
}

// Listen returns a channel that receives every broadcast event. The channel
// holds at most one pending event; further events are coalesced while the
// listener is busy. The returned func stops delivery.
func (h *Hub) Listen() (<-chan Event, func()) {
	ch := make(chan Event, 1)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Broadcast delivers event without blocking: a client whose buffer is full
// misses the message.
func (h *Hub) Broadcast(event Event) {
	if event.Type == "" {
		event.Type = EventTurnsUpdated
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("encode hub event failed err=%v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !match(client.Subscription, event) {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			log.Printf("drop message for client %s", client.ID)
		}
	}
	for _, ch := range h.listeners {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func match(sub Subscription, event Event) bool {
	if sub.UserID == 0 || event.UserID == nil {
		return true
	}
	return *event.UserID == sub.UserID
}

func ParseSubscribe(data []byte) (SubscribeMessage, bool) {
	var msg SubscribeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return SubscribeMessage{}, false
	}
	if msg.Action != "subscribe" && msg.Action != "unsubscribe" {
		return SubscribeMessage{}, false
	}
	return msg, true
}

// Notifier broadcasts turn mutations locally and, when Relay is set, to the
// other gateway instances.
type Notifier struct {
	Hub   *Hub
	Relay *Relay
}

func (n Notifier) TurnsUpdated(ctx context.Context, turnID int64, userID *int64, action string) {
	event := Event{Type: EventTurnsUpdated, TurnID: turnID, UserID: userID, Action: action}
	n.Hub.Broadcast(event)
	if n.Relay != nil {
		n.Relay.Publish(ctx, event)
	}
}
