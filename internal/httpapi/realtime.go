package httpapi

import (
	"log"
	"net/http"

	"turnon/internal/hub"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
)

// RealtimeHandler pushes hub events to SockJS clients under /realtime/.
// Clients may narrow the feed with {"action":"subscribe","user_id":N}.
func RealtimeHandler(h *hub.Hub) http.Handler {
	return sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		serveRealtime(h, session)
	})
}

type realtimeSession interface {
	Recv() (string, error)
	Send(string) error
}

func serveRealtime(h *hub.Hub, session realtimeSession) {
	client := &hub.Client{ID: uuid.NewString(), Send: make(chan []byte, 16)}
	h.Register(client)
	defer h.Unregister(client)

	go func() {
		for msg := range client.Send {
			if err := session.Send(string(msg)); err != nil {
				log.Printf("realtime send failed client=%s err=%v", client.ID, err)
			}
		}
	}()

	for {
		msg, err := session.Recv()
		if err != nil {
			return
		}
		parsed, ok := hub.ParseSubscribe([]byte(msg))
		if !ok {
			continue
		}
		if parsed.Action == "unsubscribe" {
			h.UpdateSubscription(client, hub.Subscription{})
			continue
		}
		h.UpdateSubscription(client, hub.Subscription{UserID: parsed.UserID})
	}
}
