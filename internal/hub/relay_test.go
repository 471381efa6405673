package hub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
)

func TestRelayPublishesTaggedEvent(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	relay := NewRelay(rdb, "", New())

	userID := int64(3)
	expected, err := json.Marshal(Event{
		Type:   EventTurnsUpdated,
		TurnID: 11,
		UserID: &userID,
		Action: "create",
		Origin: relay.origin,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mock.ExpectPublish(Channel, string(expected)).SetVal(1)

	relay.Publish(context.Background(), Event{TurnID: 11, UserID: &userID, Action: "create"})
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("redis expectations: %v", err)
	}
}

func TestRelayPublishErrorIsSwallowed(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	relay := NewRelay(rdb, "custom", New())
	expected, _ := json.Marshal(Event{Type: EventTurnsUpdated, Origin: relay.origin})
	mock.ExpectPublish("custom", string(expected)).SetErr(errors.New("connection refused"))

	relay.Publish(context.Background(), Event{})
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("redis expectations: %v", err)
	}
}

func TestRelayIgnoresOwnEcho(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	h := New()
	relay := NewRelay(rdb, "", h)
	c := newClient("c", 2)
	h.Register(c)

	own, _ := json.Marshal(Event{Type: EventTurnsUpdated, Origin: relay.origin})
	relay.handle(string(own))
	if len(c.Send) != 0 {
		t.Fatalf("own echo was rebroadcast")
	}

	foreign, _ := json.Marshal(Event{Type: EventTurnsUpdated, Origin: "other-instance", TurnID: 4})
	relay.handle(string(foreign))
	if len(c.Send) != 1 {
		t.Fatalf("expected foreign event delivered, got %d", len(c.Send))
	}

	relay.handle("{broken")
	if len(c.Send) != 1 {
		t.Fatalf("broken payload should be dropped, got %d", len(c.Send))
	}
}
