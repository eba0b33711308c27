package worker

import (
	"encoding/json"
	"testing"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe()
	b := hub.Subscribe()
	if hub.Count() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.Count())
	}

	hub.Broadcast([]byte("hello"))

	for _, ch := range []chan []byte{a, b} {
		select {
		case msg := <-ch:
			if string(msg) != "hello" {
				t.Fatalf("got %q", msg)
			}
		default:
			t.Fatalf("client did not receive the broadcast")
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	ch := hub.Subscribe()
	hub.Unsubscribe(ch)
	if hub.Count() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.Count())
	}
	if _, open := <-ch; open {
		t.Fatalf("channel must be closed on unsubscribe")
	}
	// Unsubscribing twice must not panic
	hub.Unsubscribe(ch)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := hub.Subscribe()
	fast := hub.Subscribe()

	// Fill the slow client's buffer, then drain the fast one each round.
	for i := 0; i < 64; i++ {
		hub.Broadcast([]byte("x"))
		<-fast
	}
	hub.Broadcast([]byte("overflow"))

	if hub.Count() != 1 {
		t.Fatalf("slow client must be dropped, count = %d", hub.Count())
	}
	// Drain the slow channel; it must end closed, not blocked.
	for range slow {
	}
}

func TestNotifierPush(t *testing.T) {
	hub := NewHub(nil)
	ch := hub.Subscribe()
	n := NewNotifier(nil, hub, nil)

	n.push("user.created", map[string]interface{}{
		"key":       "u-1",
		"data":      `{"userId":"u-1"}`,
		"timestamp": "2025-06-01T12:00:00Z",
		"service":   "baribhara-api",
	})

	var note Notification
	select {
	case msg := <-ch:
		if err := json.Unmarshal(msg, &note); err != nil {
			t.Fatalf("notification is not valid JSON: %v", err)
		}
	default:
		t.Fatalf("expected a broadcast")
	}
	if note.Topic != "user.created" || note.Key != "u-1" {
		t.Fatalf("unexpected notification: %+v", note)
	}
	if string(note.Data) != `{"userId":"u-1"}` {
		t.Fatalf("data not passed through raw: %s", note.Data)
	}
}
