package realtime

import (
	"log/slog"
	"testing"
)

func drain(s *Session) [][]byte {
	var messages [][]byte
	for {
		select {
		case msg := <-s.send:
			messages = append(messages, msg)
		default:
			return messages
		}
	}
}

func TestDeliverReachesAllPlayerSessions(t *testing.T) {
	hub := NewHub(slog.Default())

	first := newSession(1)
	second := newSession(1)
	other := newSession(2)
	hub.register(first)
	hub.register(second)
	hub.register(other)

	hub.Deliver(1, []byte("hello"))

	for _, s := range []*Session{first, second} {
		got := drain(s)
		if len(got) != 1 || string(got[0]) != "hello" {
			t.Fatalf("session of player 1 should receive the message, got %q", got)
		}
	}
	if got := drain(other); len(got) != 0 {
		t.Fatalf("player 2 must not receive player 1's messages, got %q", got)
	}
}

func TestDeliverToUnknownPlayerIsNoop(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Deliver(42, []byte("nobody home"))
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(slog.Default())

	session := newSession(1)
	hub.register(session)
	hub.unregister(session)

	if count := hub.SessionCount(1); count != 0 {
		t.Fatalf("expected no sessions after unregister, got %d", count)
	}

	// The send channel is closed on unregister so the writer goroutine exits.
	if _, ok := <-session.send; ok {
		t.Fatal("send channel should be closed")
	}

	hub.Deliver(1, []byte("late"))
}

func TestDeliverDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(slog.Default())

	session := newSession(1)
	hub.register(session)

	for i := 0; i < sessionSendBuffer+10; i++ {
		hub.Deliver(1, []byte("burst"))
	}

	if got := len(drain(session)); got != sessionSendBuffer {
		t.Fatalf("expected buffer-capacity messages, got %d", got)
	}
}
