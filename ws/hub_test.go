package ws

import (
	"context"
	"testing"
)

// newTestClient builds a client without a network connection or loops; events
// are read straight off the Send channel.
func newTestClient(userID uint, email string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		UserID: userID,
		Email:  email,
		Send:   make(chan Event, 4),
		ctx:    ctx,
		cancel: cancel,
	}
}

func TestRoomNames(t *testing.T) {
	if UserRoom(42) != "user:42" {
		t.Errorf("UserRoom(42) = %q", UserRoom(42))
	}
	if EmailRoom("Farmer@Example.COM") != "email:farmer@example.com" {
		t.Errorf("EmailRoom must lowercase: %q", EmailRoom("Farmer@Example.COM"))
	}
}

func TestJoinBroadcastOnline(t *testing.T) {
	h := NewHub()
	c := newTestClient(1, "a@example.com")

	h.Join(c, UserRoom(1))
	h.Join(c, EmailRoom("a@example.com"))

	if !h.Online(UserRoom(1)) || !h.Online(EmailRoom("a@example.com")) {
		t.Fatal("client should be online in both rooms after join")
	}
	if h.Online(UserRoom(2)) {
		t.Fatal("unjoined room should be offline")
	}

	h.Broadcast(UserRoom(1), Event{Type: "receive_message"})
	select {
	case ev := <-c.Send:
		if ev.Type != "receive_message" {
			t.Errorf("got event %q", ev.Type)
		}
	default:
		t.Fatal("expected broadcast to reach the client")
	}

	// A broadcast to a room nobody joined is a silent no-op.
	h.Broadcast(UserRoom(99), Event{Type: "receive_message"})
}

func TestBroadcastFanOut(t *testing.T) {
	h := NewHub()
	c1 := newTestClient(1, "a@example.com")
	c2 := newTestClient(1, "a@example.com")
	h.Join(c1, UserRoom(1))
	h.Join(c2, UserRoom(1))

	h.Broadcast(UserRoom(1), Event{Type: "typing"})

	for i, c := range []*Client{c1, c2} {
		select {
		case <-c.Send:
		default:
			t.Errorf("connection %d missed the broadcast", i)
		}
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	c := newTestClient(1, "a@example.com")
	c.Send = make(chan Event) // zero capacity, always full
	h.Join(c, UserRoom(1))

	done := make(chan struct{})
	go func() {
		h.Broadcast(UserRoom(1), Event{Type: "receive_message"})
		close(done)
	}()
	<-done // must not block
}

func TestRemoveClientLeavesAllRooms(t *testing.T) {
	h := NewHub()
	c := newTestClient(3, "b@example.com")
	h.Join(c, UserRoom(3))
	h.Join(c, EmailRoom("b@example.com"))

	h.RemoveClient(c)

	if h.Online(UserRoom(3)) || h.Online(EmailRoom("b@example.com")) {
		t.Fatal("removed client should leave every room")
	}

	// Removing twice must not panic or corrupt room state.
	h.RemoveClient(c)
}
