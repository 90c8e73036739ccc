package domain

import (
	"context"
	"errors"
	"testing"
)

func TestSimplePubSub_DeliversToSubscribers(t *testing.T) {
	ps := NewSimplePubSub()
	a := ps.Subscribe("room:a")
	b := ps.Subscribe("room:a")
	other := ps.Subscribe("room:b")

	if err := ps.Publish(context.Background(), "room:a", Message{SessionID: "s1", Data: []byte("hi")}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	for _, ch := range []<-chan Message{a, b} {
		select {
		case msg := <-ch:
			if string(msg.Data) != "hi" || msg.SessionID != "s1" {
				t.Errorf("msg = %+v", msg)
			}
		default:
			t.Errorf("subscriber did not receive message")
		}
	}
	select {
	case msg := <-other:
		t.Errorf("other topic received %+v", msg)
	default:
	}
}

func TestSimplePubSub_Unsubscribe(t *testing.T) {
	ps := NewSimplePubSub()
	ch := ps.Subscribe("session:x")
	ps.Unsubscribe("session:x", ch)

	if err := ps.Publish(context.Background(), "session:x", Message{}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-ch:
		t.Errorf("unsubscribed channel received a message")
	default:
	}
	if len(ps.subs) != 0 {
		t.Errorf("subs = %d topics, want 0", len(ps.subs))
	}
}

func TestSimplePubSub_DropsWhenFull(t *testing.T) {
	ps := NewSimplePubSub()
	ps.buffer = 1
	ps.Subscribe("room:a")

	ctx := context.Background()
	if err := ps.Publish(ctx, "room:a", Message{}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := ps.Publish(ctx, "room:a", Message{}); !errors.Is(err, ErrTopicFull) {
		t.Errorf("err = %v, want %v", err, ErrTopicFull)
	}
}
