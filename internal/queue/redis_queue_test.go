package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTransport(t *testing.T) (*miniredis.Miniredis, *RedisTransport) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisTransport(rdb, "pubsub:queue")
}

func TestRedisTransport_PublishDeliversToSubscriber(t *testing.T) {
	t.Parallel()

	_, tr := newTestTransport(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Payload, 1)
	if err := tr.Subscribe(ctx, func(ctx context.Context, p Payload) {
		got <- p
	}); err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	in := Payload{
		Recipient: "254700000000",
		Type:      "sms",
		Status:    "pending",
		Content:   "Hello",
	}
	if err := tr.Publish(ctx, in); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	select {
	case p := <-got:
		if p != in {
			t.Fatalf("delivered payload mismatch: got %+v want %+v", p, in)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
}

func TestRedisTransport_UndecodableMessageIsDropped(t *testing.T) {
	t.Parallel()

	mr, tr := newTestTransport(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Payload, 1)
	if err := tr.Subscribe(ctx, func(ctx context.Context, p Payload) {
		got <- p
	}); err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	mr.Publish("pubsub:queue", "{not json")

	in := Payload{Recipient: "254700000000", Type: "sms", Status: "pending", Content: "after"}
	if err := tr.Publish(ctx, in); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	// Only the valid message should arrive; the garbage one is skipped
	// without killing the subscriber loop.
	select {
	case p := <-got:
		if p.Content != "after" {
			t.Fatalf("expected the valid message, got %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("subscriber loop died on undecodable message")
	}
}

func TestRedisTransport_HandlerPanicDoesNotKillLoop(t *testing.T) {
	t.Parallel()

	_, tr := newTestTransport(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan string, 2)
	if err := tr.Subscribe(ctx, func(ctx context.Context, p Payload) {
		calls <- p.Content
		if p.Content == "boom" {
			panic("handler blew up")
		}
	}); err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	for _, content := range []string{"boom", "fine"} {
		p := Payload{Recipient: "254700000000", Type: "sms", Status: "pending", Content: content}
		if err := tr.Publish(ctx, p); err != nil {
			t.Fatalf("Publish() error: %v", err)
		}
	}

	for _, want := range []string{"boom", "fine"} {
		select {
		case got := <-calls:
			if got != want {
				t.Fatalf("expected %q, got %q", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestRedisTransport_PublishFailsWhenBrokerDown(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tr := NewRedisTransport(rdb, "pubsub:queue")

	mr.Close()

	err := tr.Publish(context.Background(), Payload{Recipient: "1", Type: "sms", Status: "pending", Content: "x"})
	if err == nil {
		t.Fatalf("expected publish error with broker down, got nil")
	}
}

func TestRedisTransport_SubscribeFailsWhenBrokerDown(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tr := NewRedisTransport(rdb, "pubsub:queue")

	mr.Close()

	if err := tr.Subscribe(context.Background(), func(context.Context, Payload) {}); err == nil {
		t.Fatalf("expected subscribe error with broker down, got nil")
	}
}
