package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisTransport implements Transport over a Redis pub/sub channel. The
// client is shared between the publish and subscribe paths; go-redis clients
// are safe for concurrent use.
type RedisTransport struct {
	rdb     *redis.Client
	channel string
}

func NewRedisTransport(rdb *redis.Client, channel string) *RedisTransport {
	return &RedisTransport{rdb: rdb, channel: channel}
}

func (t *RedisTransport) Publish(ctx context.Context, p Payload) error {
	b, err := Encode(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := t.rdb.Publish(ctx, t.channel, b).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", t.channel, err)
	}
	return nil
}

func (t *RedisTransport) Subscribe(ctx context.Context, h Handler) error {
	sub := t.rdb.Subscribe(ctx, t.channel)

	// Block until Redis confirms the subscription so a broken broker is a
	// startup failure, not a silent no-consumer situation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe to %s: %w", t.channel, err)
	}

	ch := sub.Channel()
	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				slog.Info("queue subscriber stopping", "channel", t.channel)
				return
			case msg, ok := <-ch:
				if !ok {
					slog.Warn("queue subscription closed", "channel", t.channel)
					return
				}
				t.dispatch(ctx, h, msg.Payload)
			}
		}
	}()

	return nil
}

func (t *RedisTransport) dispatch(ctx context.Context, h Handler, raw string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("queue handler panic recovered", "channel", t.channel, "panic", r)
		}
	}()

	p, err := Decode([]byte(raw))
	if err != nil {
		slog.Error("dropping undecodable queue message", "channel", t.channel, "error", err)
		return
	}
	h(ctx, p)
}
