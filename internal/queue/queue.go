package queue

import "context"

// Handler is invoked once per message the transport delivers. It has no
// return value on purpose: delivery-path failures are handled inside the
// handler and must never bubble into the transport's redelivery machinery.
type Handler func(ctx context.Context, p Payload)

// Transport moves queued messages from the submit path to the delivery path.
type Transport interface {
	// Publish is fire-and-forget; it fails synchronously when the broker
	// is unreachable so the caller can surface the error.
	Publish(ctx context.Context, p Payload) error

	// Subscribe registers the handler on the transport's channel. It
	// returns once the subscription is confirmed; delivery happens on a
	// background goroutine until ctx is canceled.
	Subscribe(ctx context.Context, h Handler) error
}
