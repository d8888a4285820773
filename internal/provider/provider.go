package provider

import (
	"context"
	"errors"
)

// ErrUnavailable wraps transport-level failures against the gateway:
// connection errors, timeouts, non-success responses. The dispatch layer
// turns it into a retry, never into a crash.
var ErrUnavailable = errors.New("delivery provider unavailable")

// Recipient is one per-recipient outcome reported by the gateway.
type Recipient struct {
	Number    string `json:"number"`
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
	Cost      string `json:"cost"`
}

// DeliveryProvider is the outbound delivery port. One implementation exists
// per channel; the dispatch service picks one by message type. A non-empty
// outcome list means the provider accepted the send.
type DeliveryProvider interface {
	Send(ctx context.Context, body, sender string, recipients []string, enableQueueing bool) ([]Recipient, error)
}
