package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adams-okode/messaging-gateway-service/internal/cache"
	"github.com/adams-okode/messaging-gateway-service/internal/model"
	"github.com/adams-okode/messaging-gateway-service/internal/provider"
	"github.com/adams-okode/messaging-gateway-service/internal/queue"
	"github.com/adams-okode/messaging-gateway-service/internal/repo"
)

var (
	ErrInvalidRequest     = errors.New("invalid message request")
	ErrUnsupportedChannel = errors.New("unsupported message channel")
)

type SubmitRequest struct {
	Recipient string            `json:"recipient"`
	Content   string            `json:"content"`
	Subject   string            `json:"subject,omitempty"`
	Type      model.MessageType `json:"type"`
}

type Options struct {
	// DefaultSender is the sender id handed to the provider on every send.
	DefaultSender string

	// MaxRetries caps the retry counter; once reached, a failing record
	// turns failed instead of staying pending. Zero leaves retries
	// uncapped and failing records pending indefinitely.
	MaxRetries int
}

// Service owns the dispatch cycle: Submit validates and publishes, the
// delivery path sends through the channel's provider, mutates status and
// retries, and persists the record as the single write-back of the cycle.
type Service struct {
	transport queue.Transport
	store     repo.MessageRepository
	providers map[model.MessageType]provider.DeliveryProvider
	receipts  cache.ReceiptCache
	opts      Options
}

func NewService(transport queue.Transport, store repo.MessageRepository, opts Options) *Service {
	return &Service{
		transport: transport,
		store:     store,
		providers: make(map[model.MessageType]provider.DeliveryProvider),
		opts:      opts,
	}
}

// RegisterProvider wires a delivery provider for one channel. Call during
// startup, before Subscribe; the map is read-only afterwards.
func (s *Service) RegisterProvider(t model.MessageType, p provider.DeliveryProvider) *Service {
	s.providers[t] = p
	return s
}

// WithReceipts enables best-effort receipt caching after successful sends.
func (s *Service) WithReceipts(c cache.ReceiptCache) *Service {
	s.receipts = c
	return s
}

// Submit accepts a new message, publishes it for asynchronous delivery and
// returns the pending snapshot. Nothing is persisted here; the caller never
// waits on the provider.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (model.Message, error) {
	if req.Recipient == "" {
		return model.Message{}, fmt.Errorf("%w: recipient is required", ErrInvalidRequest)
	}
	if req.Content == "" {
		return model.Message{}, fmt.Errorf("%w: content is required", ErrInvalidRequest)
	}
	if _, ok := s.providers[req.Type]; !ok {
		return model.Message{}, fmt.Errorf("%w: %q", ErrUnsupportedChannel, req.Type)
	}

	m := model.New(req.Recipient, req.Type, req.Subject, req.Content)

	if err := s.transport.Publish(ctx, queue.FromMessage(m)); err != nil {
		return model.Message{}, fmt.Errorf("queue message: %w", err)
	}

	slog.Info("message queued", "type", m.Type, "recipient", m.Recipient)
	return m, nil
}

// Subscribe registers the delivery path on the transport. Handler errors are
// logged here and never returned to the transport, so broker-level
// redelivery stays decoupled from the service's own retry counting.
func (s *Service) Subscribe(ctx context.Context) error {
	return s.transport.Subscribe(ctx, func(ctx context.Context, p queue.Payload) {
		if err := s.HandleDelivery(ctx, p.ToMessage()); err != nil {
			slog.Error("delivery handling failed", "id", p.ID, "recipient", p.Recipient, "error", err)
		}
	})
}

// HandleDelivery runs one delivery attempt: provider call, status/retry
// mutation, then the unconditional write-back. Provider failures are folded
// into the retry counter; only unsupported channels and store failures
// surface as errors.
func (s *Service) HandleDelivery(ctx context.Context, m model.Message) error {
	if m.Status == model.Sent {
		slog.Warn("skipping redelivery of sent message", "id", m.ID, "recipient", m.Recipient)
		return nil
	}

	p, ok := s.providers[m.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedChannel, m.Type)
	}

	recipients := []string{normalizeRecipient(m.Recipient)}

	outcomes, err := p.Send(ctx, m.Content, s.opts.DefaultSender, recipients, true)
	switch {
	case err != nil:
		m.RecordFailure(s.opts.MaxRetries)
		slog.Warn("delivery attempt failed", "id", m.ID, "recipient", m.Recipient, "retries", m.Retries, "status", m.Status, "error", err)
	case len(outcomes) == 0:
		m.RecordFailure(s.opts.MaxRetries)
		slog.Warn("provider accepted no recipients", "id", m.ID, "recipient", m.Recipient, "retries", m.Retries)
	default:
		m.MarkSent()
		slog.Info("message sent", "id", m.ID, "recipient", m.Recipient, "providerMessageId", outcomes[0].MessageID)
	}

	saved, err := s.store.Save(ctx, m)
	if err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	if saved.Status == model.Sent && s.receipts != nil && len(outcomes) > 0 {
		if err := s.receipts.StoreReceipt(ctx, saved.ID, outcomes[0].MessageID, time.Now()); err != nil {
			slog.Warn("failed to cache delivery receipt", "id", saved.ID, "error", err)
		}
	}

	return nil
}

// normalizeRecipient produces the provider's expected +<digits> form; the
// submit surface accepts bare digit strings.
func normalizeRecipient(recipient string) string {
	return "+" + strings.TrimPrefix(recipient, "+")
}
