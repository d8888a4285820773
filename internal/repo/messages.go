package repo

import (
	"context"

	"github.com/adams-okode/messaging-gateway-service/internal/model"
)

// MessageRepository is the durable store for message records. Save is the
// single write-back point of a dispatch cycle; the find queries exist for
// the HTTP surface and the retry sweeper. Records are never deleted.
type MessageRepository interface {
	Save(ctx context.Context, m model.Message) (model.Message, error)
	FindByStatus(ctx context.Context, status model.Status, limit, offset int) ([]model.Message, error)
	FindByTypeAndStatus(ctx context.Context, t model.MessageType, status model.Status, limit, offset int) ([]model.Message, error)
	FindEligibleToRetry(ctx context.Context, status model.Status, maxRetries, limit, offset int) ([]model.Message, error)
}
