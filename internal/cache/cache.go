package cache

import (
	"context"
	"time"
)

// ReceiptCache keeps a short-lived record of provider acknowledgments so
// operators can correlate a sent message with the gateway's id without
// hitting the store. Writes are best-effort for the dispatch cycle.
type ReceiptCache interface {
	StoreReceipt(ctx context.Context, messageID int64, providerMessageID string, sentAt time.Time) error
}
