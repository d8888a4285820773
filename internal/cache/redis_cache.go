package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisReceiptCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisReceiptCache(rdb *redis.Client, ttl time.Duration) *RedisReceiptCache {
	return &RedisReceiptCache{rdb: rdb, ttl: ttl}
}

type receiptValue struct {
	ProviderMessageID string    `json:"providerMessageId"`
	SentAt            time.Time `json:"sentAt"`
}

func (c *RedisReceiptCache) StoreReceipt(ctx context.Context, messageID int64, providerMessageID string, sentAt time.Time) error {
	key := fmt.Sprintf("receipt:%d", messageID)
	val := receiptValue{
		ProviderMessageID: providerMessageID,
		SentAt:            sentAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
