package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisLog struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLog(rdb *redis.Client, ttl time.Duration) *RedisLog {
	return &RedisLog{rdb: rdb, ttl: ttl}
}

var _ ReminderLog = (*RedisLog)(nil)

type reminderValue struct {
	RemoteMessageID string    `json:"remoteMessageId"`
	SentAt          time.Time `json:"sentAt"`
}

func (l *RedisLog) StoreReminder(ctx context.Context, userID int64, remoteMessageID string, sentAt time.Time) error {
	key := fmt.Sprintf("reminder:%d", userID)
	val := reminderValue{
		RemoteMessageID: remoteMessageID,
		SentAt:          sentAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return l.rdb.Set(ctx, key, b, l.ttl).Err()
}
