package faq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/urbantrend/cart-recall/internal/model"
)

const entriesKey = "faq:entries"

// CachedSource serves FAQ entries from redis, falling back to the
// underlying source on miss or redis failure. The TTL bounds how stale
// answers can get after an editor changes the table.
type CachedSource struct {
	src Source
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedSource(src Source, rdb *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, rdb: rdb, ttl: ttl}
}

var _ Source = (*CachedSource)(nil)

func (c *CachedSource) FindFAQEntries(ctx context.Context) ([]model.FAQEntry, error) {
	raw, err := c.rdb.Get(ctx, entriesKey).Bytes()
	if err == nil {
		var entries []model.FAQEntry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		// Corrupt cache value: fall through to the store and rewrite it.
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("faq cache read failed", "err", err)
	}

	entries, err := c.src.FindFAQEntries(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(entries); err == nil {
		if err := c.rdb.Set(ctx, entriesKey, b, c.ttl).Err(); err != nil {
			slog.Warn("faq cache write failed", "err", err)
		}
	}

	return entries, nil
}
