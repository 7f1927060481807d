package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SentLog records mailed event ids in Redis for TTL. Without a client every
// event counts as new.
type SentLog struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSentLog(rdb *redis.Client, ttl time.Duration) *SentLog {
	return &SentLog{rdb: rdb, ttl: ttl}
}

func (s *SentLog) MarkSent(ctx context.Context, eventID string) (bool, error) {
	if s.rdb == nil || eventID == "" {
		return true, nil
	}
	return s.rdb.SetNX(ctx, "notify:sent:"+eventID, time.Now().Unix(), s.ttl).Result()
}
