package locks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lease lock shared by every replica talking to one Redis.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	// Retry is the poll interval while another replica holds the key.
	Retry time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{Client: client, TTL: ttl, Retry: 50 * time.Millisecond}
}

func (l *Redis) lockKey(key string) string {
	return "lock:" + key
}

// TryAcquire takes the lock without waiting.
func (l *Redis) TryAcquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	k := l.lockKey(key)

	ok, err := l.Client.SetNX(ctx, k, token, l.TTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", k, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.Client, []string{k}, token).Err(); err != nil {
			log.Printf("Error releasing %s: %v", k, err)
		}
	}, true, nil
}

// Lock waits for the key. When Redis itself is unreachable the error is
// logged and a no-op unlock returned: the in-process lock in front of this
// one still serializes the local replica.
func (l *Redis) Lock(ctx context.Context, key string) (func(), error) {
	for {
		release, acquired, err := l.TryAcquire(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Redis lock unavailable, continuing with local lock: %v", err)
			return func() {}, nil
		}
		if acquired {
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Retry):
		}
	}
}

var _ Locker = (*Redis)(nil)
