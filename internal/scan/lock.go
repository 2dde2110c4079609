package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

// Locker grants exclusive, expiring run locks. Acquire returns domain.ErrLockHeld
// when another holder owns the lock.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), err error)
}

// releaseScript deletes the key only if it still carries our token
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX
type RedisLocker struct {
	client goredis.UniversalClient
	prefix string
	logger *slog.Logger
}

func NewRedisLocker(client goredis.UniversalClient, prefix string, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, logger: logger}
}

func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := l.prefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to acquire lock %s", key)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	release := func() {
		// the caller's ctx may already be done when the scan finishes
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release scan lock",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}
	return release, nil
}
