package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("lock: could not acquire lock")

// ロックの有効期限。ロック中の処理はこれより短く終わらせる。
const DefaultTTL = 10 * time.Second

// 自分が取ったロックだけ消す
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockerは複数プロセスで共有するロック（SET NX PX）。
type RedisLocker struct {
	client   redis.UniversalClient
	ttl      time.Duration
	retry    time.Duration
	attempts int
}

type RedisOption func(*RedisLocker)

func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) { l.ttl = ttl }
}

// retry間隔でattempts回まで取りにいく
func WithRetry(retry time.Duration, attempts int) RedisOption {
	return func(l *RedisLocker) {
		l.retry = retry
		l.attempts = attempts
	}
}

func NewRedisLocker(client redis.UniversalClient, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		client:   client,
		ttl:      DefaultTTL,
		retry:    50 * time.Millisecond,
		attempts: 100,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) TTL() time.Duration {
	return l.ttl
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	token := uuid.NewString()

	for i := 0; i < l.attempts; i++ {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return func() {
				//リクエストのctxが切れていても解放する
				rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(rctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
}
