package cache

import (
	"context"
	"errors"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockHeld = errors.New("lock is held by another worker")
	ErrLockLost = errors.New("lock expired or taken over")
)

// Lock is owned until Release is called or its TTL lapses.
type Lock interface {
	// Extend resets the TTL of a lock that is still owned.
	Extend(ctx context.Context, ttl time.Duration) error
	Release()
}

// Locker hands out short-lived exclusive locks keyed by name.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Only the owner of the token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	token, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &redisLock{rdb: l.rdb, key: key, token: token}, nil
}

type redisLock struct {
	rdb   *redis.Client
	key   string
	token string
}

func (l *redisLock) Extend(ctx context.Context, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, l.rdb, []string{l.key}, l.token, ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}

func (l *redisLock) Release() {
	// The caller's context may already be done.
	_ = releaseScript.Run(context.Background(), l.rdb, []string{l.key}, l.token).Err()
}

// NopLocker grants every lock. Used when Redis is not configured.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string, time.Duration) (Lock, error) {
	return nopLock{}, nil
}

type nopLock struct{}

func (nopLock) Extend(context.Context, time.Duration) error { return nil }

func (nopLock) Release() {}
