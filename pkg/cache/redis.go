package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockNotAcquired is returned when a lock stays held by someone else for
// every acquisition attempt.
const ErrLockNotAcquired = errors.ConstError("lock not acquired")

type Config struct {
	Addr     string
	Password string
	DB       int
}

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *Config) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Annotatef(err, "ping redis at %s", cfg.Addr)
	}
	return &RedisClient{Client: client}, nil
}

// NewFromClient wraps an already configured client.
func NewFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{Client: client}
}

func (c *RedisClient) Close() error {
	return c.Client.Close()
}

// AcquireLock sets key to value only if it is absent. The lock expires after ttl
// so a crashed holder cannot block the key forever.
func (c *RedisClient) AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.Client.SetNX(ctx, key, value, ttl).Result()
}

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (c *RedisClient) ReleaseLock(ctx context.Context, key, value string) error {
	return releaseScript.Run(ctx, c.Client, []string{key}, value).Err()
}

// GetJSON loads key into dest. A missing key reports found=false with no error.
func (c *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, data, ttl).Err()
}

// DeletePattern removes every key matching pattern. Uses SCAN so it does not
// block the server on large keyspaces.
func (c *RedisClient) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.Client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

// Locker serializes work on a single key across processes.
type Locker struct {
	cache    *RedisClient
	clock    clock.Clock
	ttl      time.Duration
	attempts int
	delay    time.Duration
	newToken func() string
	logger   logger.ZapLogger
}

type LockerConfig struct {
	TTL      time.Duration
	Attempts int
	Delay    time.Duration
	Clock    clock.Clock
	NewToken func() string
	Logger   logger.ZapLogger
}

func NewLocker(cache *RedisClient, cfg LockerConfig) *Locker {
	l := &Locker{
		cache:    cache,
		clock:    cfg.Clock,
		ttl:      cfg.TTL,
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
		newToken: cfg.NewToken,
		logger:   cfg.Logger,
	}
	if l.logger == nil {
		l.logger = logger.NewNop()
	}
	if l.clock == nil {
		l.clock = clock.WallClock
	}
	if l.newToken == nil {
		l.newToken = uuid.NewString
	}
	if l.ttl == 0 {
		l.ttl = 5 * time.Second
	}
	if l.attempts == 0 {
		l.attempts = 3
	}
	if l.delay == 0 {
		l.delay = 100 * time.Millisecond
	}
	return l
}

// Lock blocks until key is held or the attempts run out. The returned func
// releases the lock.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := l.newToken()

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			ok, err := l.cache.AcquireLock(ctx, key, token, l.ttl)
			if err != nil {
				return err
			}
			if !ok {
				return ErrLockNotAcquired
			}
			return nil
		},
		IsFatalError: func(err error) bool {
			return ctx.Err() != nil
		},
		Attempts: l.attempts,
		Delay:    l.delay,
		Clock:    l.clock,
		Stop:     ctx.Done(),
	})
	if err != nil {
		if retry.IsAttemptsExceeded(err) {
			return nil, errors.Annotatef(ErrLockNotAcquired, "key %s", key)
		}
		return nil, errors.Annotatef(err, "acquire lock %s", key)
	}

	return func() {
		// Release with a fresh context so a cancelled request still frees the key.
		// On failure the key lingers until its TTL runs out.
		if err := l.cache.ReleaseLock(context.Background(), key, token); err != nil {
			l.logger.Warn("failed to release lock",
				zap.String("key", key),
				zap.Duration("ttl", l.ttl),
				zap.Error(err),
			)
		}
	}, nil
}
