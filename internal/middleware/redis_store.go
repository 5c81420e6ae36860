package middleware

import (
	"context"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// redisCounter is the subset of the redis client the store needs.
type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisStore is a fixed-window rate limiter store shared by every instance
// that talks to the same Redis. It fails open when Redis is unavailable.
type RedisStore struct {
	client  redisCounter
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedisStore constructs a Redis backed store that allows limit requests
// per window for each identifier.
func NewRedisStore(client redisCounter, limit int, window time.Duration, logger *slog.Logger) *RedisStore {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client:  client,
		limit:   limit,
		window:  window,
		prefix:  "sparx:ratelimit:",
		timeout: 250 * time.Millisecond,
		logger:  logger,
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Allow implements middleware.RateLimiterStore.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.prefix + identifier
	counter, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Error("Redis rate limiter error", "op", "incr", "error", err)
		return true, nil
	}
	if counter == 1 {
		s.expire(ctx, key)
		return true, nil
	}
	allowed := counter <= int64(s.limit)
	if !allowed {
		// A failed EXPIRE on the first hit leaves a key without a TTL that
		// would block the client forever.
		ttl, err := s.client.TTL(ctx, key).Result()
		if err != nil {
			s.logger.Error("Redis rate limiter error", "op", "ttl", "error", err)
		} else if ttl == -1 {
			s.expire(ctx, key)
		}
	}
	return allowed, nil
}

func (s *RedisStore) expire(ctx context.Context, key string) {
	if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
		s.logger.Error("Redis rate limiter error", "op", "expire", "error", err)
	}
}
