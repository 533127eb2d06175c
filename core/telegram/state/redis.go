package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/m3rciful/catalogbot/core/logger"
)

const redisKeyPrefix = "dialog_session:"

// RedisClient is the subset of redis commands the store needs.
type RedisClient interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// RedisOptions holds connection settings for NewRedisClient.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

type redisClient struct {
	cli *redis.Client
}

var _ RedisClient = (*redisClient)(nil)

// NewRedisClient connects to redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, opts RedisOptions) (RedisClient, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &redisClient{cli: c}, nil
}

func (c *redisClient) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *redisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.cli.Set(ctx, key, value, expiration).Err()
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *redisClient) Del(ctx context.Context, keys ...string) error {
	return c.cli.Del(ctx, keys...).Err()
}

func (c *redisClient) Close() error { return c.cli.Close() }

// RedisStore keeps sessions as JSON values so they survive restarts and can be shared by replicas.
type RedisStore struct {
	client RedisClient
	ttl    time.Duration
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps client. ttl <= 0 stores sessions without expiry.
func NewRedisStore(client RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

// Get loads and decodes the user's session.
func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, bool, error) {
	raw, err := r.client.Get(ctx, redisKey(userID))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		// a corrupt value cannot be resumed; drop it so the user can start over
		logger.State.LogAttrs(ctx, slog.LevelWarn, "session.decode_failed",
			slog.String("backend", BackendRedis),
			slog.String("err", err.Error()),
		)
		_ = r.client.Del(ctx, redisKey(userID))
		return nil, false, nil
	}
	return &s, true, nil
}

// Save encodes s and writes it with the configured TTL.
func (r *RedisStore) Save(ctx context.Context, userID int64, s *Session) error {
	if s == nil {
		return ErrNoSession
	}
	cp := s.Clone()
	cp.UpdatedAt = r.now().UTC()
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(userID), payload, r.ttl); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Clear deletes the user's session key.
func (r *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, redisKey(userID)); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
