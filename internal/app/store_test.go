package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/catalogbot/core/telegram/state"
)

type stubRedis struct {
	values map[string]string
	pings  int
	closed bool
}

func (s *stubRedis) Ping(context.Context) error { s.pings++; return nil }
func (s *stubRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case string:
		s.values[key] = v
	case []byte:
		s.values[key] = string(v)
	}
	return nil
}
func (s *stubRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}
func (s *stubRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
func (s *stubRedis) Close() error { s.closed = true; return nil }

func TestOpenStoreMemory(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	b, err := openStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &state.MemoryStore{}, b.store)
	assert.Nil(t, b.check)
	assert.Nil(t, b.close)
}

func TestOpenStoreRedis(t *testing.T) {
	stub := &stubRedis{values: map[string]string{}}
	var got state.RedisOptions
	prev := dialRedis
	dialRedis = func(_ context.Context, opts state.RedisOptions) (state.RedisClient, error) {
		got = opts
		return stub, nil
	}
	t.Cleanup(func() { dialRedis = prev })

	cfg := validConfig()
	cfg.State.Backend = "redis"
	cfg.Redis = RedisConfig{Addr: "cache:6379", Password: "secret", DB: 2}
	require.NoError(t, Normalize(cfg))

	b, err := openStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, state.RedisOptions{Addr: "cache:6379", Password: "secret", DB: 2}, got)
	assert.IsType(t, &state.RedisStore{}, b.store)

	require.NoError(t, b.check(context.Background()))
	assert.Equal(t, 1, stub.pings)
	require.NoError(t, b.close())
	assert.True(t, stub.closed)
}

func TestOpenStoreRedisDialFailure(t *testing.T) {
	prev := dialRedis
	dialRedis = func(context.Context, state.RedisOptions) (state.RedisClient, error) {
		return nil, errors.New("connection refused")
	}
	t.Cleanup(func() { dialRedis = prev })

	cfg := validConfig()
	cfg.State.Backend = "redis"
	cfg.Redis.Addr = "cache:6379"
	require.NoError(t, Normalize(cfg))

	_, err := openStore(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOpenStorePostgresNeedsDB(t *testing.T) {
	cfg := validConfig()
	cfg.State.Backend = "postgres"
	cfg.Database.Name = "catalogbot"
	require.NoError(t, Normalize(cfg))

	_, err := openStore(context.Background(), cfg, nil)
	require.Error(t, err)
}
