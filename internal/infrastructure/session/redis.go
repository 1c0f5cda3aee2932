package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

const connectTimeout = 5 * time.Second

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr string
	DB   int
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisStore keeps the session pair in Redis. Used when the client runs in
// shared or headless environments (CI jobs, automation hosts) where a home
// directory is not the right place for a live credential.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "projecthub"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) tokenKey() string { return s.prefix + ":session:token" }
func (s *RedisStore) userKey() string  { return s.prefix + ":session:user" }

func (s *RedisStore) Save(ctx context.Context, token string, identityJSON []byte) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.tokenKey(), token, 0)
	pipe.Set(ctx, s.userKey(), identityJSON, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (string, []byte, error) {
	token, err := s.client.Get(ctx, s.tokenKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil, domain.ErrSessionNotFound
		}
		return "", nil, fmt.Errorf("load token: %w", err)
	}

	identityJSON, err := s.client.Get(ctx, s.userKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil, domain.ErrSessionNotFound
		}
		return "", nil, fmt.Errorf("load identity: %w", err)
	}

	return token, identityJSON, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userKey()).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
