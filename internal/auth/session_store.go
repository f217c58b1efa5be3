package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/pao-metrics/internal/domain"
)

// SessionStore persists the current session of each browser client.
type SessionStore interface {
	Load(ctx context.Context, clientID string) (*domain.Session, error)
	Save(ctx context.Context, clientID string, session *domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, clientID string) error
}

// RedisSessionStore keeps sessions as JSON values under a per-client key.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore wraps a go-redis client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "pao:session"}
}

func (s *RedisSessionStore) key(clientID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, clientID)
}

// Load returns nil without error when the client has no session.
func (s *RedisSessionStore) Load(ctx context.Context, clientID string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, clientID string, session *domain.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, s.key(clientID), raw, ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, clientID string) error {
	return s.client.Del(ctx, s.key(clientID)).Err()
}
