package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/config"
)

// ErrRedisNotConfigured is returned by a Redis handle without a client.
var ErrRedisNotConfigured = errors.New("redis not configured")

const redisDialCheck = 2 * time.Second

// Redis holds the session store client.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and checks reachability once. An unreachable
// server is only logged: sessions fail per request until it comes back.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialCheck)
	defer cancel()
	fields := []zap.Field{zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB)}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable; sign-in will fail until it recovers", append(fields, zap.Error(err))...)
	} else {
		logger.Info("connected to redis", fields...)
	}
	return &Redis{Client: client}
}

func (r *Redis) enabled() bool {
	return r != nil && r.Client != nil
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.enabled() {
		return ErrRedisNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r.enabled() {
		_ = r.Client.Close()
	}
}
