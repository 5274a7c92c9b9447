package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"crypto-alert-bot/internal/exchange"
)

const snapshotKey = "alertbot:positions:open"

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// RedisSnapshot mirrors the set of open positions into a single Redis key
// so external dashboards can read live state without touching the bot.
type RedisSnapshot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshot connects to Redis and verifies the connection.
func NewRedisSnapshot(cfg RedisConfig) (*RedisSnapshot, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	return &RedisSnapshot{client: client, ttl: 24 * time.Hour}, nil
}

// WriteOpen replaces the snapshot key with the current open positions as a
// JSON array. The TTL keeps stale state from outliving a dead bot.
func (r *RedisSnapshot) WriteOpen(positions []*exchange.Position) error {
	data, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, snapshotKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot to redis: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (r *RedisSnapshot) Close() error {
	return r.client.Close()
}

var _ exchange.SnapshotSink = (*RedisSnapshot)(nil)
