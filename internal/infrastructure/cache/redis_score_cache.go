package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apptrace "github.com/supplytrace/backend/internal/application/trace"
	"github.com/supplytrace/backend/internal/domain/trace"
)

const defaultScoreKeyPrefix = "transparency:score:"

// RedisScoreCache implements the transparency score cache on Redis.
// This is suitable for distributed deployments where multiple instances
// share computed scores.
type RedisScoreCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisScoreCache creates a Redis-backed score cache
func NewRedisScoreCache(cfg RedisConfig) (*RedisScoreCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisScoreCache{
		client:    client,
		keyPrefix: defaultScoreKeyPrefix,
	}, nil
}

// NewRedisScoreCacheWithClient creates a cache with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisScoreCacheWithClient(client *redis.Client, keyPrefix string) *RedisScoreCache {
	if keyPrefix == "" {
		keyPrefix = defaultScoreKeyPrefix
	}
	return &RedisScoreCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached scores for a PO, or (nil, nil) on a miss
func (c *RedisScoreCache) Get(ctx context.Context, poID uuid.UUID) (*trace.Scores, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+poID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached scores: %w", err)
	}

	var scores trace.Scores
	if err := json.Unmarshal(payload, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode cached scores: %w", err)
	}
	return &scores, nil
}

// Set stores the scores for a PO with the given TTL
func (c *RedisScoreCache) Set(ctx context.Context, poID uuid.UUID, scores trace.Scores, ttl time.Duration) error {
	payload, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+poID.String(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache scores: %w", err)
	}
	return nil
}

// Invalidate drops the cached scores for a PO
func (c *RedisScoreCache) Invalidate(ctx context.Context, poID uuid.UUID) error {
	if err := c.client.Del(ctx, c.keyPrefix+poID.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached scores: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisScoreCache) Close() error {
	return c.client.Close()
}

var _ apptrace.ScoreCache = (*RedisScoreCache)(nil)
