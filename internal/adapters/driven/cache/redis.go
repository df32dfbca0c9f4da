package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/siemdocs/docqa/internal/core/ports/driven"
	"github.com/siemdocs/docqa/internal/logger"
)

var _ driven.ScoreCache = (*RedisScores)(nil)

// redisKeyPrefix namespaces rerank-score keys in a shared instance.
const redisKeyPrefix = "docqa:rerank:"

// defaultRedisTTL bounds how long scores live in a shared cache. Scores are
// write-once so the TTL exists only to reclaim space.
const defaultRedisTTL = 7 * 24 * time.Hour

// RedisScores is a rerank-score cache shared across processes through
// Redis. Backend failures degrade to cache misses.
type RedisScores struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds connection settings for the shared cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisScores connects to Redis and verifies the connection.
func NewRedisScores(ctx context.Context, config RedisConfig) (*RedisScores, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisScores{client: client, ttl: ttl}, nil
}

// Get returns the cached score for key, if present. Errors are absorbed
// and reported as a miss.
func (c *RedisScores) Get(ctx context.Context, key string) (float64, bool) {
	value, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("redis cache get failed: %v", err)
		}
		return 0, false
	}
	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Debug("redis cache holds malformed score for %s: %v", key, err)
		return 0, false
	}
	return score, true
}

// Put stores the score for key. Errors are absorbed.
func (c *RedisScores) Put(ctx context.Context, key string, score float64) {
	value := strconv.FormatFloat(score, 'g', -1, 64)
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err(); err != nil {
		logger.Debug("redis cache put failed: %v", err)
	}
}

// Close releases the connection pool.
func (c *RedisScores) Close() error {
	return c.client.Close()
}
