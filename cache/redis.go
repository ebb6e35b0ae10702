package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resilience-labs/climatechat/common/logger"
	"github.com/resilience-labs/climatechat/schema"
)

// RedisStore persists cache entries as JSON values in redis. Any redis
// error degrades to a miss so the pipeline keeps answering.
type RedisStore struct {
	rdb    *redis.Client
	backup *MemoryStore
}

// RedisOptions configures the redis connection.
type RedisOptions struct {
	Address  string
	Username string
	Password string
	DB       int
}

// NewRedisStore connects to redis and verifies the connection with a
// ping. A small in-process LRU shadows writes so short redis outages
// still serve recent answers.
func NewRedisStore(ctx context.Context, opt RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opt.Address,
		Username:     opt.Username,
		Password:     opt.Password,
		DB:           opt.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisStore{
		rdb:    rdb,
		backup: NewMemoryStore(256, time.Hour),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*schema.CacheEntry, bool) {
	raw, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warnf("cache: redis get failed for %q: %v", key, err)
		return s.backup.Get(ctx, key)
	}
	var entry schema.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Warnf("cache: corrupt entry for %q: %v", key, err)
		return nil, false
	}
	return &entry, true
}

func (s *RedisStore) Set(ctx context.Context, key string, entry *schema.CacheEntry, ttl time.Duration) {
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Warnf("cache: marshal entry for %q: %v", key, err)
		return
	}
	s.backup.Set(ctx, key, entry, ttl)
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warnf("cache: redis set failed for %q: %v", key, err)
	}
}

func (s *RedisStore) Close() error {
	_ = s.backup.Close()
	return s.rdb.Close()
}
