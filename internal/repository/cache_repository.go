package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

const scanBatch = 200

// redisStore is the subset of redis commands the report cache issues.
type redisStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Unlink(ctx context.Context, keys ...string) *redis.IntCmd
}

// CacheRepository stores JSON encoded report summaries in Redis. Without a
// client every read is a miss and every write is dropped.
type CacheRepository struct {
	store  redisStore
	logger *zap.Logger
}

// NewCacheRepository wraps client, which may be nil when Redis is disabled.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if client == nil {
		return newCacheRepository(nil, logger)
	}
	return newCacheRepository(client, logger)
}

func newCacheRepository(store redisStore, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{store: store, logger: logger}
}

// Get decodes the entry at key into dest. A missing key yields ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.store == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.store.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("read cached report %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode cached report %s: %w", key, err)
	}
	return nil
}

// Set encodes value and stores it under key for ttl.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.store == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store cached report %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern unlinks every key matching pattern, one scan page at a time.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.store == nil {
		return nil
	}
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := r.store.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan cached reports %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := r.store.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("unlink cached reports %s: %w", pattern, err)
			}
			removed += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	r.logger.Debug("cached reports invalidated", zap.String("pattern", pattern), zap.Int("count", removed))
	return nil
}
