package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/celestia-labs/reportgen/internal/types"
)

const (
	redisEntryPrefix = "astro:report:"
	redisIndexPrefix = "astro:reportid:"
)

// RedisStore implements Store on Redis for multi-process deployments.
// SET NX carries the claim atomicity and Redis TTLs replace the sweep.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := s.rdb.Get(ctx, redisEntryPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal cache entry %s: %w", key, err)
	}
	return &e, nil
}

func (s *RedisStore) TryClaim(ctx context.Context, key, reportID string, rt types.ReportType, input types.BirthInput) (bool, error) {
	e := Entry{
		Key:        key,
		ReportID:   reportID,
		ReportType: rt,
		Input:      input,
		Status:     StatusProcessing,
		CreatedAt:  time.Now(),
	}
	data, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("marshal claim entry: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, redisEntryPrefix+key, data, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	if err := s.rdb.Set(ctx, redisIndexPrefix+reportID, key, s.ttl).Err(); err != nil {
		return true, fmt.Errorf("redis index %s: %w", reportID, err)
	}
	return true, nil
}

func (s *RedisStore) Finalize(ctx context.Context, key, reportID string, content *types.ReportContent, rt types.ReportType, input types.BirthInput, qualityWarning string) error {
	e := Entry{
		Key:            key,
		ReportID:       reportID,
		Content:        content,
		ReportType:     rt,
		Input:          input,
		Status:         StatusDelivered,
		CreatedAt:      time.Now(),
		QualityWarning: qualityWarning,
	}
	if prev, err := s.Get(ctx, key); err == nil && prev != nil {
		e.CreatedAt = prev.CreatedAt
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal delivered entry: %w", err)
	}

	// KeepTTL preserves the expiry set at claim time.
	if err := s.rdb.Set(ctx, redisEntryPrefix+key, data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("redis finalize %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key, reportID string) error {
	e, err := s.Get(ctx, key)
	if err != nil || e == nil {
		return err
	}
	if e.ReportID != reportID || e.Status != StatusProcessing {
		return nil
	}
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, redisEntryPrefix+key)
	pipe.Del(ctx, redisIndexPrefix+reportID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetByReportID(ctx context.Context, reportID string) (*Entry, error) {
	key, err := s.rdb.Get(ctx, redisIndexPrefix+reportID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis index lookup %s: %w", reportID, err)
	}
	return s.Get(ctx, key)
}

// SweepExpired is a no-op: Redis evicts on its own TTLs.
func (s *RedisStore) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}
