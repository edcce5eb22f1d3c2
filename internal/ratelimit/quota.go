package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuotaResult is the outcome of a daily report quota check.
type QuotaResult struct {
	Allowed   bool
	Generated int64
	Limit     int64
}

// QuotaTracker tracks daily generated-report counts per user via Redis.
type QuotaTracker struct {
	rdb *redis.Client
}

// NewQuotaTracker creates a quota tracker. If rdb is nil, all checks pass.
func NewQuotaTracker(rdb *redis.Client) *QuotaTracker {
	return &QuotaTracker{rdb: rdb}
}

func dailyQuotaKey(userID string) string {
	day := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf("astro:quota:daily:%s:%s", userID, day)
}

// CheckDailyReports checks if the user is under their daily report limit.
func (q *QuotaTracker) CheckDailyReports(ctx context.Context, userID string, limit int64) (QuotaResult, error) {
	if q.rdb == nil {
		return QuotaResult{Allowed: true, Limit: limit}, nil
	}

	key := dailyQuotaKey(userID)
	generated, err := q.rdb.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		// Fail open on Redis errors
		return QuotaResult{Allowed: true, Limit: limit}, nil
	}

	return QuotaResult{
		Allowed:   generated < limit,
		Generated: generated,
		Limit:     limit,
	}, nil
}

// RecordReport increments the user's daily generated-report counter.
// Deduplicated requests are not recorded; only fresh generations count.
func (q *QuotaTracker) RecordReport(ctx context.Context, userID string) error {
	if q.rdb == nil {
		return nil
	}

	key := dailyQuotaKey(userID)
	pipe := q.rdb.Pipeline()
	pipe.Incr(ctx, key)
	// Expire at end of day UTC + 1 hour buffer
	now := time.Now().UTC()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	ttl := endOfDay.Sub(now) + time.Hour
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}
