package ratelimit

import (
	"context"
	"testing"
)

func TestQuotaTracker_NilRedis_FailOpen(t *testing.T) {
	q := NewQuotaTracker(nil)
	result, err := q.CheckDailyReports(context.Background(), "user-1", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Allowed {
		t.Error("expected allowed when Redis is nil")
	}
	if result.Limit != 25 {
		t.Errorf("expected limit=25, got %d", result.Limit)
	}
}

func TestQuotaTracker_NilRedis_RecordReport(t *testing.T) {
	q := NewQuotaTracker(nil)
	// RecordReport should be a no-op with nil Redis
	err := q.RecordReport(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
