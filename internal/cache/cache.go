// Package cache holds the idempotency store for generated reports and
// the TTL cache for expensive upstream lookups.
package cache

import (
	"context"
	"time"

	"github.com/celestia-labs/reportgen/internal/types"
)

// Status is the lifecycle state of a report cache entry.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusDelivered  Status = "DELIVERED"
)

// DefaultReportTTL is how long a cache entry lives, measured from
// creation (the claim), not from delivery.
const DefaultReportTTL = 24 * time.Hour

// Entry is a report cache record. Created in PROCESSING by the caller
// that wins the claim; transitions to DELIVERED exactly once.
type Entry struct {
	Key            string               `json:"key"`
	ReportID       string               `json:"report_id"`
	Content        *types.ReportContent `json:"content,omitempty"`
	ReportType     types.ReportType     `json:"report_type"`
	Input          types.BirthInput     `json:"input"`
	Status         Status               `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	QualityWarning string               `json:"quality_warning,omitempty"`
}

// Store is the idempotency store contract. Implementations must make
// TryClaim atomic with respect to concurrent callers presenting the
// same key; it is the sole serialization point in the pipeline.
//
// A nil entry with a nil error means "absent".
type Store interface {
	// Get returns the entry for key, dropping and reporting absent if
	// it has outlived the TTL.
	Get(ctx context.Context, key string) (*Entry, error)

	// TryClaim inserts a PROCESSING placeholder and returns true, or
	// returns false if any entry already exists for key. Presence is
	// checked raw, without the TTL self-check, so an about-to-expire
	// entry cannot be claimed twice.
	TryClaim(ctx context.Context, key, reportID string, rt types.ReportType, input types.BirthInput) (bool, error)

	// Finalize overwrites the claimed entry to DELIVERED with the
	// final content. The caller is assumed to hold the claim.
	Finalize(ctx context.Context, key, reportID string, content *types.ReportContent, rt types.ReportType, input types.BirthInput, qualityWarning string) error

	// Release drops a PROCESSING placeholder after a fatal outcome so
	// the user can correct input and retry without waiting out the TTL.
	Release(ctx context.Context, key, reportID string) error

	// GetByReportID supports status polling via the reportID index.
	GetByReportID(ctx context.Context, reportID string) (*Entry, error)

	// SweepExpired prunes entries past TTL and their index records,
	// returning how many were removed.
	SweepExpired(ctx context.Context) (int, error)
}
