package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/celestia-labs/reportgen/internal/types"
)

// MemoryStore is the in-process Store used for tests and single-node
// deployment. All methods are safe for concurrent use; TryClaim holds
// the lock across the presence check and insert, which is what makes
// it atomic.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	byReport map[string]string // reportID -> key
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &MemoryStore{
		entries:  make(map[string]*Entry),
		byReport: make(map[string]string),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) expired(e *Entry) bool {
	return s.now().Sub(e.CreatedAt) > s.ttl
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if s.expired(e) {
		delete(s.entries, key)
		delete(s.byReport, e.ReportID)
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) TryClaim(ctx context.Context, key, reportID string, rt types.ReportType, input types.BirthInput) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Raw presence check: no TTL here, so a racing claim on an
	// about-to-expire entry still loses.
	if _, ok := s.entries[key]; ok {
		return false, nil
	}

	s.entries[key] = &Entry{
		Key:        key,
		ReportID:   reportID,
		ReportType: rt,
		Input:      input,
		Status:     StatusProcessing,
		CreatedAt:  s.now(),
	}
	s.byReport[reportID] = key
	return true, nil
}

func (s *MemoryStore) Finalize(ctx context.Context, key, reportID string, content *types.ReportContent, rt types.ReportType, input types.BirthInput, qualityWarning string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now()
	if prev, ok := s.entries[key]; ok {
		// TTL runs from the original claim, not from delivery.
		createdAt = prev.CreatedAt
		if prev.ReportID != reportID {
			delete(s.byReport, prev.ReportID)
		}
	}

	s.entries[key] = &Entry{
		Key:            key,
		ReportID:       reportID,
		Content:        content,
		ReportType:     rt,
		Input:          input,
		Status:         StatusDelivered,
		CreatedAt:      createdAt,
		QualityWarning: qualityWarning,
	}
	s.byReport[reportID] = key
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key, reportID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.ReportID != reportID || e.Status != StatusProcessing {
		return nil
	}
	delete(s.entries, key)
	delete(s.byReport, reportID)
	return nil
}

func (s *MemoryStore) GetByReportID(ctx context.Context, reportID string) (*Entry, error) {
	s.mu.Lock()
	key, ok := s.byReport[reportID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return s.Get(ctx, key)
}

func (s *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, key)
			delete(s.byReport, e.ReportID)
			removed++
		}
	}
	return removed, nil
}

// Len reports the current entry count (expired entries included until
// swept).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunSweeper prunes expired entries on a fixed interval until ctx is
// cancelled. Reads self-check TTL, so the interval only bounds how long
// dead entries occupy memory. onRemoved, when non-nil, observes the
// removal count of each sweep.
func RunSweeper(ctx context.Context, store Store, interval time.Duration, logger *slog.Logger, onRemoved func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.SweepExpired(ctx)
			if err != nil {
				logger.Error("cache sweep failed", "error", err)
				continue
			}
			if onRemoved != nil {
				onRemoved(n)
			}
			if n > 0 {
				logger.Info("cache sweep complete", "removed", n)
			}
		}
	}
}
