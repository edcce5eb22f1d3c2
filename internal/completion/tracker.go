package completion

import (
	"time"

	"github.com/celestia-labs/reportgen/internal/types"
)

// CallTracker observes every upstream completion call. A no-op
// implementation stands in when telemetry is unconfigured, so the
// client never branches on whether tracking exists.
type CallTracker interface {
	RecordCall(provider string, rt types.ReportType, tokens int, duration time.Duration, err error)
}

// NoopTracker discards all observations.
type NoopTracker struct{}

func (NoopTracker) RecordCall(string, types.ReportType, int, time.Duration, error) {}
