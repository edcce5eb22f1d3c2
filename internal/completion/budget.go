package completion

import "github.com/celestia-labs/reportgen/internal/types"

// Token budgets scale with report complexity tier.
const (
	tokensFree     = 1024
	tokensStandard = 2048
	tokensComplex  = 4096
)

// TokenBudget returns the max-output-tokens budget for a report type.
func TokenBudget(rt types.ReportType) int {
	switch rt.Tier() {
	case types.TierFree:
		return tokensFree
	case types.TierComplex:
		return tokensComplex
	default:
		return tokensStandard
	}
}

// MaxAttempts returns the completion attempt ceiling for a report
// type. The free type gets fewer attempts: it is the highest-volume,
// lowest-margin path and latency there matters more than persistence.
func MaxAttempts(rt types.ReportType) int {
	if rt.Tier() == types.TierFree {
		return 2
	}
	return 3
}

// DefaultTemperature is used on every completion call.
const DefaultTemperature = 0.7
