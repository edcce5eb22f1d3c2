package types

// ReportType identifies one of the closed set of report kinds. Prompts,
// token budgets, and validation rules are all keyed off this value.
type ReportType string

const (
	ReportLifeSummary     ReportType = "life-summary"
	ReportCareer          ReportType = "career"
	ReportMarriage        ReportType = "marriage"
	ReportHealth          ReportType = "health"
	ReportFullLife        ReportType = "full-life"
	ReportYearAnalysis    ReportType = "year-analysis"
	ReportSadeSati        ReportType = "sade-sati"
	ReportMajorDecision   ReportType = "major-decision"
	ReportMonthlyGuidance ReportType = "monthly-guidance"
)

// Tier groups report types by complexity, which drives token budgets
// and completion retry ceilings.
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierComplex  Tier = "complex"
)

func (rt ReportType) Tier() Tier {
	switch rt {
	case ReportLifeSummary:
		return TierFree
	case ReportFullLife, ReportYearAnalysis, ReportSadeSati:
		return TierComplex
	default:
		return TierStandard
	}
}

func (rt ReportType) Paid() bool {
	return rt.Tier() != TierFree
}

func (rt ReportType) DisplayName() string {
	switch rt {
	case ReportLifeSummary:
		return "Life Summary"
	case ReportCareer:
		return "Career Report"
	case ReportMarriage:
		return "Marriage Report"
	case ReportHealth:
		return "Health Report"
	case ReportFullLife:
		return "Full Life Report"
	case ReportYearAnalysis:
		return "12-Month Analysis"
	case ReportSadeSati:
		return "Sade Sati Phase Report"
	case ReportMajorDecision:
		return "Decision Support Report"
	case ReportMonthlyGuidance:
		return "Monthly Guidance"
	default:
		return string(rt)
	}
}

func ParseReportType(s string) (ReportType, bool) {
	switch ReportType(s) {
	case ReportLifeSummary, ReportCareer, ReportMarriage, ReportHealth,
		ReportFullLife, ReportYearAnalysis, ReportSadeSati,
		ReportMajorDecision, ReportMonthlyGuidance:
		return ReportType(s), true
	default:
		return "", false
	}
}

// AllReportTypes returns the closed set in a stable order.
func AllReportTypes() []ReportType {
	return []ReportType{
		ReportLifeSummary,
		ReportCareer,
		ReportMarriage,
		ReportHealth,
		ReportFullLife,
		ReportYearAnalysis,
		ReportSadeSati,
		ReportMajorDecision,
		ReportMonthlyGuidance,
	}
}
