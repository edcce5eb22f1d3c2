package config

// ReportsConfig carries per-report-type overrides of the built-in
// token budgets and attempt ceilings. Entries are keyed by the report
// type string; absent entries fall back to tier defaults.
type ReportsConfig struct {
	Reports map[string]ReportTuning `yaml:"reports"`
}

type ReportTuning struct {
	MaxTokens   int `yaml:"max_tokens"`
	MaxAttempts int `yaml:"max_attempts"`
}
