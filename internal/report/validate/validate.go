// Package validate gates report delivery on content quality. A report
// must never reach DELIVERED state for a paying user in a state that
// looks broken, so every parsed report passes through here before it
// is finalized.
package validate

import (
	"regexp"
	"strings"

	"github.com/celestia-labs/reportgen/internal/types"
)

// QualityWarning values set on soft passes and close-but-short fails.
const (
	WarnBelowOptimalLength = "below_optimal_length"
	WarnMissingSections    = "missing_expected_sections"
)

// mockMarkers are literal phrases that can only come from a template
// or prompt defect. Finding one is always a hard failure: retrying
// the same prompt cannot fix it.
var mockMarkers = []string{
	"lorem ipsum",
	"coming soon",
	"[insert",
	"sample report content",
	"this is a test report",
	"xxx-placeholder",
}

// placeholderPhrases mark a section as stand-in rather than generated
// content. Unlike mockMarkers this is retryable: a re-prompt usually
// produces real text.
var placeholderPhrases = []string{
	"unable to generate",
	"content will appear here",
	"will be available shortly",
	"is being prepared",
	"no specific insights",
}

// validGenericText exempts phrasing that reads as intentional even
// when it co-occurs with a placeholder phrase.
var validGenericText = []string{
	"general guidance applies",
	"broadly favorable period",
}

// thematicGeneric exempts phase-report phrasing. Long-horizon reports
// legitimately describe whole periods in generic terms.
var thematicGeneric = []string{
	"this phase",
	"throughout this period",
}

var thematicTypes = map[types.ReportType]bool{
	types.ReportSadeSati: true,
}

var preparedForPattern = regexp.MustCompile(`(?i)prepared for[:\s]+([A-Za-z][A-Za-z' -]*)`)

// yearKeywords is the canonical section-title keyword set for the
// 12-month report. Fewer than two matches means the completion likely
// ignored the requested structure.
var yearKeywords = []string{
	"quarter", "career", "relationship", "health", "finance",
	"overview", "remedies",
}

// Nominal word targets per tier; the hard minimum is 60% of nominal.
const (
	nominalStandard = 1000
	nominalComplex  = 1250
)

func minWords(rt types.ReportType) int {
	switch rt.Tier() {
	case types.TierStandard:
		return nominalStandard * 60 / 100
	case types.TierComplex:
		return nominalComplex * 60 / 100
	default:
		return 0
	}
}

// Validate runs the ordered check chain. The first failing check wins,
// except for the 12-month report's length gate, which soft-passes.
func Validate(content *types.ReportContent, input types.BirthInput, rt types.ReportType) types.ValidationResult {
	if !hasBody(content) {
		return fail(types.CodeMissingSections, false)
	}
	if containsAny(content, mockMarkers) {
		return fail(types.CodeMockContentDetected, false)
	}
	if strings.TrimSpace(content.Title) == "" {
		return fail(types.CodeValidationFailed, false)
	}
	if !input.Complete() {
		return fail(types.CodeValidationFailed, false)
	}
	if nameMismatch(content, input) {
		return fail(types.CodeUserDataMismatch, false)
	}
	if HasPlaceholder(content, rt) {
		return fail(types.CodeValidationFailed, true)
	}
	return lengthCheck(content, rt)
}

func fail(code string, autoExpand bool) types.ValidationResult {
	return types.ValidationResult{ErrorCode: code, CanAutoExpand: autoExpand}
}

func hasBody(content *types.ReportContent) bool {
	for _, s := range content.Sections {
		if strings.TrimSpace(s.Body) != "" {
			return true
		}
	}
	return false
}

func containsAny(content *types.ReportContent, phrases []string) bool {
	for _, s := range content.Sections {
		text := strings.ToLower(s.Body + " " + strings.Join(s.Bullets, " "))
		for _, p := range phrases {
			if strings.Contains(text, p) {
				return true
			}
		}
	}
	return false
}

// nameMismatch catches reports addressed to someone other than the
// requesting user, which indicates a cross-request prompt mixup.
func nameMismatch(content *types.ReportContent, input types.BirthInput) bool {
	name := strings.ToLower(strings.TrimSpace(input.Name))
	if name == "" {
		return false
	}
	for _, s := range content.Sections {
		m := preparedForPattern.FindStringSubmatch(s.Body)
		if m == nil {
			continue
		}
		addressed := strings.ToLower(strings.TrimSpace(m[1]))
		if !strings.Contains(addressed, name) && !strings.Contains(name, addressed) {
			return true
		}
	}
	return false
}

// HasPlaceholder reports whether any section body is stand-in text.
// Exported so the orchestrator can pass the observation to the failure
// classifier alongside the validation verdict.
func HasPlaceholder(content *types.ReportContent, rt types.ReportType) bool {
	for _, s := range content.Sections {
		if sectionIsPlaceholder(s.Body, rt) {
			return true
		}
	}
	return false
}

func sectionIsPlaceholder(body string, rt types.ReportType) bool {
	b := strings.ToLower(body)
	hit := false
	for _, p := range placeholderPhrases {
		if strings.Contains(b, p) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	for _, ok := range validGenericText {
		if strings.Contains(b, ok) {
			return false
		}
	}
	if thematicTypes[rt] {
		for _, ok := range thematicGeneric {
			if strings.Contains(b, ok) {
				return false
			}
		}
	}
	return true
}

// lengthCheck applies the per-type structural gate. The 12-month
// report never hard-fails here: its content is unevenly dense across
// twelve months and blocking delivery caused disproportionate failure
// rates, so auto-expand is the recovery path instead of rejection.
// Word-count warning takes priority over the section-keyword warning.
func lengthCheck(content *types.ReportContent, rt types.ReportType) types.ValidationResult {
	if rt == types.ReportYearAnalysis {
		if content.WordCount() < nominalComplex*60/100 {
			return types.ValidationResult{
				Valid:          true,
				QualityWarning: WarnBelowOptimalLength,
				CanAutoExpand:  true,
			}
		}
		if keywordMatches(content) < 2 {
			return types.ValidationResult{
				Valid:          true,
				QualityWarning: WarnMissingSections,
				CanAutoExpand:  true,
			}
		}
		return types.ValidationResult{Valid: true}
	}

	min := minWords(rt)
	if min == 0 {
		return types.ValidationResult{Valid: true}
	}
	wc := content.WordCount()
	if wc < min {
		res := types.ValidationResult{
			ErrorCode:     types.CodeValidationFailed,
			CanAutoExpand: true,
		}
		if wc >= min*70/100 {
			res.QualityWarning = WarnBelowOptimalLength
		}
		return res
	}
	return types.ValidationResult{Valid: true}
}

func keywordMatches(content *types.ReportContent) int {
	titles := make([]string, 0, len(content.Sections))
	for _, s := range content.Sections {
		titles = append(titles, strings.ToLower(s.Title))
	}
	joined := strings.Join(titles, "\n")
	n := 0
	for _, kw := range yearKeywords {
		if strings.Contains(joined, kw) {
			n++
		}
	}
	return n
}
