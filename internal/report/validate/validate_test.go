package validate

import (
	"strings"
	"testing"

	"github.com/celestia-labs/reportgen/internal/types"
)

func completeInput() types.BirthInput {
	return types.BirthInput{
		Name:        "Asha Rao",
		DateOfBirth: "1990-03-14",
		TimeOfBirth: "06:45",
		Place:       "Pune, India",
	}
}

// wordyContent builds content with an exact total word count spread
// over sections carrying the given titles.
func wordyContent(words int, titles ...string) *types.ReportContent {
	if len(titles) == 0 {
		titles = []string{"Overview"}
	}
	content := &types.ReportContent{Title: "Test Report"}
	body := strings.TrimSpace(strings.Repeat("w ", words))
	for i, t := range titles {
		s := types.Section{Title: t}
		if i == 0 {
			s.Body = body
		}
		content.Sections = append(content.Sections, s)
	}
	return content
}

func TestValidate_MissingSections(t *testing.T) {
	empty := &types.ReportContent{Title: "Report"}
	res := Validate(empty, completeInput(), types.ReportCareer)
	if res.Valid || res.ErrorCode != types.CodeMissingSections {
		t.Errorf("result = %+v, want MISSING_SECTIONS", res)
	}

	blank := &types.ReportContent{
		Title:    "Report",
		Sections: []types.Section{{Title: "A", Body: "   "}},
	}
	res = Validate(blank, completeInput(), types.ReportCareer)
	if res.Valid || res.ErrorCode != types.CodeMissingSections {
		t.Errorf("result = %+v, want MISSING_SECTIONS for blank bodies", res)
	}
}

func TestValidate_MockContentHardFails(t *testing.T) {
	for _, marker := range []string{"Lorem ipsum dolor sit amet", "This feature is COMING SOON"} {
		content := wordyContent(800)
		content.Sections[0].Body += " " + marker
		res := Validate(content, completeInput(), types.ReportCareer)
		if res.Valid || res.ErrorCode != types.CodeMockContentDetected {
			t.Errorf("%q: result = %+v, want MOCK_CONTENT_DETECTED", marker, res)
		}
		if res.CanAutoExpand {
			t.Errorf("%q: CanAutoExpand = true, mock content is never expandable", marker)
		}
	}
}

func TestValidate_MockMarkerInBullet(t *testing.T) {
	content := wordyContent(800)
	content.Sections[0].Bullets = []string{"lorem ipsum here"}
	res := Validate(content, completeInput(), types.ReportCareer)
	if res.ErrorCode != types.CodeMockContentDetected {
		t.Errorf("result = %+v, want MOCK_CONTENT_DETECTED", res)
	}
}

func TestValidate_MissingTitle(t *testing.T) {
	content := wordyContent(800)
	content.Title = "  "
	res := Validate(content, completeInput(), types.ReportCareer)
	if res.Valid || res.ErrorCode != types.CodeValidationFailed {
		t.Errorf("result = %+v, want VALIDATION_FAILED", res)
	}
}

func TestValidate_IncompleteInput(t *testing.T) {
	input := completeInput()
	input.TimeOfBirth = ""
	res := Validate(wordyContent(800), input, types.ReportCareer)
	if res.Valid || res.ErrorCode != types.CodeValidationFailed {
		t.Errorf("result = %+v, want VALIDATION_FAILED", res)
	}
}

func TestValidate_PreparedForMismatch(t *testing.T) {
	content := wordyContent(800)
	content.Sections[0].Body = "Prepared for Ravi Kumar. " + content.Sections[0].Body
	res := Validate(content, completeInput(), types.ReportCareer)
	if res.Valid || res.ErrorCode != types.CodeUserDataMismatch {
		t.Errorf("result = %+v, want USER_DATA_MISMATCH", res)
	}

	content = wordyContent(800)
	content.Sections[0].Body = "Prepared for Asha Rao. " + content.Sections[0].Body
	res = Validate(content, completeInput(), types.ReportCareer)
	if !res.Valid {
		t.Errorf("result = %+v, want valid when the addressed name matches", res)
	}
}

func TestValidate_PlaceholderContent(t *testing.T) {
	content := wordyContent(800)
	content.Sections[0].Body += " We were unable to generate insights for this area."
	res := Validate(content, completeInput(), types.ReportCareer)
	if res.Valid || res.ErrorCode != types.CodeValidationFailed {
		t.Errorf("result = %+v, want VALIDATION_FAILED", res)
	}
	if !res.CanAutoExpand {
		t.Error("CanAutoExpand = false, placeholder failures are re-promptable")
	}
	if !HasPlaceholder(content, types.ReportCareer) {
		t.Error("HasPlaceholder = false, want true")
	}
}

func TestValidate_PlaceholderExemptions(t *testing.T) {
	// A recognized generic-replacement phrase neutralizes the match.
	content := wordyContent(800)
	content.Sections[0].Body += " No specific insights apply; general guidance applies here."
	if res := Validate(content, completeInput(), types.ReportCareer); !res.Valid {
		t.Errorf("result = %+v, want valid with generic-replacement exemption", res)
	}

	// Phase reports accept thematic generic phrasing.
	content = wordyContent(800)
	content.Sections[0].Body += " No specific insights stand out throughout this period."
	if res := Validate(content, completeInput(), types.ReportSadeSati); !res.Valid {
		t.Errorf("result = %+v, want valid for thematic phase report", res)
	}
	// The same body hard-fails a non-thematic type.
	if res := Validate(content, completeInput(), types.ReportCareer); res.Valid {
		t.Errorf("result = %+v, want invalid for non-thematic type", res)
	}
}

func TestValidate_YearAnalysisSoftPass(t *testing.T) {
	titles := []string{"Quarter 1", "Career and Money", "Yearly Overview"}

	short := Validate(wordyContent(749, titles...), completeInput(), types.ReportYearAnalysis)
	if !short.Valid {
		t.Fatalf("749 words: valid = false, year-analysis never hard-fails on length")
	}
	if short.QualityWarning != WarnBelowOptimalLength || !short.CanAutoExpand {
		t.Errorf("749 words: result = %+v, want below_optimal_length soft pass", short)
	}

	clean := Validate(wordyContent(750, titles...), completeInput(), types.ReportYearAnalysis)
	if !clean.Valid || clean.QualityWarning != "" {
		t.Errorf("750 words: result = %+v, want clean pass", clean)
	}
}

func TestValidate_YearAnalysisKeywordWarning(t *testing.T) {
	res := Validate(wordyContent(900, "Part One", "Part Two"), completeInput(), types.ReportYearAnalysis)
	if !res.Valid || res.QualityWarning != WarnMissingSections {
		t.Errorf("result = %+v, want missing_expected_sections soft pass", res)
	}
}

func TestValidate_YearAnalysisWordCountWarningWins(t *testing.T) {
	// Both short and structurally off: the word-count warning is the
	// one reported.
	res := Validate(wordyContent(300, "Part One"), completeInput(), types.ReportYearAnalysis)
	if !res.Valid || res.QualityWarning != WarnBelowOptimalLength {
		t.Errorf("result = %+v, want below_optimal_length to take priority", res)
	}
}

func TestValidate_StandardLengthGate(t *testing.T) {
	tests := []struct {
		words       int
		wantValid   bool
		wantWarning string
	}{
		{700, true, ""},
		{600, true, ""},
		{599, false, WarnBelowOptimalLength}, // close but short
		{450, false, WarnBelowOptimalLength},
		{419, false, ""}, // far below: hard fail, no soft flag
	}
	for _, tt := range tests {
		res := Validate(wordyContent(tt.words), completeInput(), types.ReportCareer)
		if res.Valid != tt.wantValid {
			t.Errorf("%d words: valid = %v, want %v", tt.words, res.Valid, tt.wantValid)
		}
		if !tt.wantValid {
			if res.ErrorCode != types.CodeValidationFailed || !res.CanAutoExpand {
				t.Errorf("%d words: result = %+v, want expandable VALIDATION_FAILED", tt.words, res)
			}
		}
		if res.QualityWarning != tt.wantWarning {
			t.Errorf("%d words: warning = %q, want %q", tt.words, res.QualityWarning, tt.wantWarning)
		}
	}
}

func TestValidate_ComplexLengthGate(t *testing.T) {
	if res := Validate(wordyContent(749), completeInput(), types.ReportFullLife); res.Valid {
		t.Errorf("749 words: result = %+v, want hard fail for complex type", res)
	}
	if res := Validate(wordyContent(750), completeInput(), types.ReportFullLife); !res.Valid {
		t.Errorf("750 words: result = %+v, want valid", res)
	}
}

func TestValidate_FreeTypeHasNoLengthGate(t *testing.T) {
	res := Validate(wordyContent(40), completeInput(), types.ReportLifeSummary)
	if !res.Valid {
		t.Errorf("result = %+v, want valid with no minimum for free type", res)
	}
}
