package parser

import (
	"strings"
	"testing"

	"github.com/celestia-labs/reportgen/internal/types"
)

func TestParse_MarkdownHeadings(t *testing.T) {
	raw := `# Career Outlook
You are entering a strong professional phase.
- Focus on leadership roles
- Avoid major changes in March

## Financial Picture
Steady gains through disciplined saving.`

	content := Parse(raw, types.ReportCareer)

	if got := len(content.Sections); got != 3 {
		t.Fatalf("sections = %d, want 3 (2 parsed + disclaimer)", got)
	}
	if content.Sections[0].Title != "Career Outlook" {
		t.Errorf("first title = %q", content.Sections[0].Title)
	}
	if len(content.Sections[0].Bullets) != 2 {
		t.Errorf("bullets = %d, want 2", len(content.Sections[0].Bullets))
	}
	if content.Sections[1].Title != "Financial Picture" {
		t.Errorf("second title = %q", content.Sections[1].Title)
	}
	if last := content.Sections[2]; last.Title != disclaimerTitle {
		t.Errorf("last section = %q, want disclaimer", last.Title)
	}
}

func TestParse_NumberedAndTitleCaseHeadings(t *testing.T) {
	raw := `1. Health Overview:
Your constitution favors routine.

Remedies and Practices:
Morning walks suit you well.`

	content := Parse(raw, types.ReportHealth)

	if got := len(content.Sections); got != 3 {
		t.Fatalf("sections = %d, want 3", got)
	}
	if content.Sections[0].Title != "Health Overview" {
		t.Errorf("first title = %q", content.Sections[0].Title)
	}
	if content.Sections[1].Title != "Remedies and Practices" {
		t.Errorf("second title = %q", content.Sections[1].Title)
	}
}

func TestParse_BulletForms(t *testing.T) {
	raw := `# Guidance
- dash bullet
• dot bullet
2) numbered bullet`

	content := Parse(raw, types.ReportCareer)
	got := content.Sections[0].Bullets
	want := []string{"dash bullet", "dot bullet", "numbered bullet"}
	if len(got) != len(want) {
		t.Fatalf("bullets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bullet[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParse_LongBulletDroppedNotTruncated(t *testing.T) {
	long := strings.Repeat("x", 150)
	raw := "# Guidance\n- short point\n- " + long

	content := Parse(raw, types.ReportCareer)
	bullets := content.Sections[0].Bullets
	if len(bullets) != 1 {
		t.Fatalf("bullets = %d, want 1 (long bullet dropped)", len(bullets))
	}
	if bullets[0] != "short point" {
		t.Errorf("bullet = %q", bullets[0])
	}
}

func TestParse_SectionAndBulletCountsPreserved(t *testing.T) {
	var b strings.Builder
	const n, m = 5, 4
	for i := 0; i < n; i++ {
		b.WriteString("# Section ")
		b.WriteByte(byte('A' + i))
		b.WriteString("\nBody text here.\n")
		for j := 0; j < m; j++ {
			b.WriteString("- a short bullet\n")
		}
	}

	content := Parse(b.String(), types.ReportFullLife)
	if got := len(content.Sections); got != n+1 {
		t.Errorf("sections = %d, want %d", got, n+1)
	}
	total := 0
	for _, s := range content.Sections {
		total += len(s.Bullets)
	}
	if total != n*m {
		t.Errorf("bullets = %d, want %d", total, n*m)
	}
}

func TestParse_CanonicalTitleWithoutPunctuation(t *testing.T) {
	raw := `Key Strengths
Determination and patience.`

	free := Parse(raw, types.ReportLifeSummary)
	if free.Sections[0].Title != "Key Strengths" {
		t.Errorf("life-summary: first title = %q, want canonical match", free.Sections[0].Title)
	}

	// Other types get no canonical set; the same line is body text.
	paid := Parse(raw, types.ReportCareer)
	if paid.Sections[0].Title != "Report" {
		t.Errorf("career: first title = %q, want fallback Report section", paid.Sections[0].Title)
	}
}

func TestParse_NoHeadingsWrapsAsSingleSection(t *testing.T) {
	raw := "just a flat paragraph of prose.\nanother line of it."

	content := Parse(raw, types.ReportCareer)
	if got := len(content.Sections); got != 2 {
		t.Fatalf("sections = %d, want 2 (wrap + disclaimer)", got)
	}
	if content.Sections[0].Title != "Report" {
		t.Errorf("title = %q, want Report", content.Sections[0].Title)
	}
	if !strings.Contains(content.Sections[0].Body, "flat paragraph") {
		t.Errorf("body = %q, want raw text preserved", content.Sections[0].Body)
	}
}

func TestParse_EmptyInputFallback(t *testing.T) {
	for _, raw := range []string{"", "   \n\t\n"} {
		content := Parse(raw, types.ReportCareer)
		if got := len(content.Sections); got != 2 {
			t.Fatalf("sections = %d, want 2", got)
		}
		if !strings.Contains(content.Sections[0].Body, "unable to generate") {
			t.Errorf("body = %q, want fallback text", content.Sections[0].Body)
		}
		if content.Sections[1].Title != disclaimerTitle {
			t.Errorf("last section = %q, want disclaimer", content.Sections[1].Title)
		}
	}
}

func TestParse_DisclaimerAlwaysLast(t *testing.T) {
	content := Parse("# Career\nsome body", types.ReportCareer)
	last := content.Sections[len(content.Sections)-1]
	if last.Title != disclaimerTitle || last.Body == "" {
		t.Errorf("last section = %+v, want disclaimer", last)
	}
}

func TestParse_ExecutiveSummaryExtraction(t *testing.T) {
	raw := `EXECUTIVE SUMMARY
A life marked by steady growth and late-blooming recognition.

# Childhood and Education
Early years shaped by discipline.`

	content := Parse(raw, types.ReportFullLife)
	if !strings.Contains(content.Summary, "steady growth") {
		t.Errorf("summary = %q, want extracted paragraph", content.Summary)
	}
	if strings.Contains(content.Summary, "Childhood") {
		t.Errorf("summary = %q, leaked past next heading", content.Summary)
	}
}

func TestParse_ExecutiveSummaryCapped(t *testing.T) {
	raw := "Executive Summary:\n" + strings.Repeat("w ", 400)
	content := Parse(raw, types.ReportFullLife)
	if got := len([]rune(content.Summary)); got > 500 {
		t.Errorf("summary length = %d, want <= 500", got)
	}
	if content.Summary == "" {
		t.Error("summary empty, want capped extraction")
	}
}

func TestParse_SummaryOnlyForFullLife(t *testing.T) {
	raw := "Executive Summary:\nshort recap here."
	content := Parse(raw, types.ReportCareer)
	if content.Summary != "" {
		t.Errorf("summary = %q, want empty for non-full-life type", content.Summary)
	}
}

func TestParse_QuarterlyExtraction(t *testing.T) {
	raw := `# Quarter 1 Outlook
Strong start to the year.

# Q2 Career and Money
Consolidation period.

# General Themes
Patience pays off.`

	content := Parse(raw, types.ReportYearAnalysis)
	if got := len(content.Quarterly); got != 2 {
		t.Fatalf("quarterly = %d, want 2", got)
	}
	if content.Quarterly[0].Quarter != "Q1" || !strings.Contains(content.Quarterly[0].Outlook, "Strong start") {
		t.Errorf("quarterly[0] = %+v", content.Quarterly[0])
	}
	if content.Quarterly[1].Quarter != "Q2" {
		t.Errorf("quarterly[1] = %+v", content.Quarterly[1])
	}
	// Sections remain in place alongside the extraction.
	if got := len(content.Sections); got != 4 {
		t.Errorf("sections = %d, want 4", got)
	}
}

func TestParse_TitleFromReportType(t *testing.T) {
	content := Parse("# Anything\nbody", types.ReportSadeSati)
	if content.Title != types.ReportSadeSati.DisplayName() {
		t.Errorf("title = %q", content.Title)
	}
}
