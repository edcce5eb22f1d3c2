// Package parser turns raw completion text into the typed section
// model the validator and delivery path work with. Completion output
// is loosely structured at best, so the heading detection here is a
// set of heuristics, not a grammar.
package parser

import (
	"regexp"
	"strings"

	"github.com/celestia-labs/reportgen/internal/types"
)

const (
	// Bullets past this length are almost always body text that
	// happened to start with a dash. They are dropped, not truncated.
	maxBulletLen = 100

	// The extracted summary field is capped to keep it usable as a
	// preview snippet.
	maxSummaryLen = 500

	disclaimerTitle = "Important Information"
	disclaimerBody  = "This report is based on Vedic astrological principles and is " +
		"intended for guidance and self-reflection only. It is not a substitute " +
		"for professional medical, legal, or financial advice."

	fallbackBody = "We were unable to generate your report at this time. " +
		"Please try again in a few minutes."
)

var (
	// "1. Career Outlook:" or "3) Health:".
	numberedHeading = regexp.MustCompile(`^\d+[.)]\s+.+:$`)
	// "2) short point" style bullets.
	numberedBullet = regexp.MustCompile(`^\d+\)\s+`)
	// Quarter section titles for the 12-month report.
	quarterTitle = regexp.MustCompile(`(?i)^(?:q|quarter\s*)([1-4])\b`)
	// Summary heading variants matched against raw lines, independent
	// of section splitting.
	summaryHeading = regexp.MustCompile(`(?i)^\s*(?:#+\s*)?(?:executive|overall)\s+summary\s*:?\s*$`)
)

// Parse converts raw completion text into ReportContent. A static
// disclaimer section is always appended last, so the result has at
// least one section even for degenerate input.
func Parse(raw string, rt types.ReportType) *types.ReportContent {
	text := strings.TrimSpace(raw)
	if text == "" {
		return fallbackContent(rt)
	}

	content := &types.ReportContent{Title: rt.DisplayName()}

	var cur *types.Section
	headed := false
	flush := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.TrimSpace(cur.Body)
		content.Sections = append(content.Sections, *cur)
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if title, ok := headingTitle(line, rt); ok {
			flush()
			cur = &types.Section{Title: title}
			headed = true
			continue
		}

		if bullet, ok := bulletText(line); ok {
			if cur == nil {
				cur = &types.Section{Title: "Report"}
			}
			if len(bullet) <= maxBulletLen {
				cur.Bullets = append(cur.Bullets, bullet)
			}
			continue
		}

		if cur == nil {
			cur = &types.Section{Title: "Report"}
		}
		if cur.Body != "" {
			cur.Body += "\n"
		}
		cur.Body += line
	}
	flush()

	// No heading ever matched: the output is one undifferentiated blob.
	if !headed {
		content.Sections = []types.Section{{Title: "Report", Body: text}}
	}

	switch rt {
	case types.ReportFullLife:
		content.Summary = extractSummary(text)
	case types.ReportYearAnalysis:
		content.Quarterly = extractQuarterly(content.Sections)
	}

	content.Sections = append(content.Sections, types.Section{
		Title: disclaimerTitle,
		Body:  disclaimerBody,
	})
	return content
}

func fallbackContent(rt types.ReportType) *types.ReportContent {
	return &types.ReportContent{
		Title: rt.DisplayName(),
		Sections: []types.Section{
			{Title: "Report", Body: fallbackBody},
			{Title: disclaimerTitle, Body: disclaimerBody},
		},
	}
}

// headingTitle reports whether a line opens a new section and returns
// the cleaned title. Recognized forms: markdown "#" headings, numbered
// lines ending in a colon, title-cased lines ending in a colon, and
// exact matches against the report type's canonical heading set.
func headingTitle(line string, rt types.ReportType) (string, bool) {
	if strings.HasPrefix(line, "#") {
		return strings.TrimSpace(strings.TrimLeft(line, "# ")), true
	}
	if numberedHeading.MatchString(line) {
		t := line[strings.IndexAny(line, ".)")+1:]
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), ":")), true
	}
	if strings.HasSuffix(line, ":") && isTitleCased(strings.TrimSuffix(line, ":")) {
		return strings.TrimSuffix(line, ":"), true
	}
	norm := normalizeTitle(line)
	for _, canonical := range canonicalHeadings[rt] {
		if norm == canonical {
			return strings.TrimSuffix(line, ":"), true
		}
	}
	return "", false
}

// isTitleCased accepts short lines where every significant word starts
// with an upper-case letter. Connective words are allowed lower-case.
func isTitleCased(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 8 {
		return false
	}
	for i, w := range words {
		if i > 0 && connectives[strings.ToLower(w)] {
			continue
		}
		r := rune(w[0])
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

var connectives = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "for": true,
	"in": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "with": true, "your": true,
}

func bulletText(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "- "):
		return strings.TrimSpace(line[2:]), true
	case strings.HasPrefix(line, "• "):
		return strings.TrimSpace(line[len("• "):]), true
	case numberedBullet.MatchString(line):
		return strings.TrimSpace(line[strings.Index(line, ")")+1:]), true
	}
	return "", false
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}

// extractSummary scans the raw text for an executive-summary heading
// and collects the paragraph that follows it. The scan is independent
// of section splitting because these headings frequently arrive as
// bare upper-case lines the section heuristics miss.
func extractSummary(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !summaryHeading.MatchString(line) {
			continue
		}
		var parts []string
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				if len(parts) > 0 {
					break
				}
				continue
			}
			if _, ok := headingTitle(next, types.ReportFullLife); ok {
				break
			}
			parts = append(parts, next)
		}
		sum := strings.Join(parts, " ")
		if r := []rune(sum); len(r) > maxSummaryLen {
			sum = strings.TrimSpace(string(r[:maxSummaryLen]))
		}
		return sum
	}
	return ""
}

// extractQuarterly pulls per-quarter outlooks from sections whose
// title names a quarter. The sections themselves are left in place.
func extractQuarterly(sections []types.Section) []types.QuarterOutlook {
	var out []types.QuarterOutlook
	for _, s := range sections {
		m := quarterTitle.FindStringSubmatch(s.Title)
		if m == nil {
			continue
		}
		out = append(out, types.QuarterOutlook{
			Quarter: "Q" + m[1],
			Outlook: s.Body,
		})
	}
	return out
}
