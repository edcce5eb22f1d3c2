package report

import (
	"fmt"
	"strings"

	"github.com/celestia-labs/reportgen/internal/astro"
	"github.com/celestia-labs/reportgen/internal/types"
)

const systemPrompt = "You are an experienced Vedic astrologer writing a personalized " +
	"report. Ground every statement in the chart details provided. Structure the " +
	"report with markdown headings and short bullet lists where appropriate. " +
	"Write warmly but concretely; avoid filler."

// expandSuffix is appended on auto-expand retries, when the previous
// attempt came back too short or thin.
const expandSuffix = "\n\nThe report must be comprehensive. Expand each section " +
	"with specific detail; do not summarize or truncate."

// BuildPrompt assembles the system and user prompts for one completion
// attempt. expand requests a longer response on retry.
func BuildPrompt(rt types.ReportType, input types.BirthInput, chart *astro.Chart, expand bool) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s, born %s at %s in %s.\n",
		input.Name, input.DateOfBirth, input.TimeOfBirth, input.Place)
	if input.Gender != "" {
		fmt.Fprintf(&b, "Gender: %s.\n", input.Gender)
	}

	b.WriteString("\nBirth chart:\n")
	fmt.Fprintf(&b, "- Ascendant: %s\n", chart.Ascendant)
	fmt.Fprintf(&b, "- Moon sign: %s\n", chart.MoonSign)
	fmt.Fprintf(&b, "- Nakshatra: %s\n", chart.Nakshatra)
	for _, p := range chart.Placements {
		fmt.Fprintf(&b, "- %s in %s (house %d)\n", p.Planet, p.Sign, p.House)
	}
	if len(chart.Doshas) > 0 {
		fmt.Fprintf(&b, "- Doshas: %s\n", strings.Join(chart.Doshas, ", "))
	}

	b.WriteString("\n")
	b.WriteString(taskFor(rt, input))
	fmt.Fprintf(&b, " Aim for roughly %d words.", WordTarget(rt))

	if expand {
		b.WriteString(expandSuffix)
	}
	return systemPrompt, b.String()
}

// WordTarget tracks the validator's nominal lengths so the model is
// asked for at least what the length gate expects.
func WordTarget(rt types.ReportType) int {
	switch rt.Tier() {
	case types.TierFree:
		return 400
	case types.TierComplex:
		return 1250
	default:
		return 1000
	}
}

func taskFor(rt types.ReportType, input types.BirthInput) string {
	switch rt {
	case types.ReportLifeSummary:
		return "Write a concise life summary with these sections: Personality Overview, " +
			"Key Strengths, Life Path, Relationships, Career and Finance, Guidance."
	case types.ReportCareer:
		return "Write a detailed career report: professional strengths, favorable " +
			"fields, timing of growth phases, and practical guidance."
	case types.ReportMarriage:
		return "Write a detailed marriage and partnership report: relationship nature, " +
			"compatibility factors, favorable periods, and guidance."
	case types.ReportHealth:
		return "Write a detailed health and vitality report: constitutional tendencies, " +
			"areas needing attention, favorable routines, and remedies."
	case types.ReportFullLife:
		return "Write a comprehensive full-life report covering childhood, education, " +
			"career, relationships, health, wealth, and later life. Begin with an " +
			"Executive Summary section."
	case types.ReportYearAnalysis:
		return "Write a 12-month analysis with a Yearly Overview section, one section " +
			"per quarter (Quarter 1 through Quarter 4) covering career, relationships, " +
			"health, and finance, and a Remedies section."
	case types.ReportSadeSati:
		return "Write a Sade Sati phase report: the phase timeline, its themes, how " +
			"this chart experiences it, and remedies for each stage."
	case types.ReportMajorDecision:
		task := "Write a decision-support report weighing the question below against " +
			"the chart: current planetary influences, timing, risks, and a clear " +
			"recommendation."
		if input.DecisionContext != "" {
			task += "\n\nQuestion: " + input.DecisionContext
		}
		return task
	case types.ReportMonthlyGuidance:
		return "Write guidance for the coming month: overall tone, career, " +
			"relationships, health, and specific favorable and unfavorable dates."
	default:
		return "Write a personalized astrological report based on the chart."
	}
}
