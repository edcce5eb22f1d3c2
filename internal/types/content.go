package types

import "strings"

// Section is one titled block of report content.
type Section struct {
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Bullets []string `json:"bullets,omitempty"`
}

// QuarterOutlook is the per-quarter breakdown extracted for the
// 12-month analysis report.
type QuarterOutlook struct {
	Quarter string `json:"quarter"`
	Outlook string `json:"outlook"`
}

// ReportContent is the typed section model produced by the parser.
// It always has at least one section; the final section is always the
// disclaimer appended by the parser.
type ReportContent struct {
	Title     string           `json:"title"`
	Sections  []Section        `json:"sections"`
	Summary   string           `json:"summary,omitempty"`
	Quarterly []QuarterOutlook `json:"quarterly,omitempty"`
}

// WordCount counts words across all section bodies and bullets. This
// is the figure the validator's length gates are applied to.
func (c *ReportContent) WordCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(strings.Fields(s.Body))
		for _, b := range s.Bullets {
			n += len(strings.Fields(b))
		}
	}
	return n
}
