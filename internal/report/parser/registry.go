package parser

import "github.com/celestia-labs/reportgen/internal/types"

// canonicalHeadings lists expected section titles per report type.
// A line whose normalized text exactly matches one of these opens a
// section even without heading punctuation, which recovers structure
// from completion output that drops the colon or markdown marker.
// Report types without an entry rely on the generic heuristics alone.
var canonicalHeadings = map[types.ReportType][]string{
	types.ReportLifeSummary: {
		"personality overview",
		"key strengths",
		"life path",
		"relationships",
		"career and finance",
		"guidance",
	},
}
