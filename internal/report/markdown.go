package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
)

// WriteMarkdown renders a summary table followed by one section per
// finding, with its snippet.
func WriteMarkdown(w io.Writer, res *model.ScanResult) error {
	var b strings.Builder
	b.WriteString("# solhunt report\n\n")
	if res.Compiler != "" {
		fmt.Fprintf(&b, "Compiler: `%s`  \n", res.Compiler)
	}
	fmt.Fprintf(&b, "Run: `%s`\n\n", res.RunID)

	counts := Counts(res.Findings)
	b.WriteString("| Severity | Count |\n|---|---|\n")
	for s := model.SeverityHigh; s >= model.SeverityInformal; s-- {
		fmt.Fprintf(&b, "| %s | %d |\n", s, counts[s])
	}
	b.WriteString("\n")

	fs := Ordered(res.Findings)
	if len(fs) == 0 {
		b.WriteString("No findings.\n")
	}
	for _, f := range fs {
		fmt.Fprintf(&b, "## [%s] %s\n\n", strings.ToUpper(f.Severity.String()), f.Summary)
		fmt.Fprintf(&b, "- Rule: `%s`\n- Location: `%s`\n", RuleID(f.Finding), location(f.Meta))
		if f.Comment != "" {
			fmt.Fprintf(&b, "- Note: %s\n", f.Comment)
		}
		if f.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", f.Description)
		}
		if f.Meta.Snippet != "" {
			fmt.Fprintf(&b, "\n```solidity\n%s\n```\n", f.Meta.Snippet)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
