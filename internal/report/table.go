package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/xab-mack/solhunt/internal/model"
)

const maxSummaryWidth = 72

var severityColors = map[model.Severity]*color.Color{
	model.SeverityHigh:     color.New(color.FgRed, color.Bold),
	model.SeverityMedium:   color.New(color.FgYellow),
	model.SeverityLow:      color.New(color.FgCyan),
	model.SeverityGas:      color.New(color.FgGreen),
	model.SeverityInformal: color.New(color.FgWhite),
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// WriteTable prints one aligned row per finding followed by a severity
// summary. Colours follow color.NoColor.
func WriteTable(w io.Writer, res *model.ScanResult) error {
	fs := Ordered(res.Findings)
	if len(fs) == 0 {
		_, err := fmt.Fprintf(w, "No findings (%s)\n", res.Elapsed.Round(time.Millisecond))
		return err
	}

	header := []string{"SEVERITY", "RULE", "LOCATION", "SUMMARY"}
	rows := make([][]string, 0, len(fs))
	for _, f := range fs {
		rows = append(rows, []string{f.Severity.String(), RuleID(f.Finding), location(f.Meta), truncate(f.Summary, maxSummaryWidth)})
	}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	for i, h := range header {
		b.WriteString(runewidth.FillRight(h, widths[i]))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for n, r := range rows {
		for i, cell := range r {
			padded := runewidth.FillRight(cell, widths[i])
			if i == 0 {
				padded = severityColors[fs[n].Severity].Sprint(padded)
			}
			b.WriteString(padded)
			if i < len(r)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}

	counts := Counts(res.Findings)
	var parts []string
	for s := model.SeverityHigh; s >= model.SeverityInformal; s-- {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
	}
	fmt.Fprintf(&b, "\n%d findings (%s)", len(fs), strings.Join(parts, ", "))
	if res.Suppressed > 0 {
		fmt.Fprintf(&b, ", %d suppressed", res.Suppressed)
	}
	fmt.Fprintf(&b, " in %s\n", res.Elapsed.Round(time.Millisecond))
	_, err := io.WriteString(w, b.String())
	return err
}
